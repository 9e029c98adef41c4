package queue

import (
	"fmt"

	"github.com/rs/zerolog"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// asynqLogger routes asynq's internal logs to zerolog.
type asynqLogger struct {
	l zerolog.Logger
}

func newAsynqLogger(queue string) *asynqLogger {
	l := pkglog.L()
	return &asynqLogger{l: l.With().Str("component", "asynq").Str("queue", queue).Logger()}
}

func (a *asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a *asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
