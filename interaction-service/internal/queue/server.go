package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
)

// Server runs one asynq server per job type so each type gets its own
// concurrency bound.
type Server struct {
	redisOpt asynq.RedisConnOpt
	registry *Registry
	cfg      Config
	servers  []*asynq.Server
}

// NewServer creates a worker server. It fails if the registry does not
// handle every job type.
func NewServer(redisOpt asynq.RedisConnOpt, registry *Registry, cfg Config) (*Server, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return &Server{redisOpt: redisOpt, registry: registry, cfg: cfg.withDefaults()}, nil
}

// Start starts processing every queue.
func (s *Server) Start() error {
	l := pkglog.L()
	for _, t := range JobTypes {
		srv := asynq.NewServer(s.redisOpt, asynq.Config{
			Concurrency:     s.cfg.concurrency(t),
			Queues:          map[string]int{string(t): 1},
			RetryDelayFunc:  fixedDelay(s.cfg.RetryDelay),
			ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
			Logger:          newAsynqLogger(string(t)),
			LogLevel:        asynq.WarnLevel,
			ShutdownTimeout: s.cfg.ShutdownTimeout,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(string(t), s.process)
		if err := srv.Start(mux); err != nil {
			s.Shutdown()
			return fmt.Errorf("start %s worker: %w", t, err)
		}
		s.servers = append(s.servers, srv)
		l.Info().Str(pkglog.FieldJobType, string(t)).Int("concurrency", s.cfg.concurrency(t)).Msg("worker started")
	}
	return nil
}

// Shutdown stops every server, waiting for active jobs up to the
// configured timeout.
func (s *Server) Shutdown() {
	for _, srv := range s.servers {
		srv.Shutdown()
	}
	s.servers = nil
}

func (s *Server) process(ctx context.Context, task *asynq.Task) error {
	id, _ := asynq.GetTaskID(ctx)
	ctx = pkglog.WithJob(ctx, task.Type(), id)
	return s.registry.Dispatch(ctx, JobType(task.Type()), task.Payload())
}

func fixedDelay(d time.Duration) asynq.RetryDelayFunc {
	return func(int, error, *asynq.Task) time.Duration {
		return d
	}
}

// handleError logs failed attempts. The last one is logged as abandoned;
// asynq archives the task and nobody else is told.
func handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	logFailure(ctx, task.Type(), err, retried, maxRetry)
}

// logFailure reports whether the attempt was the last one.
func logFailure(ctx context.Context, jobType string, err error, retried, maxRetry int) bool {
	l := pkglog.Ctx(ctx)
	abandoned := retried >= maxRetry || errors.Is(err, asynq.SkipRetry)

	e := l.Warn()
	msg := "job failed, will retry"
	if abandoned {
		e, msg = l.Error(), "job abandoned"
	}
	e.Err(err).
		Str(pkglog.FieldJobType, jobType).
		Int(pkglog.FieldAttempt, retried+1).
		Int(pkglog.FieldMaxRetry, maxRetry).
		Msg(msg)
	return abandoned
}
