package realtime

import (
	"context"
	"time"

	pkglog "github.com/weiawesome/wes-io-live/pkg/log"
	"github.com/weiawesome/wes-io-live/pkg/pubsub"
)

// Emitter sends an event to subscribers. A non-empty scope limits delivery
// to that user. Emission is fire-and-forget: failures are only logged.
type Emitter interface {
	Emit(ctx context.Context, event string, payload interface{}, scope string)
}

// PubSubEmitter publishes events to the real-time channel of their
// namespace without blocking the caller.
type PubSubEmitter struct {
	pub     pubsub.Publisher
	timeout time.Duration
}

// NewPubSubEmitter creates an emitter.
func NewPubSubEmitter(pub pubsub.Publisher, timeout time.Duration) *PubSubEmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PubSubEmitter{pub: pub, timeout: timeout}
}

func (e *PubSubEmitter) Emit(ctx context.Context, event string, payload interface{}, scope string) {
	l := pkglog.Ctx(ctx)
	ns, ok := NamespaceFor(event)
	if !ok {
		l.Error().Str("event", event).Msg("emit: unknown event")
		return
	}
	msg, err := pubsub.NewEvent(event, scope, payload)
	if err != nil {
		l.Error().Err(err).Str("event", event).Msg("emit: failed to encode payload")
		return
	}

	go func() {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		if err := e.pub.Publish(pctx, pubsub.RealtimeChannel(ns), msg); err != nil {
			l.Warn().Err(err).Str("event", event).Msg("emit: publish failed")
		}
	}()
}

var _ Emitter = (*PubSubEmitter)(nil)
