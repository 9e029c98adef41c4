// Package realtimetest provides an in-memory Emitter for tests.
package realtimetest

import (
	"context"
	"sync"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/realtime"
)

// Emission is a recorded event.
type Emission struct {
	Event   string
	Payload interface{}
	Scope   string
}

// Recorder records emitted events.
type Recorder struct {
	mu     sync.Mutex
	events []Emission
}

func (r *Recorder) Emit(_ context.Context, event string, payload interface{}, scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emission{Event: event, Payload: payload, Scope: scope})
}

// Events returns every emission in order.
func (r *Recorder) Events() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.events...)
}

// Named returns the emissions of one event.
func (r *Recorder) Named(event string) []Emission {
	var out []Emission
	for _, e := range r.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var _ realtime.Emitter = (*Recorder)(nil)
