package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/hibiken/asynq"
)

type rawHandler func(ctx context.Context, data []byte) error

// Registry maps every job type to its handler.
type Registry struct {
	handlers map[JobType]rawHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[JobType]rawHandler)}
}

// Register binds fn to t. P must be the payload variant t carries.
func Register[P Payload](r *Registry, t JobType, fn func(ctx context.Context, payload P) error) error {
	zero, ok := NewPayload(t)
	if !ok {
		return fmt.Errorf("unknown job type %q", t)
	}
	if _, ok := zero.(P); !ok {
		return fmt.Errorf("job type %q carries %T, not %s", t, zero, reflect.TypeOf((*P)(nil)).Elem())
	}
	if _, dup := r.handlers[t]; dup {
		return fmt.Errorf("job type %q registered twice", t)
	}
	r.handlers[t] = func(ctx context.Context, data []byte) error {
		p, _ := NewPayload(t)
		if err := json.Unmarshal(data, p); err != nil {
			// A payload that does not decode never will.
			return fmt.Errorf("decode %s payload: %v: %w", t, err, asynq.SkipRetry)
		}
		return fn(ctx, p.(P))
	}
	return nil
}

// Validate fails if any job type has no handler.
func (r *Registry) Validate() error {
	var missing []JobType
	for _, t := range JobTypes {
		if _, ok := r.handlers[t]; !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler for job types %v", missing)
	}
	return nil
}

// Dispatch runs the handler for t on an encoded payload.
func (r *Registry) Dispatch(ctx context.Context, t JobType, data []byte) error {
	h, ok := r.handlers[t]
	if !ok {
		return fmt.Errorf("no handler for job type %q: %w", t, asynq.SkipRetry)
	}
	return h(ctx, data)
}

// checkPayload rejects a payload of the wrong variant for t.
func checkPayload(t JobType, p Payload) error {
	want, ok := NewPayload(t)
	if !ok {
		return fmt.Errorf("unknown job type %q", t)
	}
	if reflect.TypeOf(want) != reflect.TypeOf(p) {
		return fmt.Errorf("job type %q carries %T, got %T", t, want, p)
	}
	return nil
}

// Permanent marks err so the job is archived without further retries.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}
