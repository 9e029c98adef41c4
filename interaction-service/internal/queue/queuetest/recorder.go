// Package queuetest provides an in-memory Enqueuer for tests.
package queuetest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/queue"
)

// Job is a recorded job.
type Job struct {
	Type    queue.JobType
	Payload queue.Payload
}

// Recorder records enqueued jobs instead of sending them to a broker.
type Recorder struct {
	mu   sync.Mutex
	jobs []Job
	// Err, when set, is returned by Enqueue and nothing is recorded.
	Err error
}

func (r *Recorder) Enqueue(_ context.Context, t queue.JobType, p queue.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.jobs = append(r.jobs, Job{Type: t, Payload: p})
	return nil
}

// Jobs returns every recorded job in order.
func (r *Recorder) Jobs() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Job(nil), r.jobs...)
}

// OfType returns the recorded jobs of type t.
func (r *Recorder) OfType(t queue.JobType) []Job {
	var out []Job
	for _, j := range r.Jobs() {
		if j.Type == t {
			out = append(out, j)
		}
	}
	return out
}

// Drain runs recorded jobs through the registry, including jobs enqueued
// while draining, until none are left. It stops at the first failure.
func (r *Recorder) Drain(ctx context.Context, reg *queue.Registry) error {
	for {
		r.mu.Lock()
		if len(r.jobs) == 0 {
			r.mu.Unlock()
			return nil
		}
		job := r.jobs[0]
		r.jobs = r.jobs[1:]
		r.mu.Unlock()

		data, err := json.Marshal(job.Payload)
		if err != nil {
			return err
		}
		if err := reg.Dispatch(ctx, job.Type, data); err != nil {
			return err
		}
	}
}

var _ queue.Enqueuer = (*Recorder)(nil)
