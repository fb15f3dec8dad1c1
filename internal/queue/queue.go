// Package queue serializes read-modify-write cycles against a single
// document resource: jobs run strictly one at a time in enqueue order, so
// two concurrent triggers can never interleave their text edits.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Job is one queued unit of work. Parsing and mutation inside a job are
// synchronous; only its read/write calls touch external storage.
type Job func(ctx context.Context) error

// ErrorHandler is invoked (outside the caller's goroutine) when a job
// fails. The queue keeps processing subsequent jobs regardless.
type ErrorHandler func(jobName string, err error)

// Queue chains jobs so that job N+1 never starts before job N has
// completed, success or failure. There is no cancellation of queued jobs
// beyond the context passed at enqueue time.
type Queue struct {
	logger  *slog.Logger
	onError ErrorHandler

	mu   sync.Mutex
	tail chan struct{} // closed when the most recently enqueued job finishes
}

// New creates a queue. onError may be nil.
func New(logger *slog.Logger, onError ErrorHandler) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{logger: logger, onError: onError}
}

// Enqueue appends a job to the tail of the chain and returns a channel
// that receives the job's result exactly once. Callers that do not care
// about the outcome can drop the channel; failures still reach the error
// handler.
func (q *Queue) Enqueue(ctx context.Context, name string, job Job) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	prev := q.tail
	next := make(chan struct{})
	q.tail = next
	q.mu.Unlock()

	go func() {
		defer close(next)
		if prev != nil {
			<-prev
		}
		err := q.run(ctx, name, job)
		if err != nil {
			q.logger.Warn("queue: job failed",
				slog.String("job", name),
				slog.String("error", err.Error()))
			if q.onError != nil {
				q.onError(name, err)
			}
		}
		done <- err
	}()

	return done
}

// run executes one job, converting a panic into an error so a bad job
// cannot take down the chain.
func (q *Queue) run(ctx context.Context, name string, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: job %s panicked: %v", name, r)
		}
	}()
	return job(ctx)
}

// Wait blocks until every job enqueued before the call has completed.
// Mainly useful in tests and during shutdown.
func (q *Queue) Wait() {
	q.mu.Lock()
	t := q.tail
	q.mu.Unlock()
	if t != nil {
		<-t
	}
}
