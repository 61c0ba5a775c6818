package syncq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"landlord/internal/game"
)

var (
	ErrClosed   = errors.New("runner closed")
	ErrJobPanic = errors.New("command panicked")
)

// Job is one unit of work against the engine.
type Job func(*game.Engine) (any, error)

type request struct {
	ctx   context.Context
	job   Job
	reply chan result
}

type result struct {
	out any
	err error
}

// Runner owns an engine and applies submitted jobs one at a time, in the
// order they were accepted. The engine is only touched from the runner's
// goroutine.
type Runner struct {
	jobs    chan request
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewRunner(e *game.Engine, backlog int) *Runner {
	if backlog < 0 {
		backlog = 0
	}
	r := &Runner{
		jobs:    make(chan request, backlog),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go r.loop(e)
	return r
}

func (r *Runner) loop(e *game.Engine) {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case req := <-r.jobs:
			if err := req.ctx.Err(); err != nil {
				req.reply <- result{err: err}
				continue
			}
			out, err := runJob(e, req.job)
			req.reply <- result{out: out, err: err}
		}
	}
}

func runJob(e *game.Engine, job Job) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanic, p)
		}
	}()
	return job(e)
}

// Submit queues job and waits for its result. A job whose context ends
// before the runner reaches it is skipped.
func (r *Runner) Submit(ctx context.Context, job Job) (any, error) {
	reply := make(chan result, 1)
	select {
	case r.jobs <- request{ctx: ctx, job: job, reply: reply}:
	case <-r.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.out, res.err
	case <-r.stopped:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do is Submit with a typed result.
func Do[T any](ctx context.Context, r *Runner, fn func(*game.Engine) (T, error)) (T, error) {
	out, err := r.Submit(ctx, func(e *game.Engine) (any, error) {
		return fn(e)
	})
	if err != nil {
		var zero T
		if v, ok := out.(T); ok {
			return v, err
		}
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}

// Close stops the runner after the job in flight, if any, and waits for it.
func (r *Runner) Close() {
	r.once.Do(func() { close(r.done) })
	<-r.stopped
}
