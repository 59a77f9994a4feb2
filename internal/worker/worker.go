// Package worker runs one-shot background jobs. A job receives exactly one
// request and posts exactly one Result; workers are never reused.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Result is the single message a job posts back.
type Result[T any] struct {
	Value T
	Err   error
}

// Success reports whether the job finished without error.
func (r Result[T]) Success() bool { return r.Err == nil }

// Spawn starts fn in a new goroutine and returns the channel its result will
// arrive on. The channel is buffered so a caller that stops listening never
// blocks the job. The job keeps running if ctx is cancelled after Spawn
// returns; ctx values are still visible to fn. A panic inside fn becomes an
// error result.
func Spawn[Req, Resp any](ctx context.Context, req Req, fn func(context.Context, Req) (Resp, error)) <-chan Result[Resp] {
	out := make(chan Result[Resp], 1)
	jobCtx := context.WithoutCancel(ctx)

	go func() {
		var res Result[Resp]
		defer func() {
			if p := recover(); p != nil {
				res = Result[Resp]{Err: fmt.Errorf("worker panic: %v\n%s", p, debug.Stack())}
			}
			out <- res
			close(out)
		}()

		v, err := fn(jobCtx, req)
		res = Result[Resp]{Value: v, Err: err}
	}()

	return out
}

// Await waits for the result of a spawned job or for ctx to end. When ctx
// ends first the job is abandoned, not stopped.
func Await[T any](ctx context.Context, ch <-chan Result[T]) Result[T] {
	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}
