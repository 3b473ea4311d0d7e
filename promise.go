package plait

import (
	"context"
	"sync"
)

// Promise is a write-once deferred value: the pending result of a program
// or of a single step within one. A promise settles exactly once, with
// either a value or an error, and is safe for concurrent observation.
type Promise struct {
	done chan struct{}

	once  sync.Once
	value any
	err   error
}

// NewPromise creates an unresolved promise. Most callers want Resolved,
// Rejected, or Then instead; NewPromise exists for strategy authors that
// settle a promise from their own machinery.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolved creates a promise already settled with value.
func Resolved(value any) *Promise {
	p := NewPromise()
	p.Resolve(value)
	return p
}

// Rejected creates a promise already settled with err.
func Rejected(err error) *Promise {
	p := NewPromise()
	p.Reject(err)
	return p
}

// Resolve settles the promise with value. Later settlements are no-ops.
func (p *Promise) Resolve(value any) {
	p.once.Do(func() {
		p.value = value
		close(p.done)
	})
}

// Reject settles the promise with err. Later settlements are no-ops.
func (p *Promise) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done returns a channel closed when the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Get blocks until the promise settles and returns its value or error.
func (p *Promise) Get() (any, error) {
	<-p.done
	return p.value, p.err
}

// Then chains fn onto p: it returns a new promise that settles with
// fn(p's value) once p resolves, or with p's error directly if p rejects
// (fn is skipped). The returned promise settles with ctx.Err() if ctx is
// done before p settles; fn itself is responsible for honoring ctx once
// it has been started.
func Then(ctx context.Context, p *Promise, fn Transform) *Promise {
	next := NewPromise()
	go func() {
		select {
		case <-ctx.Done():
			next.Reject(ctx.Err())
			return
		case <-p.done:
		}
		if p.err != nil {
			next.Reject(p.err)
			return
		}
		out, err := fn(ctx, p.value)
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(out)
	}()
	return next
}
