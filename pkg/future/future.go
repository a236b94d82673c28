// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package future provides single-assignment completion handles and their
// composition.
package future

import (
	"context"
	"sync"
	"sync/atomic"
)

// Future is completed exactly once, either successfully (nil error) or
// with a failure cause. Listeners registered with OnComplete run on the
// goroutine that completes the future.
type Future struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	err       error
	listeners []func(error)
}

// New returns a pending future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Succeeded returns a future that already completed successfully.
func Succeeded() *Future {
	f := New()
	f.Complete(nil)
	return f
}

// Failed returns a future that already failed with err.
func Failed(err error) *Future {
	f := New()
	f.Complete(err)
	return f
}

// Complete resolves the future with err. Only the first call has effect;
// the return value reports whether this call resolved the future.
func (f *Future) Complete(err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.err = err
	listeners := f.listeners
	f.listeners = nil
	close(f.done)
	f.mu.Unlock()

	for _, l := range listeners {
		l(err)
	}
	return true
}

// OnComplete registers fn to be called with the outcome. If the future is
// already complete fn is called immediately.
func (f *Future) OnComplete(fn func(err error)) {
	f.mu.Lock()
	if !f.completed {
		f.listeners = append(f.listeners, fn)
		f.mu.Unlock()
		return
	}
	err := f.err
	f.mu.Unlock()
	fn(err)
}

// Done is closed once the future completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the future has completed.
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Err returns the failure cause, or nil while pending or on success.
func (f *Future) Err() error {
	if !f.IsDone() {
		return nil
	}
	return f.err
}

// Wait blocks until the future completes or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AllOf completes successfully once every future succeeded, or fails with
// the first failure observed. Futures still pending after a failure are
// left running and their outcomes are ignored.
func AllOf(futures ...*Future) *Future {
	if len(futures) == 0 {
		return Succeeded()
	}
	ret := New()
	remaining := int64(len(futures))
	for _, f := range futures {
		f.OnComplete(func(err error) {
			if err != nil {
				ret.Complete(err)
				return
			}
			if atomic.AddInt64(&remaining, -1) == 0 {
				ret.Complete(nil)
			}
		})
	}
	return ret
}

// Then runs next after f succeeds and completes with the outcome of the
// future it returns. A failure of f skips next.
func Then(f *Future, next func() *Future) *Future {
	ret := New()
	f.OnComplete(func(err error) {
		if err != nil {
			ret.Complete(err)
			return
		}
		next().OnComplete(func(err error) {
			ret.Complete(err)
		})
	})
	return ret
}
