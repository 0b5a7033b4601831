package health

import (
	"context"
	"sync"
)

// Future is the pending result of one health check. Any number of consumers
// may wait on it; the check itself runs once.
type Future struct {
	id   string
	done chan struct{}

	mu        sync.Mutex
	report    Report
	err       error
	completed bool
	callbacks []func(Report, error)
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

func completedFuture(id string, err error) *Future {
	f := newFuture(id)
	f.complete(Report{}, err)
	return f
}

// ID returns the check ID, unique per CheckAsync call.
func (f *Future) ID() string {
	return f.id
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the check finishes.
func (f *Future) Result() (Report, error) {
	<-f.done
	return f.report, f.err
}

// Wait is Result bounded by ctx. Giving up does not stop the check.
func (f *Future) Wait(ctx context.Context) (Report, error) {
	select {
	case <-f.done:
		return f.report, f.err
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Then registers cb to receive the result. On a finished Future, cb runs
// immediately on the calling goroutine; otherwise it runs on the goroutine
// that finishes the check, in registration order.
func (f *Future) Then(cb func(Report, error)) *Future {
	if cb == nil {
		return f
	}

	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return f
	}
	f.mu.Unlock()

	cb(f.report, f.err)
	return f
}

func (f *Future) complete(report Report, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.report, f.err = report, err
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(report, err)
	}
}
