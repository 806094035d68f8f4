// Package dispatch hands work from background goroutines back to the
// caller's sequencing context.
package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run once the loop has been closed
var ErrClosed = errors.New("dispatch: loop closed")

// Queue accepts functions to run on some sequential context. Post reports
// false when the function was rejected and will never run.
type Queue interface {
	Post(fn func()) bool
}

// Immediate runs posted functions inline on the posting goroutine
type Immediate struct{}

func (Immediate) Post(fn func()) bool {
	fn()
	return true
}

// Done returns a channel that is closed once q will run no more of the
// functions it accepted, or nil when q never discards accepted work.
func Done(q Queue) <-chan struct{} {
	if d, ok := q.(interface{ Done() <-chan struct{} }); ok {
		return d.Done()
	}
	return nil
}

// Loop is a serial event queue drained by Run. Posted functions run one at
// a time, in posting order, on the goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewLoop creates an empty loop
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Post enqueues fn. Functions posted after Close are dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	l.signal()
	return true
}

// Pending returns the number of accepted functions that have not run yet
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Close stops the loop. Functions that have not started are discarded and
// Done is closed so their posters stop waiting for them. Close may be
// called from a posted function and more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pending = nil
	close(l.done)
}

// Done is closed by Close
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes posted functions until ctx is done or the loop is closed.
// Work left pending when ctx ends stays queued for a later Run or is
// released by Close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn, ok, closed := l.next()
		if closed {
			return ErrClosed
		}
		if ok {
			fn()
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrClosed
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, false, true
	}
	if len(l.pending) == 0 {
		return nil, false, false
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn, true, false
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
