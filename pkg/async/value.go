// Package async provides Value, the settle-once result of an asynchronous
// operation. A Value can be probed synchronously once the operation has
// settled, waited on, or subscribed to for completion.
package async

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is reported by TryGet while the underlying operation has not
// settled yet.
var ErrPending = errors.New("async: value not settled")

// Handler observes the outcome of a Value exactly once. On failure the
// value argument is the zero value of T.
type Handler[T any] func(value T, err error)

// Value is the outcome of an asynchronous operation. It settles at most
// once, with either a value or an error, and is immutable afterwards.
//
// The producer side settles it; consumers only read. Consumers may probe
// synchronously with TryGet, select on Done, block with Result, or
// register completion handlers with Subscribe.
type Value[T any] struct {
	mu       sync.Mutex
	settled  bool
	value    T
	err      error
	done     chan struct{}
	handlers []Handler[T]
	draining bool
}

// New returns a pending Value and runs fn in its own goroutine. The Value
// settles with fn's result. The outcome is always captured, whether or
// not anyone ever subscribes or probes.
func New[T any](fn func() (T, error)) *Value[T] {
	v := newValue[T]()
	go func() {
		v.settle(fn())
	}()
	return v
}

// NewPending returns an unsettled Value together with its settle
// function. Settling is first write wins: calls after the first are
// no-ops.
func NewPending[T any]() (*Value[T], func(T, error)) {
	v := newValue[T]()
	return v, v.settle
}

// Settled returns a Value that already settled successfully at
// construction. TryGet succeeds immediately.
func Settled[T any](value T) *Value[T] {
	v := newValue[T]()
	v.settle(value, nil)
	return v
}

// Failed returns a Value that already settled with err at construction.
func Failed[T any](err error) *Value[T] {
	v := newValue[T]()
	var zero T
	v.settle(zero, err)
	return v
}

func newValue[T any]() *Value[T] {
	return &Value[T]{done: make(chan struct{})}
}

// TryGet probes the outcome without waiting. It returns the value on
// success, the captured error on failure, and ErrPending while the
// operation is still in flight.
func (v *Value[T]) TryGet() (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.settled {
		var zero T
		return zero, ErrPending
	}
	return v.value, v.err
}

// Settled reports whether the operation has settled.
func (v *Value[T]) Settled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settled
}

// Done returns a channel that is closed when the Value settles.
func (v *Value[T]) Done() <-chan struct{} {
	return v.done
}

// Result blocks until the Value settles or ctx is done, whichever comes
// first.
func (v *Value[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-v.done:
		return v.TryGet()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Subscribe registers fn to observe the outcome. fn never runs inside
// Subscribe, even when the Value has already settled: handlers run one at
// a time, in subscription order, on a dispatch goroutine after
// settlement. Two handlers of the same Value never run concurrently.
func (v *Value[T]) Subscribe(fn Handler[T]) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	v.handlers = append(v.handlers, fn)
	start := v.settled && !v.draining
	if start {
		v.draining = true
	}
	v.mu.Unlock()
	if start {
		go v.drain()
	}
}

func (v *Value[T]) settle(value T, err error) {
	v.mu.Lock()
	if v.settled {
		v.mu.Unlock()
		return
	}
	v.settled = true
	v.value = value
	v.err = err
	close(v.done)
	start := len(v.handlers) > 0 && !v.draining
	if start {
		v.draining = true
	}
	v.mu.Unlock()
	if start {
		go v.drain()
	}
}

// drain pops and runs queued handlers until none remain. At most one
// drain goroutine exists per Value, which keeps dispatch serial and in
// subscription order, including handlers added from inside a handler.
func (v *Value[T]) drain() {
	for {
		v.mu.Lock()
		if len(v.handlers) == 0 {
			v.draining = false
			v.mu.Unlock()
			return
		}
		fn := v.handlers[0]
		v.handlers = v.handlers[1:]
		value, err := v.value, v.err
		v.mu.Unlock()
		fn(value, err)
	}
}
