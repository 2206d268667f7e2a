package promise

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/streamkit/errors"
)

// State is the lifecycle state of a Promise.
type State uint8

const (
	// Pending means no value has been set yet.
	Pending State = iota
	// Resolved means the promise holds a value.
	Resolved
	// Failed means the promise holds a failure cause.
	Failed
)

func (s State) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Promise is a single-assignment asynchronous result cell.
//
// It moves from Pending to Resolved or Failed exactly once. Later attempts
// are ignored and reported through the returned DOUBLE_RESOLUTION error.
// Any number of goroutines may wait on it or register callbacks.
type Promise[T any] struct {
	mu        sync.Mutex
	state     State
	value     T
	cause     error
	done      chan struct{}
	callbacks []func(*Promise[T])
}

// New returns a pending promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// Of returns a promise already resolved with v.
func Of[T any](v T) *Promise[T] {
	p := New[T]()
	_ = p.Resolve(v)
	return p
}

// Rejected returns a promise already failed with cause.
func Rejected[T any](cause error) *Promise[T] {
	p := New[T]()
	_ = p.Fail(cause)
	return p
}

// Resolve sets the value. If the promise is already terminal the call is a
// no-op returning a DOUBLE_RESOLUTION error; the stored outcome never changes.
func (p *Promise[T]) Resolve(v T) error {
	return p.complete(Resolved, v, nil)
}

// Fail sets the failure cause. Same double-resolution rules as Resolve.
func (p *Promise[T]) Fail(cause error) error {
	if cause == nil {
		cause = errors.Internal(nil).WithDetail("reason", "nil failure cause")
	}
	var zero T
	return p.complete(Failed, zero, cause)
}

func (p *Promise[T]) complete(state State, v T, cause error) error {
	p.mu.Lock()
	if p.state != Pending {
		current := p.state
		p.mu.Unlock()
		return errors.DoubleResolution().WithDetail("state", current.String())
	}
	p.state = state
	p.value = v
	p.cause = cause
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		p.invoke(cb)
	}
	return nil
}

// invoke runs one callback. A panicking callback is dropped so the ones
// registered after it still run.
func (p *Promise[T]) invoke(cb func(*Promise[T])) {
	defer func() { _ = recover() }()
	cb(p)
}

// State returns the current state.
func (p *Promise[T]) State() State {
	select {
	case <-p.done:
	default:
		return Pending
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsDone reports whether the promise is terminal.
func (p *Promise[T]) IsDone() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the promise is terminal.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Get blocks until the promise is terminal and returns its outcome.
func (p *Promise[T]) Get() (T, error) {
	<-p.done
	return p.outcome()
}

// Await blocks for at most timeout. On expiry it returns a TIMEOUT error and
// leaves the promise untouched; the work behind it keeps running.
func (p *Promise[T]) Await(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return p.outcome()
	case <-timer.C:
		var zero T
		return zero, errors.Timeout("promise", timeout)
	}
}

// Wait blocks until the promise is terminal or ctx is done, in which case
// the context error is returned.
func (p *Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.outcome()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnRedeem registers cb to run exactly once with the terminal promise. It
// runs on the goroutine that resolves the promise, or synchronously before
// OnRedeem returns when the promise is already terminal. A panic in cb is
// recovered and does not stop other callbacks.
func (p *Promise[T]) OnRedeem(cb func(*Promise[T])) {
	p.mu.Lock()
	if p.state == Pending {
		p.callbacks = append(p.callbacks, cb)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.invoke(cb)
}

func (p *Promise[T]) outcome() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.cause
}

// Map derives a promise holding fn applied to p's value. Failures pass
// through unchanged; a panic in fn fails the derived promise.
func Map[T, U any](p *Promise[T], fn func(T) U) *Promise[U] {
	out := New[U]()
	p.OnRedeem(func(src *Promise[T]) {
		v, err := src.outcome()
		if err != nil {
			_ = out.Fail(err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				_ = out.Fail(errors.Stream(errors.Panic(r)))
			}
		}()
		_ = out.Resolve(fn(v))
	})
	return out
}
