package iteratee

import (
	"github.com/kbukum/streamkit/errors"
)

// Enumeratee transforms a stream of I into a stream of O. It is a stateless
// descriptor; Through and Transform instantiate it per attachment.
type Enumeratee[I, O any] struct {
	fn func(I) (O, bool)
}

// Map applies f to every element.
func Map[I, O any](f func(I) O) Enumeratee[I, O] {
	return Enumeratee[I, O]{fn: func(v I) (O, bool) { return f(v), true }}
}

// Collect applies f and drops the element when f reports false. A dropped
// element is acknowledged upstream without the downstream seeing anything.
func Collect[I, O any](f func(I) (O, bool)) Enumeratee[I, O] {
	return Enumeratee[I, O]{fn: f}
}

// Filter keeps the elements satisfying pred.
func Filter[E any](pred func(E) bool) Enumeratee[E, E] {
	return Enumeratee[E, E]{fn: func(v E) (E, bool) { return v, pred(v) }}
}

// Compose chains ab then bc into a single enumeratee.
func Compose[A, B, C any](ab Enumeratee[A, B], bc Enumeratee[B, C]) Enumeratee[A, C] {
	return Enumeratee[A, C]{fn: func(v A) (C, bool) {
		b, ok := ab.fn(v)
		if !ok {
			var zero C
			return zero, false
		}
		return bc.fn(b)
	}}
}

// apply runs the transform, turning a panic into an error.
func (t Enumeratee[I, O]) apply(v I) (out O, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(r)
		}
	}()
	out, ok = t.fn(v)
	return out, ok, nil
}

// --- Sink side: Through ---

type throughSink[I, O any] struct {
	down Sink[O]
	t    Enumeratee[I, O]
}

func (ts *throughSink[I, O]) Offer(in Input[I]) bool {
	if in.IsTerminal() {
		return ts.down.Offer(retag[I, O](in))
	}
	out, ok, err := ts.t.apply(in.Value())
	if err != nil {
		ts.down.Offer(Err[O](errors.Stream(err)))
		return false
	}
	if !ok {
		select {
		case <-ts.down.Done():
			return false
		default:
			return true
		}
	}
	return ts.down.Offer(Elem(out))
}

func (ts *throughSink[I, O]) Done() <-chan struct{} { return ts.down.Done() }

type through[I, O any] struct {
	src Enumerator[I]
	t   Enumeratee[I, O]
}

func (th *through[I, O]) Drive(s Sink[O]) {
	th.src.Drive(&throughSink[I, O]{down: s, t: th.t})
}

func (th *through[I, O]) sourceName() string { return sourceName(th.src) }

// Stop forwards to the wrapped source when it can be stopped.
func (th *through[I, O]) Stop() {
	if s, ok := th.src.(Stopper); ok {
		s.Stop()
	}
}

// Through returns e with t applied to every element.
func Through[I, O any](e Enumerator[I], t Enumeratee[I, O]) Enumerator[O] {
	return &through[I, O]{src: e, t: t}
}

// ThroughAll applies ts left to right; ThroughAll(e, a, b) is
// Through(Through(e, a), b).
func ThroughAll[E any](e Enumerator[E], ts ...Enumeratee[E, E]) Enumerator[E] {
	for _, t := range ts {
		e = Through(e, t)
	}
	return e
}

// --- Iteratee side: Transform ---

type transformed[I, O, R any] struct {
	t     Enumeratee[I, O]
	inner Iteratee[O, R]
}

// Transform adapts it to consume I by passing every element through t. Each
// attachment owns the inner iteratee's state.
func Transform[I, O, R any](t Enumeratee[I, O], it Iteratee[O, R]) Iteratee[I, R] {
	if step, ok := settledStep(it); ok {
		if step.Kind() == StepFailed {
			return Failing[I, R](step.Cause())
		}
		return Returning[I, R](step.Result())
	}
	return &transformed[I, O, R]{t: t, inner: it}
}

func (x *transformed[I, O, R]) Step(in Input[I]) Step[I, R] {
	var down Input[O]
	if in.IsTerminal() {
		down = retag[I, O](in)
	} else {
		out, ok, err := x.t.apply(in.Value())
		switch {
		case err != nil:
			down = Err[O](errors.Stream(err))
		case !ok:
			return Cont[I, R](nil)
		default:
			down = Elem(out)
		}
	}

	step := x.inner.Step(down)
	switch step.Kind() {
	case StepDone:
		return Done(step.Result(), in)
	case StepFailed:
		return Failed[I, R](step.Cause(), in)
	}
	switch down.Kind() {
	case KindEOF:
		return Failed[I, R](errors.Diverged(), in)
	case KindError:
		return Failed[I, R](down.Cause(), in)
	}
	if next := step.Next(); next != nil {
		return Cont[I, R](&transformed[I, O, R]{t: x.t, inner: next})
	}
	return Cont[I, R](nil)
}
