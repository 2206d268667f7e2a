package iteratee

import (
	"io"

	"github.com/kbukum/streamkit/errors"
)

// Unit is the result of iteratees that only perform side effects.
type Unit struct{}

// Iteratee consumes inputs of type I and eventually produces an O.
//
// Step is called with one input at a time; the engine never calls it again
// before the previous call returned. Implementations should treat themselves
// as immutable values and express state changes by returning Cont(next).
type Iteratee[I, O any] interface {
	Step(in Input[I]) Step[I, O]
}

// StepKind discriminates Step.
type StepKind uint8

const (
	// StepCont asks for more input.
	StepCont StepKind = iota
	// StepDone finished with a result.
	StepDone
	// StepFailed finished with a cause.
	StepFailed
)

func (k StepKind) String() string {
	switch k {
	case StepCont:
		return "cont"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step is the outcome of handing one input to an iteratee.
// Done and Failed are terminal; the leftover is the input that triggered
// termination.
type Step[I, O any] struct {
	kind     StepKind
	next     Iteratee[I, O]
	result   O
	cause    error
	leftover Input[I]
}

// Cont continues with next. A nil next keeps the current iteratee.
func Cont[I, O any](next Iteratee[I, O]) Step[I, O] {
	return Step[I, O]{kind: StepCont, next: next}
}

// Done terminates with result.
func Done[I, O any](result O, leftover Input[I]) Step[I, O] {
	return Step[I, O]{kind: StepDone, result: result, leftover: leftover}
}

// Failed terminates with cause.
func Failed[I, O any](cause error, leftover Input[I]) Step[I, O] {
	if cause == nil {
		cause = errors.Internal(nil).WithDetail("reason", "nil failure cause")
	}
	return Step[I, O]{kind: StepFailed, cause: cause, leftover: leftover}
}

func (s Step[I, O]) Kind() StepKind { return s.kind }
func (s Step[I, O]) Next() Iteratee[I, O] { return s.next }
func (s Step[I, O]) Result() O { return s.result }
func (s Step[I, O]) Cause() error { return s.cause }
func (s Step[I, O]) Leftover() Input[I] { return s.leftover }
func (s Step[I, O]) IsTerminal() bool { return s.kind != StepCont }

// StepFunc adapts a plain function to an Iteratee. It keeps itself on Cont.
type StepFunc[I, O any] func(in Input[I]) Step[I, O]

// Step calls f(in).
func (f StepFunc[I, O]) Step(in Input[I]) Step[I, O] { return f(in) }

// terminal is implemented by iteratees that are finished before any input.
type terminal[I, O any] interface {
	settled() Step[I, O]
}

type settledIteratee[I, O any] struct {
	step Step[I, O]
}

func (s *settledIteratee[I, O]) Step(in Input[I]) Step[I, O] {
	st := s.step
	st.leftover = in
	return st
}

func (s *settledIteratee[I, O]) settled() Step[I, O] { return s.step }

// Returning is an iteratee already done with result. Applying it resolves
// the promise without driving the enumerator.
func Returning[I, O any](result O) Iteratee[I, O] {
	return &settledIteratee[I, O]{step: Done[I, O](result, EOF[I]())}
}

// Failing is an iteratee already failed with cause.
func Failing[I, O any](cause error) Iteratee[I, O] {
	return &settledIteratee[I, O]{step: Failed[I, O](cause, EOF[I]())}
}

// settledStep reports the terminal step of a pre-finished iteratee.
func settledStep[I, O any](it Iteratee[I, O]) (Step[I, O], bool) {
	if t, ok := it.(terminal[I, O]); ok {
		return t.settled(), true
	}
	return Step[I, O]{}, false
}

// --- Built-in iteratees ---

// Foreach calls f for every element and finishes with Unit on EOF.
func Foreach[E any](f func(E)) Iteratee[E, Unit] {
	return StepFunc[E, Unit](func(in Input[E]) Step[E, Unit] {
		switch in.Kind() {
		case KindElem:
			f(in.Value())
			return Cont[E, Unit](nil)
		case KindEOF:
			return Done(Unit{}, in)
		default:
			return Failed[E, Unit](in.Cause(), in)
		}
	})
}

type fold[E, A any] struct {
	acc A
	f   func(A, E) (A, error)
}

func (it *fold[E, A]) Step(in Input[E]) Step[E, A] {
	switch in.Kind() {
	case KindElem:
		acc, err := it.f(it.acc, in.Value())
		if err != nil {
			return Failed[E, A](errors.Stream(err), in)
		}
		return Cont[E, A](&fold[E, A]{acc: acc, f: it.f})
	case KindEOF:
		return Done(it.acc, in)
	default:
		return Failed[E, A](in.Cause(), in)
	}
}

// Fold accumulates elements with f and finishes with the accumulator on EOF.
// An error from f fails the iteratee with a STREAM_FAILED cause.
func Fold[E, A any](init A, f func(A, E) (A, error)) Iteratee[E, A] {
	return &fold[E, A]{acc: init, f: f}
}

// ToSlice collects every element.
func ToSlice[E any]() Iteratee[E, []E] {
	return Fold[E, []E](nil, func(acc []E, e E) ([]E, error) {
		return append(acc, e), nil
	})
}

// ToWriter writes every chunk to w and finishes with the byte count.
func ToWriter(w io.Writer) Iteratee[[]byte, int64] {
	return Fold[[]byte, int64](0, func(n int64, chunk []byte) (int64, error) {
		written, err := w.Write(chunk)
		return n + int64(written), err
	})
}

// Head finishes with a pointer to the first element, or nil if the stream
// ended first.
func Head[E any]() Iteratee[E, *E] {
	return StepFunc[E, *E](func(in Input[E]) Step[E, *E] {
		switch in.Kind() {
		case KindElem:
			v := in.Value()
			return Done(&v, in)
		case KindEOF:
			return Done[E, *E](nil, in)
		default:
			return Failed[E, *E](in.Cause(), in)
		}
	})
}
