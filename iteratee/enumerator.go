package iteratee

import (
	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/promise"
)

// Sink is the driving loop's view of an attached consumer.
type Sink[E any] interface {
	// Offer hands in to the consumer and blocks until it was acknowledged.
	// It returns false once the consumer is terminal or closed; the source
	// should stop producing.
	Offer(in Input[E]) bool
	// Done is closed when Offer would return false.
	Done() <-chan struct{}
}

// Enumerator produces elements into a Sink.
//
// Drive offers elements and returns when the source is exhausted, when Offer
// returns false, or after offering an Error input. Sources never offer EOF;
// the attachment does that once Drive returns. An Enumerator is a
// description and may be driven many times unless documented otherwise.
type Enumerator[E any] interface {
	Drive(s Sink[E])
}

// Stopper is implemented by sources that can be ended from the outside.
// Stop must be idempotent.
type Stopper interface {
	Stop()
}

// EnumeratorFunc adapts a function to an Enumerator.
type EnumeratorFunc[E any] func(s Sink[E])

// Drive calls f(s).
func (f EnumeratorFunc[E]) Drive(s Sink[E]) { f(s) }

// named is implemented by built-in sources to label metrics and spans.
type named interface {
	sourceName() string
}

func sourceName(v any) string {
	if n, ok := v.(named); ok {
		return n.sourceName()
	}
	return "custom"
}

// Apply attaches it to e on the default engine.
func Apply[E, R any](e Enumerator[E], it Iteratee[E, R]) *promise.Promise[R] {
	return ApplyWith(DefaultEngine(), e, it)
}

// ApplyWith attaches it to e and returns the promise of its result.
//
// An iteratee that is already terminal resolves the promise immediately and
// e is never driven. Otherwise e is driven on its own goroutine; each element
// is handed to it through a mailbox drained on eng's worker pool, and EOF is
// offered after Drive returns. A panic in Drive becomes a SOURCE_FAILED error
// input.
func ApplyWith[E, R any](eng *Engine, e Enumerator[E], it Iteratee[E, R]) *promise.Promise[R] {
	if step, ok := settledStep(it); ok {
		if step.Kind() == StepFailed {
			return promise.Rejected[R](step.Cause())
		}
		return promise.Of(step.Result())
	}

	name := sourceName(e)
	c := newCell(eng, name, it)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.Offer(Err[E](errors.Source(name, errors.Panic(r))))
			}
			c.Offer(EOF[E]())
		}()
		e.Drive(c)
	}()
	return c.p
}
