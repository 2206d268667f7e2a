// Package iteratee provides push-based streams with acknowledgment-driven
// backpressure.
//
// An Enumerator produces values into a Sink, an Iteratee consumes them one
// Input at a time, and an Enumeratee transforms values in between. Attaching
// an iteratee to an enumerator yields a promise.Promise of its result:
//
//	names := iteratee.Through(iteratee.Of("a", "b"), iteratee.Map(strings.ToUpper))
//	joined := iteratee.Fold("", func(acc, s string) (string, error) { return acc + s, nil })
//	v, err := iteratee.Apply(names, joined).Await(time.Second)
//
// Every attachment is a mailbox drained on the Engine's worker pool, so a
// consumer handles at most one input at a time and the source does not
// offer the next value before the previous one was acknowledged.
//
// # Sources
//
//   - Of, FromSlice, FromSeq, FromChannel, Range: in-memory values
//   - FromFile, FromFileLines, FromReader, FromLines: byte chunks or lines
//   - Unicast: a PushEnumerator fed through Push
//   - Generate: values produced on a ticker
//   - Interleave: several sources merged in arrival order
//
// # Fan-out
//
// A Hub drives one source and broadcasts each element to every registered
// consumer, waiting for all of them before pulling the next element.
package iteratee
