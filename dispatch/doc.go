// Package dispatch provides the shared worker pool that runs consumer
// mailboxes.
//
// A Pool executes short tasks (one mailbox drain each) on a bounded or
// unbounded set of goroutines backed by sourcegraph/conc. Tasks submitted
// after Close still run, each on its own goroutine, so in-flight streams
// can finish during shutdown.
package dispatch
