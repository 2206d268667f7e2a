// Package promise provides a single-assignment asynchronous result cell.
//
// A Promise is Pending until it is resolved with a value or failed with a
// cause; that outcome is final. Resolving twice never overwrites the first
// outcome: the second call returns an errors.ErrCodeDoubleResolution error
// so callers can detect the bug instead of silently racing.
//
// Observers either block (Get, Await with a timeout, Wait with a context)
// or register a callback with OnRedeem.
//
//	p := promise.New[string]()
//	go func() { _ = p.Resolve("done") }()
//	v, err := p.Await(time.Second)
package promise
