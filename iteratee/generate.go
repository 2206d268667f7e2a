package iteratee

import (
	"sync"
	"time"

	"github.com/kbukum/streamkit/errors"
)

// Generator calls a function on a fixed period and enumerates its results.
type Generator[E any] struct {
	period time.Duration
	fn     func() (E, bool)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Generate creates a Generator ticking every period. fn returning false ends
// the stream; a panic in fn ends it with a SOURCE_FAILED error input.
func Generate[E any](period time.Duration, fn func() (E, bool)) *Generator[E] {
	if period <= 0 {
		period = time.Millisecond
	}
	return &Generator[E]{
		period: period,
		fn:     fn,
		stopCh: make(chan struct{}),
	}
}

// Stop cancels the ticker of every attachment and ends them with EOF.
// Idempotent.
func (g *Generator[E]) Stop() {
	g.stopOnce.Do(func() { close(g.stopCh) })
}

// Drive offers one value per tick. A value produced concurrently with Stop
// is discarded rather than offered.
func (g *Generator[E]) Drive(s Sink[E]) {
	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopCh:
			return
		case <-s.Done():
			return
		case <-ticker.C:
		}

		if g.stopped() {
			return
		}

		v, ok, err := g.call()
		if err != nil {
			s.Offer(Err[E](errors.Source("generator", err)))
			return
		}
		// Stop may have landed while fn ran.
		if !ok || g.stopped() || !s.Offer(Elem(v)) {
			return
		}
	}
}

func (g *Generator[E]) stopped() bool {
	select {
	case <-g.stopCh:
		return true
	default:
		return false
	}
}

func (g *Generator[E]) call() (v E, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(r)
		}
	}()
	v, ok = g.fn()
	return v, ok, nil
}

func (g *Generator[E]) sourceName() string { return "generator" }
