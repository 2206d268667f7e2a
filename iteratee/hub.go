package iteratee

import (
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/promise"
)

// Hub drives one source and broadcasts every element to all registered
// consumers.
//
// An element goes to every live consumer concurrently and the next one is
// pulled only after all of them acknowledged. Consumers that finish are
// pruned; a failing consumer never affects the others. Elements produced
// while no consumer is registered are dropped.
type Hub[E any] struct {
	eng       *Engine
	source    Enumerator[E]
	autostart bool

	mu       sync.Mutex
	members  []Sink[E]
	started  bool
	finished bool

	stopCh     chan struct{}
	stopOnce   sync.Once
	finishOnce sync.Once
	done       chan struct{}
}

// Broadcast creates a hub over source on the default engine. With autostart
// the source starts with the first consumer; otherwise call Broadcast.
func Broadcast[E any](source Enumerator[E], autostart bool) *Hub[E] {
	return BroadcastWith(DefaultEngine(), source, autostart)
}

// BroadcastWith creates a hub whose consumers run on eng.
func BroadcastWith[E any](eng *Engine, source Enumerator[E], autostart bool) *Hub[E] {
	return &Hub[E]{
		eng:       eng,
		source:    source,
		autostart: autostart,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Add registers a side-effecting consumer and returns the hub for chaining.
func (h *Hub[E]) Add(it Iteratee[E, Unit]) *Hub[E] {
	Join(h, it)
	return h
}

// Join registers it with the hub and returns the promise of its result. It
// sees the elements produced from now on. Joining a finished hub delivers
// EOF right away.
func Join[E, R any](h *Hub[E], it Iteratee[E, R]) *promise.Promise[R] {
	if step, ok := settledStep(it); ok {
		if step.Kind() == StepFailed {
			return promise.Rejected[R](step.Cause())
		}
		return promise.Of(step.Result())
	}

	c := newCell(h.eng, "hub", it)
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		go c.Offer(EOF[E]())
		return c.p
	}
	h.members = append(h.members, c)
	start := h.autostart && !h.started
	if start {
		h.started = true
	}
	h.mu.Unlock()

	if start {
		go h.run()
	}
	return c.p
}

// Broadcast starts driving the source. Only the first call has an effect.
func (h *Hub[E]) Broadcast() {
	h.mu.Lock()
	if h.started || h.finished {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()
	go h.run()
}

// Stop ends the hub: the source is stopped if it can be, driving ends, and
// every live consumer receives EOF. Idempotent, and a no-op once the source
// has completed.
func (h *Hub[E]) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		finished := h.finished
		h.mu.Unlock()
		if finished {
			return
		}
		close(h.stopCh)
		if s, ok := h.source.(Stopper); ok {
			s.Stop()
		}
		h.finish()
	})
}

// Done is closed once the hub has finished and every consumer received EOF.
func (h *Hub[E]) Done() <-chan struct{} { return h.done }

// Len returns the number of live consumers.
func (h *Hub[E]) Len() int {
	return len(h.live())
}

func (h *Hub[E]) run() {
	defer h.finish()
	defer func() {
		if r := recover(); r != nil {
			h.offerAll(h.live(), Err[E](errors.Source("hub", errors.Panic(r))))
		}
	}()
	h.source.Drive(&hubSink[E]{h: h})
}

// live prunes terminal consumers and returns the remaining ones.
func (h *Hub[E]) live() []Sink[E] {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.members[:0]
	for _, m := range h.members {
		select {
		case <-m.Done():
		default:
			kept = append(kept, m)
		}
	}
	clear(h.members[len(kept):])
	h.members = kept
	return append([]Sink[E](nil), kept...)
}

func (h *Hub[E]) offerAll(members []Sink[E], in Input[E]) {
	wg := conc.NewWaitGroup()
	for _, m := range members {
		wg.Go(func() { m.Offer(in) })
	}
	wg.Wait()
}

func (h *Hub[E]) finish() {
	h.finishOnce.Do(func() {
		h.mu.Lock()
		h.finished = true
		members := h.members
		h.members = nil
		h.mu.Unlock()

		h.offerAll(members, EOF[E]())
		close(h.done)
	})
}

// hubSink is the view of the hub given to the source.
type hubSink[E any] struct {
	h *Hub[E]
}

func (s *hubSink[E]) Offer(in Input[E]) bool {
	select {
	case <-s.h.stopCh:
		return false
	default:
	}
	s.h.offerAll(s.h.live(), in)
	return true
}

func (s *hubSink[E]) Done() <-chan struct{} { return s.h.stopCh }
