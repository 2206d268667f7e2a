package iteratee

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/kbukum/streamkit/errors"
)

// PushOption configures a PushEnumerator.
type PushOption func(*pushConfig)

type pushConfig struct {
	limit int
}

// WithQueueLimit bounds the number of values waiting for the consumer.
// 0 means unbounded.
func WithQueueLimit(n int) PushOption {
	return func(c *pushConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// PushEnumerator is a source fed imperatively through Push.
//
// Values are queued until the attached consumer acknowledges the previous
// one. Only one attachment drives it at a time; a concurrent second one
// receives an ALREADY_ATTACHED error input. Values left in the queue when a
// consumer finishes are kept for the next attachment.
type PushEnumerator[E any] struct {
	limit int

	mu       sync.Mutex
	queue    deque.Deque[E]
	stopped  bool
	attached bool

	notify   chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Unicast creates a PushEnumerator with an unbounded queue unless limited.
func Unicast[E any](opts ...PushOption) *PushEnumerator[E] {
	var cfg pushConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PushEnumerator[E]{
		limit:  cfg.limit,
		notify: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Push queues v. It fails with STOPPED after Stop and with QUEUE_FULL when a
// bounded queue is at capacity.
func (p *PushEnumerator[E]) Push(v E) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return errors.Stopped("unicast")
	}
	if p.limit > 0 && p.queue.Len() >= p.limit {
		p.mu.Unlock()
		return errors.QueueFull(p.limit)
	}
	p.queue.PushBack(v)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return nil
}

// Stop ends the stream once the queued values are delivered. Idempotent.
func (p *PushEnumerator[E]) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.stopCh)
	})
}

// Len returns the number of queued values.
func (p *PushEnumerator[E]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// Drive delivers queued values until Stop is called and the queue is empty,
// or until the consumer finishes.
func (p *PushEnumerator[E]) Drive(s Sink[E]) {
	p.mu.Lock()
	if p.attached {
		p.mu.Unlock()
		s.Offer(Err[E](errors.AlreadyAttached()))
		return
	}
	p.attached = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.attached = false
		p.mu.Unlock()
	}()

	for {
		p.mu.Lock()
		if p.queue.Len() > 0 {
			v := p.queue.PopFront()
			p.mu.Unlock()
			if !s.Offer(Elem(v)) {
				return
			}
			continue
		}
		stopped := p.stopped
		p.mu.Unlock()
		if stopped {
			return
		}

		select {
		case <-p.notify:
		case <-p.stopCh:
		case <-s.Done():
			return
		}
	}
}

func (p *PushEnumerator[E]) sourceName() string { return "unicast" }
