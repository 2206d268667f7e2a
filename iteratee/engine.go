package iteratee

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamkit/dispatch"
	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/promise"
)

// Config configures an Engine.
type Config struct {
	// Name labels the worker pool.
	Name string `mapstructure:"name"`
	// Workers bounds the goroutines draining mailboxes. 0 means unbounded.
	Workers int `mapstructure:"workers" validate:"gte=0"`
}

// DefaultConfig returns an unbounded engine configuration.
func DefaultConfig() Config {
	return Config{Name: "streamkit", Workers: 0}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger enables attachment lifecycle logging.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log.WithComponent("iteratee")
		}
	}
}

// WithMetrics replaces the default instruments.
func WithMetrics(m *observability.StreamMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// Engine owns the worker pool on which every attachment's mailbox is drained.
type Engine struct {
	pool    *dispatch.Pool
	log     *logger.Logger
	metrics *observability.StreamMetrics
	tracer  trace.Tracer
}

// NewEngine builds an engine from cfg.
func NewEngine(cfg Config, opts ...Option) *Engine {
	if cfg.Name == "" {
		cfg.Name = DefaultConfig().Name
	}
	e := &Engine{
		log:    logger.Nop(),
		tracer: observability.Tracer(observability.TracerName),
	}
	if m, err := observability.NewStreamMetrics(observability.Meter(observability.TracerName)); err == nil {
		e.metrics = m
	}
	for _, opt := range opts {
		opt(e)
	}

	poolCfg := dispatch.Config{Name: cfg.Name, MaxWorkers: cfg.Workers}
	if e.metrics != nil {
		metrics := e.metrics
		poolCfg.OnTask = func(name string, delta int64) {
			metrics.RecordDrain(context.Background(), name, delta)
		}
	}
	e.pool = dispatch.New(poolCfg)
	return e
}

// Close waits for in-flight drains. Attachments made afterwards still run,
// each on its own goroutine.
func (e *Engine) Close() {
	e.pool.Close()
	e.log.Debug("engine closed", logger.Fields("pool", e.pool.Name()))
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the process-wide engine used by Apply and Broadcast.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine(DefaultConfig())
	})
	return defaultEngine
}

// --- Mailbox cell ---

type letter[E any] struct {
	in  Input[E]
	ack chan bool
}

// cell serializes one attachment: offers queue letters, and a single pool
// task at a time feeds them to the iteratee and acknowledges each one.
type cell[E, R any] struct {
	eng    *Engine
	id     string
	source string

	mu        sync.Mutex
	queue     deque.Deque[letter[E]]
	scheduled bool
	closed    bool
	it        Iteratee[E, R]

	settled  bool
	done     chan struct{}
	p        *promise.Promise[R]
	span     trace.Span
	elements int64
}

func newCell[E, R any](eng *Engine, source string, it Iteratee[E, R]) *cell[E, R] {
	c := &cell[E, R]{
		eng:    eng,
		id:     uuid.NewString(),
		source: source,
		it:     it,
		done:   make(chan struct{}),
		p:      promise.New[R](),
	}
	c.span = observability.StartAttachSpan(eng.tracer, c.id, source)
	if eng.metrics != nil {
		eng.metrics.RecordAttach(context.Background(), source)
	}
	if eng.log.Enabled(zerolog.DebugLevel) {
		eng.log.Debug("attached", logger.Fields(
			logger.FieldAttachmentID, c.id,
			logger.FieldSource, source,
		))
	}
	return c
}

// Offer queues in and blocks until the iteratee has handled it. It returns
// false once the iteratee is terminal or a terminal input was already
// accepted.
func (c *cell[E, R]) Offer(in Input[E]) bool {
	ack := make(chan bool, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if in.IsTerminal() {
		c.closed = true
	}
	c.queue.PushBack(letter[E]{in: in, ack: ack})
	schedule := !c.scheduled
	c.scheduled = true
	c.mu.Unlock()

	if schedule {
		c.eng.pool.Submit(c.drain)
	}
	return <-ack
}

// Done is closed once the iteratee reached a terminal step.
func (c *cell[E, R]) Done() <-chan struct{} { return c.done }

func (c *cell[E, R]) drain() {
	for {
		c.mu.Lock()
		if c.queue.Len() == 0 {
			c.scheduled = false
			c.mu.Unlock()
			return
		}
		l := c.queue.PopFront()
		settled := c.settled
		it := c.it
		c.mu.Unlock()

		if settled {
			l.ack <- false
			continue
		}

		step := c.run(it, l.in)
		if !step.IsTerminal() {
			if next := step.Next(); next != nil {
				c.mu.Lock()
				c.it = next
				c.mu.Unlock()
			}
			l.ack <- true
			continue
		}
		c.settle(step)
		l.ack <- false
	}
}

// run performs one step, turning a panic or a Cont after a terminal input
// into a failure.
func (c *cell[E, R]) run(it Iteratee[E, R], in Input[E]) (step Step[E, R]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			cause := errors.Panic(r)
			step = Failed[E, R](errors.Stream(cause), Err[E](cause))
		}
		if in.Kind() == KindElem {
			c.elements++
		}
		if c.eng.metrics != nil {
			c.eng.metrics.RecordStep(context.Background(), c.source, in.Kind() == KindElem, time.Since(start))
		}
	}()

	step = it.Step(in)
	if step.IsTerminal() {
		return step
	}
	switch in.Kind() {
	case KindEOF:
		return Failed[E, R](errors.Diverged(), in)
	case KindError:
		return Failed[E, R](in.Cause(), in)
	}
	return step
}

func (c *cell[E, R]) settle(step Step[E, R]) {
	c.mu.Lock()
	c.settled = true
	c.closed = true
	c.it = nil
	c.mu.Unlock()
	close(c.done)

	outcome := observability.OutcomeDone
	var cause error
	if step.Kind() == StepFailed {
		outcome = observability.OutcomeFailed
		cause = step.Cause()
	}
	if c.eng.metrics != nil {
		c.eng.metrics.RecordSettle(context.Background(), c.source, outcome)
	}
	observability.EndAttachSpan(c.span, c.elements, cause)
	c.logSettle(outcome, cause)

	if cause != nil {
		_ = c.p.Fail(cause)
		return
	}
	_ = c.p.Resolve(step.Result())
}

func (c *cell[E, R]) logSettle(outcome string, cause error) {
	fields := logger.Fields(
		logger.FieldAttachmentID, c.id,
		logger.FieldSource, c.source,
		logger.FieldOutcome, outcome,
		logger.FieldElements, c.elements,
	)
	if cause != nil {
		c.eng.log.Warn("attachment failed", logger.MergeWithError(fields, cause))
		return
	}
	c.eng.log.Debug("attachment settled", fields)
}
