package dispatch

import (
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Config configures a Pool.
type Config struct {
	// Name identifies this pool for metrics/logging.
	Name string
	// MaxWorkers bounds the number of worker goroutines. 0 means unbounded.
	MaxWorkers int
	// OnTask observes the tasks in flight: it is called with +1 when a task is
	// submitted and with -1 once it returns.
	OnTask func(name string, delta int64)
}

// DefaultConfig returns an unbounded pool configuration.
func DefaultConfig(name string) Config {
	return Config{
		Name:       name,
		MaxWorkers: 0,
	}
}

// Pool runs tasks on a shared set of worker goroutines.
type Pool struct {
	config  Config
	mu      sync.RWMutex
	closed  bool
	workers *pool.Pool
}

// New creates a new pool.
func New(config Config) *Pool {
	if config.MaxWorkers < 0 {
		config.MaxWorkers = 0
	}
	workers := pool.New()
	if config.MaxWorkers > 0 {
		workers = workers.WithMaxGoroutines(config.MaxWorkers)
	}
	return &Pool{
		config:  config,
		workers: workers,
	}
}

// Submit schedules task. With a bounded pool it blocks until a worker is
// free. After Close the task runs on a dedicated goroutine.
func (p *Pool) Submit(task func()) {
	run := task
	if observe := p.config.OnTask; observe != nil {
		observe(p.config.Name, 1)
		run = func() {
			defer observe(p.config.Name, -1)
			task()
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		go run()
		return
	}
	p.workers.Go(run)
}

// Name returns the configured pool name.
func (p *Pool) Name() string {
	return p.config.Name
}

// Close stops accepting pooled work and waits for queued tasks to finish.
// Safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.workers.Wait()
}
