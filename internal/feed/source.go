package feed

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/iteratee"
)

// Config shapes the synthetic event feed.
type Config struct {
	Period       time.Duration `mapstructure:"period" yaml:"period" validate:"gt=0"`
	StatusEvery  int           `mapstructure:"status_every" yaml:"status_every" validate:"gte=0"`
	MaxAmount    int           `mapstructure:"max_amount" yaml:"max_amount" validate:"gt=0"`
	PrivateRatio float64       `mapstructure:"private_ratio" yaml:"private_ratio" validate:"gte=0,lte=1"`
	Seed         uint64        `mapstructure:"seed" yaml:"seed"`
	Count        int           `mapstructure:"count" yaml:"count" validate:"gte=0"`
}

// DefaultConfig returns a feed emitting ten events per second forever.
func DefaultConfig() Config {
	return Config{
		Period:       100 * time.Millisecond,
		StatusEvery:  10,
		MaxAmount:    1000,
		PrivateRatio: 0.5,
	}
}

// ApplyDefaults fills zero values from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Period <= 0 {
		c.Period = d.Period
	}
	if c.MaxAmount <= 0 {
		c.MaxAmount = d.MaxAmount
	}
}

// NewSource returns a generator of random events. Every StatusEvery-th event
// is a SystemStatus; the rest are operations with an amount in
// [0, MaxAmount). A zero Seed seeds from the clock. A positive Count ends the
// stream after that many events.
func NewSource(cfg Config) *iteratee.Generator[Event] {
	cfg.ApplyDefaults()
	return iteratee.Generate(cfg.Period, newEventGen(cfg).next)
}

type eventGen struct {
	cfg Config

	mu  sync.Mutex
	rnd *rand.Rand
	n   int
}

func newEventGen(cfg Config) *eventGen {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &eventGen{cfg: cfg, rnd: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// next is shared by every attachment of the source, so counting and the
// random stream are serialized.
func (g *eventGen) next() (Event, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg.Count > 0 && g.n >= g.cfg.Count {
		return nil, false
	}
	g.n++

	if g.cfg.StatusEvery > 0 && g.n%g.cfg.StatusEvery == 0 {
		return SystemStatus{Message: fmt.Sprintf("system is up (%d events)", g.n)}, true
	}
	level := VisibilityPublic
	if g.rnd.Float64() < g.cfg.PrivateRatio {
		level = VisibilityPrivate
	}
	return Operation{
		ID:     uuid.New(),
		Amount: g.rnd.IntN(g.cfg.MaxAmount),
		Level:  level,
	}, true
}
