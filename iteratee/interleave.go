package iteratee

import (
	"github.com/sourcegraph/conc"

	"github.com/kbukum/streamkit/errors"
)

type laneOffer[E any] struct {
	in  Input[E]
	ack chan bool
}

// laneSink hands a lane's offers to the forwarding loop.
type laneSink[E any] struct {
	offers chan<- laneOffer[E]
	done   <-chan struct{}
}

func (l *laneSink[E]) Offer(in Input[E]) bool {
	ack := make(chan bool, 1)
	select {
	case l.offers <- laneOffer[E]{in: in, ack: ack}:
		return <-ack
	case <-l.done:
		return false
	}
}

func (l *laneSink[E]) Done() <-chan struct{} { return l.done }

type interleave[E any] struct {
	sources []Enumerator[E]
}

// Interleave merges sources in arrival order. Each source runs in its own
// lane and the merged stream ends once every lane has finished. The order
// within one source is preserved.
func Interleave[E any](sources ...Enumerator[E]) Enumerator[E] {
	return &interleave[E]{sources: sources}
}

func (il *interleave[E]) Drive(s Sink[E]) {
	offers := make(chan laneOffer[E])
	lanes := conc.NewWaitGroup()
	for _, src := range il.sources {
		lanes.Go(func() {
			runLane(src, &laneSink[E]{offers: offers, done: s.Done()})
		})
	}

	finished := make(chan struct{})
	go func() {
		lanes.Wait()
		close(finished)
	}()

	// A single loop forwards every lane's offer, so the consumer never holds
	// more than one unacknowledged element.
	for {
		select {
		case o := <-offers:
			o.ack <- s.Offer(o.in)
		case <-finished:
			return
		}
	}
}

// runLane drives src into its lane. A panic is offered as a SOURCE_FAILED
// input right away, the same way a source reporting its own error is.
func runLane[E any](src Enumerator[E], lane *laneSink[E]) {
	defer func() {
		if r := recover(); r != nil {
			lane.Offer(Err[E](errors.Source("interleave", errors.Panic(r))))
		}
	}()
	src.Drive(lane)
}

func (il *interleave[E]) sourceName() string { return "interleave" }
