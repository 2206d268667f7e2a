package iteratee

import (
	"iter"

	"golang.org/x/exp/constraints"
)

type sliceSource[E any] struct {
	items []E
}

func (s *sliceSource[E]) Drive(sink Sink[E]) {
	for _, v := range s.items {
		if !sink.Offer(Elem(v)) {
			return
		}
	}
}

func (s *sliceSource[E]) sourceName() string { return "list" }

// Of enumerates values in order.
func Of[E any](values ...E) Enumerator[E] {
	return &sliceSource[E]{items: values}
}

// FromSlice enumerates items in order. The slice is read on every attachment,
// not copied.
func FromSlice[E any](items []E) Enumerator[E] {
	return &sliceSource[E]{items: items}
}

type seqSource[E any] struct {
	seq iter.Seq[E]
}

func (s *seqSource[E]) Drive(sink Sink[E]) {
	for v := range s.seq {
		if !sink.Offer(Elem(v)) {
			return
		}
	}
}

func (s *seqSource[E]) sourceName() string { return "seq" }

// FromSeq enumerates a range-over-func sequence. The sequence is stopped
// early when the consumer finishes.
func FromSeq[E any](seq iter.Seq[E]) Enumerator[E] {
	return &seqSource[E]{seq: seq}
}

type chanSource[E any] struct {
	ch <-chan E
}

func (s *chanSource[E]) Drive(sink Sink[E]) {
	for {
		select {
		case v, ok := <-s.ch:
			if !ok {
				return
			}
			if !sink.Offer(Elem(v)) {
				return
			}
		case <-sink.Done():
			return
		}
	}
}

func (s *chanSource[E]) sourceName() string { return "channel" }

// FromChannel enumerates values received from ch until it is closed.
// Concurrent attachments compete for values.
func FromChannel[E any](ch <-chan E) Enumerator[E] {
	return &chanSource[E]{ch: ch}
}

type rangeSource[N constraints.Integer] struct {
	from, to N
}

func (s *rangeSource[N]) Drive(sink Sink[N]) {
	for n := s.from; n < s.to; n++ {
		if !sink.Offer(Elem(n)) {
			return
		}
	}
}

func (s *rangeSource[N]) sourceName() string { return "range" }

// Range enumerates the integers in [from, to).
func Range[N constraints.Integer](from, to N) Enumerator[N] {
	return &rangeSource[N]{from: from, to: to}
}
