package iteratee

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/streamkit/errors"
)

func TestGenerate_EndsWhenFunctionReportsDone(t *testing.T) {
	n := 0
	gen := Generate(time.Millisecond, func() (int, bool) {
		n++
		return n, n <= 3
	})
	got := awaitValue(t, Apply(gen, ToSlice[int]()))
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestGenerate_StopForcesEOF(t *testing.T) {
	var produced atomic.Int32
	gen := Generate(time.Millisecond, func() (int, bool) {
		return int(produced.Add(1)), true
	})
	var seen atomic.Int32
	p := Apply[int, Unit](gen, Foreach(func(int) { seen.Add(1) }))

	deadline := time.Now().Add(2 * time.Second)
	for seen.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	gen.Stop()
	gen.Stop()
	awaitValue(t, p)

	// Nothing is produced once Stop returned and the attachment finished.
	after := produced.Load()
	time.Sleep(10 * time.Millisecond)
	if produced.Load() != after {
		t.Errorf("generator kept ticking after Stop: %d -> %d", after, produced.Load())
	}
}

func TestGenerate_AttachAfterStopIsEmpty(t *testing.T) {
	gen := Generate(time.Millisecond, func() (int, bool) { return 1, true })
	gen.Stop()
	if got := awaitValue(t, Apply(gen, ToSlice[int]())); len(got) != 0 {
		t.Errorf("expected no elements after Stop, got %v", got)
	}
}

func TestGenerate_PanicIsSourceError(t *testing.T) {
	gen := Generate(time.Millisecond, func() (int, bool) { panic("rng failure") })
	_, err := Apply(gen, ToSlice[int]()).Await(2 * time.Second)
	if !errors.IsCode(err, errors.ErrCodeSourceFailed) {
		t.Errorf("expected SOURCE_FAILED, got %v", err)
	}
}

func TestGenerate_ValueProducedDuringStopIsDropped(t *testing.T) {
	var gen *Generator[int]
	gen = Generate(time.Millisecond, func() (int, bool) {
		gen.Stop()
		return 1, true
	})
	got := awaitValue(t, Apply(gen, ToSlice[int]()))
	if len(got) != 0 {
		t.Errorf("expected nothing after Stop, got %v", got)
	}
}
