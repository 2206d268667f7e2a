package iteratee

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/promise"
)

func TestUnicast_PushThenStop(t *testing.T) {
	push := Unicast[string]()
	var calls atomic.Int32
	p := Apply[string, Unit](push, Foreach(func(string) { calls.Add(1) }))

	if err := push.Push("x"); err != nil {
		t.Fatal(err)
	}
	push.Stop()

	awaitValue(t, p)
	if calls.Load() != 1 {
		t.Errorf("expected exactly one callback, got %d", calls.Load())
	}
}

func TestUnicast_QueuedBeforeAttachIsDelivered(t *testing.T) {
	push := Unicast[int]()
	for i := range 5 {
		_ = push.Push(i)
	}
	push.Stop()
	if push.Len() != 5 {
		t.Fatalf("expected 5 queued, got %d", push.Len())
	}
	got := awaitValue(t, Apply(push, ToSlice[int]()))
	if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("got %v", got)
	}
}

func TestUnicast_PushAfterStop(t *testing.T) {
	push := Unicast[int]()
	push.Stop()
	push.Stop()
	if err := push.Push(1); !errors.IsCode(err, errors.ErrCodeStopped) {
		t.Errorf("expected STOPPED, got %v", err)
	}
}

func TestUnicast_QueueLimit(t *testing.T) {
	push := Unicast[int](WithQueueLimit(2))
	_ = push.Push(1)
	_ = push.Push(2)
	err := push.Push(3)
	if !errors.IsCode(err, errors.ErrCodeQueueFull) {
		t.Fatalf("expected QUEUE_FULL, got %v", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("a full queue should be retryable")
	}
}

func TestUnicast_SecondAttachmentRejected(t *testing.T) {
	push := Unicast[int]()
	first := Apply(push, ToSlice[int]())
	waitAttached(t, push, true)

	_, err := Apply(push, ToSlice[int]()).Await(2 * time.Second)
	if !errors.IsCode(err, errors.ErrCodeAlreadyAttached) {
		t.Errorf("expected ALREADY_ATTACHED, got %v", err)
	}

	_ = push.Push(9)
	push.Stop()
	if got := awaitValue(t, first); !slices.Equal(got, []int{9}) {
		t.Errorf("first attachment should be unaffected, got %v", got)
	}
}

func TestUnicast_ConsumerDoneReleasesDriver(t *testing.T) {
	push := Unicast[int]()
	first := Apply(push, Head[int]())
	_ = push.Push(1)
	awaitValue(t, first)
	waitAttached(t, push, false)

	_ = push.Push(2)
	push.Stop()
	got := awaitValue(t, Apply(push, ToSlice[int]()))
	if !slices.Equal(got, []int{2}) {
		t.Errorf("got %v", got)
	}
}

func TestUnicast_PanickingCallbackReleasesDriver(t *testing.T) {
	push := Unicast[int]()
	p := Apply[int, Unit](push, Foreach(func(int) {}))
	var second atomic.Bool
	p.OnRedeem(func(*promise.Promise[Unit]) { panic("callback broke") })
	p.OnRedeem(func(*promise.Promise[Unit]) { second.Store(true) })
	derived := promise.Map(p, func(Unit) string { return "settled" })

	push.Stop()

	if v, err := derived.Await(2 * time.Second); err != nil || v != "settled" {
		t.Fatalf("derived promise: got %q, %v", v, err)
	}
	if !second.Load() {
		t.Error("second callback never ran")
	}
	waitAttached(t, push, false)
}

// waitAttached blocks until push reports the wanted driver state.
func waitAttached[E any](t *testing.T, push *PushEnumerator[E], want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		push.mu.Lock()
		attached := push.attached
		push.mu.Unlock()
		if attached == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("push enumerator never reached attached=%v", want)
}
