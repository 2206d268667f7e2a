package sse

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/streamkit/iteratee"
)

// clientWriter frames events onto one response. After close nothing is
// written, so the response can be handed back to the server while the hub
// still holds the consumer.
type clientWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
	sent    int64
}

func newClientWriter(w io.Writer, flusher http.Flusher) *clientWriter {
	return &clientWriter{w: w, flusher: flusher}
}

// event writes one SSE event. An empty name omits the event line.
func (cw *clientWriter) event(name string, data []byte) bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return false
	}
	if name != "" {
		if _, err := fmt.Fprintf(cw.w, "event: %s\n", name); err != nil {
			cw.closed = true
			return false
		}
	}
	if _, err := fmt.Fprintf(cw.w, "data: %s\n\n", data); err != nil {
		cw.closed = true
		return false
	}
	cw.flusher.Flush()
	return true
}

func (cw *clientWriter) keepAlive(now time.Time) bool {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.closed {
		return false
	}
	if _, err := fmt.Fprintf(cw.w, ": keepalive %d\n\n", now.Unix()); err != nil {
		cw.closed = true
		return false
	}
	cw.flusher.Flush()
	return true
}

func (cw *clientWriter) close() int64 {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.closed = true
	return cw.sent
}

// Step writes every element as a data event and finishes once the client is
// gone, which detaches it from the hub.
func (cw *clientWriter) Step(in iteratee.Input[[]byte]) iteratee.Step[[]byte, int64] {
	switch in.Kind() {
	case iteratee.KindElem:
		if !cw.event("", in.Value()) {
			return iteratee.Done(cw.count(), in)
		}
		cw.mu.Lock()
		cw.sent++
		cw.mu.Unlock()
		return iteratee.Cont[[]byte, int64](nil)
	case iteratee.KindError:
		return iteratee.Failed[[]byte, int64](in.Cause(), in)
	default:
		return iteratee.Done(cw.count(), in)
	}
}

func (cw *clientWriter) count() int64 {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.sent
}
