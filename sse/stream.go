package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
)

// DefaultKeepAlive stays below the usual 60s proxy idle timeout.
const DefaultKeepAlive = 30 * time.Second

// Stream serves the elements of a hub to SSE clients. Each client joins the
// hub with its own view, an enumeratee rendering elements to event payloads.
type Stream[E any] struct {
	hub       *iteratee.Hub[E]
	name      string
	keepAlive time.Duration
	log       *logger.Logger
}

// Option configures a Stream.
type Option func(*options)

type options struct {
	name      string
	keepAlive time.Duration
	log       *logger.Logger
}

// WithName sets the component name used in logs and health reports.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithKeepAlive sets the keep-alive comment interval.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

// WithLogger sets the logger for connection events.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// NewStream creates a Stream over hub.
func NewStream[E any](hub *iteratee.Hub[E], opts ...Option) *Stream[E] {
	o := options{name: "sse", keepAlive: DefaultKeepAlive, log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.keepAlive <= 0 {
		o.keepAlive = DefaultKeepAlive
	}
	return &Stream[E]{
		hub:       hub,
		name:      o.name,
		keepAlive: o.keepAlive,
		log:       o.log.WithComponent(o.name),
	}
}

// Handler returns a gin handler serving every client through the view built
// by viewFor from its request.
func (s *Stream[E]) Handler(viewFor func(*gin.Context) iteratee.Enumeratee[E, []byte]) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.Serve(c.Writer, c.Request, viewFor(c))
	}
}

// Serve streams the hub to one client until the client disconnects or the
// hub ends.
func (s *Stream[E]) Serve(w http.ResponseWriter, r *http.Request, view iteratee.Enumeratee[E, []byte]) {
	clientID := uuid.NewString()
	fields := logger.Fields(logger.FieldClientID, clientID)

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.log.Error("streaming not supported", fields)
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived responses must not be cut by the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug("could not disable write deadline", logger.MergeWithError(fields, err))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	cw := newClientWriter(w, flusher)
	hello, _ := json.Marshal(ConnectedEvent{ClientID: clientID})
	cw.event(EventTypeConnected, hello)

	connected := time.Now()
	result := iteratee.Join(s.hub, iteratee.Transform(view, iteratee.Iteratee[[]byte, int64](cw)))
	s.log.Debug("client connected", logger.Fields(
		logger.FieldClientID, clientID,
		logger.FieldConsumers, s.hub.Len(),
		"remote_addr", r.RemoteAddr,
	))

	s.loop(r.Context(), cw, result.Done())

	if result.IsDone() {
		if _, err := result.Get(); err != nil {
			cw.event(EventTypeError, errorPayload(err))
		} else {
			cw.event(EventTypeEnd, []byte("{}"))
		}
	}
	sent := cw.close()
	done := logger.DurationFields("stream", time.Since(connected))
	done[logger.FieldClientID] = clientID
	done[logger.FieldElements] = sent
	s.log.Debug("client disconnected", done)
}

func (s *Stream[E]) loop(ctx context.Context, cw *clientWriter, finished <-chan struct{}) {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-finished:
			return
		case now := <-ticker.C:
			if !cw.keepAlive(now) {
				return
			}
		}
	}
}

// CheckHealth reports the hub as up while it runs and down once it ended.
func (s *Stream[E]) CheckHealth(context.Context) observability.Health {
	health := observability.Health{
		Name:    s.name,
		Status:  observability.HealthStatusUp,
		Message: fmt.Sprintf("%d clients connected", s.hub.Len()),
		Details: map[string]any{"clients": s.hub.Len()},
	}
	select {
	case <-s.hub.Done():
		health.Status = observability.HealthStatusDown
		health.Message = "feed ended"
	default:
	}
	return health
}

func errorPayload(err error) []byte {
	ev := ErrorEvent{Message: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		ev.Code = string(appErr.Code)
		ev.Message = appErr.Message
	}
	b, _ := json.Marshal(ev)
	return b
}
