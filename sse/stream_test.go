package sse

import (
	"bufio"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/internal/feed"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/observability"
)

func TestStream_DeliversPerClientView(t *testing.T) {
	push := iteratee.Unicast[feed.Event]()
	hub := iteratee.Broadcast[feed.Event](push, true)
	srv := newServer(t, NewStream(hub))

	manager := connect(t, srv.URL+"/events?role=manager")
	viewer := connect(t, srv.URL+"/events?role=viewer")
	waitClients(t, hub, 2)

	_ = push.Push(feed.SystemStatus{Message: "up"})
	_ = push.Push(feed.Operation{Amount: 42, Level: feed.VisibilityPrivate})
	_ = push.Push(feed.Operation{Amount: 7, Level: feed.VisibilityPublic})
	push.Stop()

	wantManager := []string{
		`data: {"type":"status","message":"up"}`,
		`data: {"type":"operation","amount":42,"visibility":"private"}`,
		`data: {"type":"operation","amount":7,"visibility":"public"}`,
		`event: end`,
	}
	wantViewer := []string{
		`data: {"type":"operation","amount":7,"visibility":"public"}`,
		`event: end`,
	}
	for i, want := range wantManager {
		if got := manager.next(t); got != want {
			t.Errorf("manager line %d: got %q, want %q", i, got, want)
		}
	}
	for i, want := range wantViewer {
		if got := viewer.next(t); got != want {
			t.Errorf("viewer line %d: got %q, want %q", i, got, want)
		}
	}
}

func TestStream_ConnectedEventAndHeaders(t *testing.T) {
	hub := iteratee.Broadcast[feed.Event](iteratee.Unicast[feed.Event](), true)
	srv := newServer(t, NewStream(hub))

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("unexpected cache control %q", resp.Header.Get("Cache-Control"))
	}
	r := bufio.NewReader(resp.Body)
	if line, _ := r.ReadString('\n'); line != "event: connected\n" {
		t.Fatalf("expected connected event, got %q", line)
	}
	if line, _ := r.ReadString('\n'); !strings.HasPrefix(line, `data: {"client_id":"`) {
		t.Errorf("expected client id payload, got %q", line)
	}
}

func TestStream_DisconnectDetachesFromHub(t *testing.T) {
	push := iteratee.Unicast[feed.Event]()
	hub := iteratee.Broadcast[feed.Event](push, true)
	srv := newServer(t, NewStream(hub))

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?role=manager", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	waitClients(t, hub, 1)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never detached")
		}
		_ = push.Push(feed.SystemStatus{Message: "tick"})
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStream_SourceErrorIsErrorEvent(t *testing.T) {
	release := make(chan struct{})
	failing := iteratee.EnumeratorFunc[feed.Event](func(s iteratee.Sink[feed.Event]) {
		<-release
		s.Offer(iteratee.Err[feed.Event](errors.Source("ledger", stderrors.New("connection reset"))))
	})
	hub := iteratee.Broadcast[feed.Event](failing, true)
	srv := newServer(t, NewStream(hub))

	client := connect(t, srv.URL+"/events?role=manager")
	waitClients(t, hub, 1)
	close(release)

	if got := client.next(t); got != "event: error" {
		t.Fatalf("expected error event, got %q", got)
	}
	if got := client.next(t); !strings.Contains(got, string(errors.ErrCodeSourceFailed)) {
		t.Errorf("expected SOURCE_FAILED payload, got %q", got)
	}
}

func TestStream_KeepAlive(t *testing.T) {
	hub := iteratee.Broadcast[feed.Event](iteratee.Unicast[feed.Event](), true)
	srv := newServer(t, NewStream(hub, WithKeepAlive(20*time.Millisecond)))

	client := connect(t, srv.URL+"/events")
	if got := client.next(t); !strings.HasPrefix(got, ": keepalive ") {
		t.Errorf("expected keep-alive comment, got %q", got)
	}
}

func TestStream_RequiresFlusher(t *testing.T) {
	hub := iteratee.Broadcast[feed.Event](iteratee.Unicast[feed.Event](), true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	NewStream(hub).Serve(noFlush{rec}, req, feed.View(feed.RoleManager, 0, 100))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if hub.Len() != 0 {
		t.Error("client joined without streaming support")
	}
}

func TestStream_CheckHealth(t *testing.T) {
	push := iteratee.Unicast[feed.Event]()
	hub := iteratee.Broadcast[feed.Event](push, true)
	stream := NewStream(hub, WithName("events"))

	h := stream.CheckHealth(context.Background())
	if h.Name != "events" || h.Status != observability.HealthStatusUp {
		t.Errorf("unexpected health %+v", h)
	}

	hub.Stop()
	<-hub.Done()
	if h := stream.CheckHealth(context.Background()); h.Status != observability.HealthStatusDown {
		t.Errorf("expected down after stop, got %+v", h)
	}
}

// --- helpers ---

func newServer(t *testing.T, stream *Stream[feed.Event]) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/events", stream.Handler(func(c *gin.Context) iteratee.Enumeratee[feed.Event, []byte] {
		return feed.View(feed.ParseRole(c.Query("role")), 0, 100)
	}))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type sseClient struct {
	lines chan string
}

// connect opens an event stream, consumes the connected event and returns a
// reader of the remaining non-empty lines.
func connect(t *testing.T, url string) *sseClient {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	c := &sseClient{lines: make(chan string, 64)}
	go func() {
		defer close(c.lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if sc.Text() != "" {
				c.lines <- sc.Text()
			}
		}
	}()
	if got := c.next(t); got != "event: "+EventTypeConnected {
		t.Fatalf("expected connected event, got %q", got)
	}
	c.next(t)
	return c
}

func (c *sseClient) next(t *testing.T) string {
	t.Helper()
	select {
	case line, ok := <-c.lines:
		if !ok {
			t.Fatal("stream closed")
		}
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

func waitClients(t *testing.T, hub *iteratee.Hub[feed.Event], n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type noFlush struct {
	http.ResponseWriter
}
