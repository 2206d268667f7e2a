package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/kbukum/streamkit/bootstrap"
	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/internal/feed"
	"github.com/kbukum/streamkit/iteratee"
	"github.com/kbukum/streamkit/logger"
)

func TestPrintFeed_ManagerSeesEveryEvent(t *testing.T) {
	cfg := testConfig(string(feed.RoleManager))
	var out bytes.Buffer
	if _, err := printFeed(context.Background(), testEngine(t), cfg, &out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	statuses := 0
	for _, line := range lines {
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		if obj["type"] == "status" {
			statuses++
		}
	}
	if statuses != 4 {
		t.Errorf("expected 4 statuses, got %d", statuses)
	}
}

func TestPrintFeed_ViewerSeesPublicOperations(t *testing.T) {
	cfg := testConfig(string(feed.RoleViewer))
	var out bytes.Buffer
	if _, err := printFeed(context.Background(), testEngine(t), cfg, &out); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		if !strings.Contains(line, `"visibility":"public"`) {
			t.Errorf("viewer got %s", line)
		}
	}
}

func TestPrintFeed_StopsOnCancel(t *testing.T) {
	cfg := testConfig(string(feed.RoleManager))
	cfg.Feed.Count = 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := printFeed(ctx, testEngine(t), cfg, &bytes.Buffer{})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop on cancel")
	}
}

func TestConfig_DefaultsAndValidation(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Name != serviceName || cfg.View.Role != "viewer" || cfg.HTTP.Port != 8080 {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	cfg.View.Lower, cfg.View.Upper = 500, 100
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""
	err := cfg.Validate()
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	for _, want := range []string{"view.upper", "telemetry.endpoint"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "name: eventfeed\nfeed:\n  period: 5ms\n  max_amount: 42\nview:\n  role: viewer\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVENTFEED_VIEW__ROLE", "manager")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Feed.Period != 5*time.Millisecond || cfg.Feed.MaxAmount != 42 {
		t.Errorf("unexpected feed config %+v", cfg.Feed)
	}
	if cfg.View.Role != "manager" {
		t.Errorf("env override not applied, role %q", cfg.View.Role)
	}
}

func TestServe_HealthAndEvents(t *testing.T) {
	cfg := testConfig(string(feed.RoleManager))
	cfg.Feed.Count = 0
	app, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	app.Cfg.HTTP.Host = "127.0.0.1"
	app.Cfg.HTTP.Port = 0
	eng, err := newEngine(context.Background(), app)
	if err != nil {
		t.Fatal(err)
	}
	srv := mount(app, eng)

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		base := "http://" + srv.Addr()

		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("healthz status %d", resp.StatusCode)
		}

		reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(reqCtx, http.MethodGet, base+"/events?role=manager&lower=-1&upper=100000", nil)
		resp, err = http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		var data int
		for sc.Scan() && data < 3 {
			if strings.HasPrefix(sc.Text(), `data: {"type":`) {
				data++
			}
		}
		if data < 3 {
			t.Errorf("expected feed events, got %d", data)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"version"`) {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunCmd_PrintsCountedFeed(t *testing.T) {
	t.Setenv("EVENTFEED_FEED__PERIOD", "2ms")
	t.Setenv("EVENTFEED_LOGGING__LEVEL", "disabled")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", "--count", "5", "--role", "manager", "--lower=-1"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "\n"); got != 5 {
		t.Errorf("expected 5 lines, got %d: %q", got, out.String())
	}
}

func testConfig(role string) *Config {
	cfg := &Config{
		Feed: feed.Config{
			Period:       time.Millisecond,
			StatusEvery:  5,
			MaxAmount:    100,
			PrivateRatio: 0.5,
			Seed:         1,
			Count:        20,
		},
		View: ViewConfig{Role: role, Lower: -1, Upper: 1000},
	}
	cfg.ApplyDefaults()
	return cfg
}

func testEngine(t *testing.T) *iteratee.Engine {
	t.Helper()
	eng := iteratee.NewEngine(iteratee.Config{Name: "test"})
	t.Cleanup(eng.Close)
	return eng
}
