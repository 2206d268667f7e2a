package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/streamkit/errors"
)

func TestBaseConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != EnvDevelopment {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := BaseConfig{Name: "svc", Environment: EnvProduction}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestBaseConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     BaseConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", BaseConfig{Name: "svc", Environment: EnvDevelopment}, false, ""},
		{"valid staging", BaseConfig{Name: "svc", Environment: EnvStaging}, false, ""},
		{"missing name", BaseConfig{Environment: EnvProduction}, true, "name is required"},
		{"invalid environment", BaseConfig{Name: "svc", Environment: "invalid"}, true, "environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

type testConfig struct {
	BaseConfig `mapstructure:",squash"`
	Engine     struct {
		Workers int `mapstructure:"workers" validate:"gte=0"`
	} `mapstructure:"engine"`
	HTTP struct {
		Addr string `mapstructure:"addr" validate:"required"`
	} `mapstructure:"http"`
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
name: eventfeed
environment: staging
engine:
  workers: 4
http:
  addr: ":8080"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("eventfeed-yaml", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "eventfeed" || cfg.Environment != EnvStaging {
		t.Errorf("unexpected base config %+v", cfg.BaseConfig)
	}
	if cfg.Engine.Workers != 4 || cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected nested config %+v %+v", cfg.Engine, cfg.HTTP)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("EVENTFEED_ENV_ENGINE__WORKERS", "9")
	t.Setenv("EVENTFEED_ENV_HTTP__ADDR", ":9999")

	var cfg testConfig
	if err := LoadConfig("eventfeed-env", &cfg, WithFileSystem(&mockFS{})); err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Workers != 9 || cfg.HTTP.Addr != ":9999" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Engine, cfg.HTTP)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("name: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	var cfg testConfig
	if err := LoadConfig("broken", &cfg, WithConfigFile(path)); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadConfigSearchesServiceDir(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./cmd/my-svc/config.yml": true}}
	if got := firstExisting(fs, ConfigSearchPaths("my-svc")); got != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", got)
	}
	if got := firstExisting(fs, EnvSearchPaths("my-svc")); got != "" {
		t.Errorf("expected no env file, got %q", got)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"EVENTFEED_ENGINE__WORKERS", "engine.workers", true},
		{"EVENTFEED_LOGGING__NO_COLOR", "logging.no_color", true},
		{"EVENTFEED_NAME", "name", true},
		{"OTHER_NAME", "", false},
		{"EVENTFEED_", "", false},
	}
	for _, tc := range tests {
		key, ok := EnvKey(EnvPrefix("eventfeed"), tc.name)
		if key != tc.key || ok != tc.ok {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tc.name, key, ok, tc.key, tc.ok)
		}
	}
	if EnvPrefix("event-feed") != "EVENT_FEED_" {
		t.Errorf("unexpected prefix %q", EnvPrefix("event-feed"))
	}
}

func TestValidate(t *testing.T) {
	var cfg testConfig
	cfg.Name = "svc"
	cfg.Environment = "moon"
	cfg.Engine.Workers = -1

	err := Validate(&cfg)
	if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
	msg := err.Error()
	for _, want := range []string{"environment", "engine.workers", "http.addr"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	cfg.Environment = EnvProduction
	cfg.Engine.Workers = 2
	cfg.HTTP.Addr = ":8080"
	if err := Validate(&cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestBaseConfigLoggingDefaults(t *testing.T) {
	dev := BaseConfig{Name: "svc"}
	dev.ApplyDefaults()
	if dev.Logging.Level != "debug" || dev.Logging.Format != "console" {
		t.Errorf("unexpected development logging %+v", dev.Logging)
	}

	prod := BaseConfig{Name: "svc", Environment: EnvProduction}
	prod.ApplyDefaults()
	if prod.Logging.Level != "info" {
		t.Errorf("expected info level in production, got %q", prod.Logging.Level)
	}
	if prod.Base() != &prod {
		t.Error("Base should return the receiver")
	}
}
