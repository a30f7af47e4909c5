package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, "server: {}\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Level() != slog.LevelInfo {
		t.Errorf("level: got %v, want info", cfg.Server.Level())
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("shutdown_timeout: got %v, want %v", cfg.Server.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if !cfg.Server.Metrics.Enabled || cfg.Server.Metrics.Path != DefaultMetricsPath {
		t.Errorf("metrics: got %+v, want enabled at %s", cfg.Server.Metrics, DefaultMetricsPath)
	}
	if cfg.Server.Formulas.Path != "" {
		t.Errorf("formulas.path: got %q, want empty (embedded)", cfg.Server.Formulas.Path)
	}
}

func TestLoad_FullServer(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  log_level: debug
  shutdown_timeout: 3s
  auth:
    mode: apikey
    key_env: IVF_KEY
    header: X-Clinic-Key
  formulas:
    path: /etc/ivfodds/formulas.csv
  metrics:
    enabled: false
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.Level() != slog.LevelDebug {
		t.Errorf("level: got %v, want debug", cfg.Server.Level())
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("shutdown_timeout: got %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.Auth.EffectiveHeader() != "X-Clinic-Key" {
		t.Errorf("header: got %q, want X-Clinic-Key", cfg.Server.Auth.EffectiveHeader())
	}
	if cfg.Server.Formulas.Path != "/etc/ivfodds/formulas.csv" {
		t.Errorf("formulas.path: got %q", cfg.Server.Formulas.Path)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("metrics.enabled: got true, want false")
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "X-API-Key" {
		t.Errorf("EffectiveHeader: got %q, want X-API-Key", h)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_IVF_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_IVF_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "server:\n  http_port: 70000\n"},
		{"unknown auth mode", "server:\n  auth:\n    mode: oauth2\n"},
		{"apikey without key_env", "server:\n  auth:\n    mode: apikey\n"},
		{"unknown log level", "server:\n  log_level: chatty\n"},
		{"negative shutdown", "server:\n  shutdown_timeout: -1s\n"},
		{"relative metrics path", "server:\n  metrics:\n    path: metrics\n"},
		{"metrics under api", "server:\n  metrics:\n    path: /api/metrics\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) { got <- c })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Server.Level() != slog.LevelDebug {
				t.Errorf("reloaded level: got %v, want debug", c.Server.Level())
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(p, []byte("server:\n  log_level: debug\n"), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatch_InvalidReloadIsSkipped(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(*Config) { called <- struct{}{} })
	}()

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(p, []byte("server:\n  log_level: chatty\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
	select {
	case <-called:
		t.Error("onChange called for an invalid config")
	default:
	}
}
