package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
data_dir: "`+dir+`"
export_dir: "`+dir+`/cards"
reflection_debounce: "250ms"
storage:
  backend: "file"
server:
  addr: "127.0.0.1:9999"
notifier:
  sink: "log"
llm:
  model: "claude-test"
  timeout: "3s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != dir {
		t.Errorf("data_dir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.ReflectionDebounce != 250*time.Millisecond {
		t.Errorf("reflection_debounce = %v, want 250ms", cfg.ReflectionDebounce)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("storage.backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Notifier.Sink != "log" {
		t.Errorf("notifier.sink = %q, want log", cfg.Notifier.Sink)
	}
	if cfg.LLM.Model != "claude-test" || cfg.LLM.Timeout != 3*time.Second {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if got, want := cfg.StoragePath(), filepath.Join(dir, "store"); got != want {
		t.Errorf("StoragePath() = %q, want %q", got, want)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
data_dir: "`+dir+`"
notifier:
  sink: "dbus"
`)
	t.Setenv("SOFTWORKDAY_NOTIFIER_SINK", "log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notifier.Sink != "log" {
		t.Errorf("notifier.sink = %q, want env override log", cfg.Notifier.Sink)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `data_dir: "`+dir+`"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("storage.backend default = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.ReflectionDebounce != time.Second {
		t.Errorf("reflection_debounce default = %v, want 1s", cfg.ReflectionDebounce)
	}
	if got, want := cfg.StoragePath(), filepath.Join(dir, "softworkday.db"); got != want {
		t.Errorf("StoragePath() = %q, want %q", got, want)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DataDir:            "/tmp/sw",
			ReflectionDebounce: time.Second,
			Storage:            StorageConfig{Backend: "sqlite"},
			Server:             ServerConfig{Addr: "127.0.0.1:7431"},
			Notifier:           NotifierConfig{Sink: "dbus"},
			LLM:                LLMConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.dsn"},
		{"unknown sink", func(c *Config) { c.Notifier.Sink = "email" }, "notifier.sink"},
		{"zero debounce", func(c *Config) { c.ReflectionDebounce = 0 }, "reflection_debounce"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
