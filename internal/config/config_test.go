package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FLOWBOARD_CONFIG_DIR", dir)
	for _, k := range []string{"FLOWBOARD_STORE", "FLOWBOARD_DIR", "FLOWBOARD_LLM_API_KEY", "OPENAI_API_KEY", "FLOWBOARD_DATABASE_URL", "DATABASE_URL", "FLOWBOARD_ADDR", "FLOWBOARD_REDIS_URL", "FLOWBOARD_LLM_BASE_URL", "FLOWBOARD_LLM_MODEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default(dir)) {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
	if cfg.Storage.Dir != filepath.Join(dir, "data") {
		t.Fatalf("storage dir = %q", cfg.Storage.Dir)
	}
	if cfg.LLMTimeout() != time.Minute || cfg.ShutdownTimeout() != 10*time.Second {
		t.Fatalf("durations: %v %v", cfg.LLMTimeout(), cfg.ShutdownTimeout())
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FLOWBOARD_CONFIG_DIR", dir)

	want := Default(dir)
	want.Storage.Backend = "sqlite"
	want.LLM.Model = "local-model"
	want.Server.AllowOrigins = []string{"http://localhost:3000"}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml.bak")); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}

	got, err := LoadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default("/tmp/fb")
	env := map[string]string{
		"FLOWBOARD_STORE":     "redis",
		"FLOWBOARD_REDIS_URL": "redis://localhost:6379/0",
		"OPENAI_API_KEY":      "sk-fallback",
		"DATABASE_URL":        "postgres://x",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Storage.Backend != "redis" || cfg.Storage.RedisURL == "" {
		t.Fatalf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.LLM.APIKey != "sk-fallback" || cfg.Waitlist.DatabaseURL != "postgres://x" {
		t.Fatalf("fallback keys not applied: %+v %+v", cfg.LLM, cfg.Waitlist)
	}
	env["FLOWBOARD_LLM_API_KEY"] = "sk-primary"
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.LLM.APIKey != "sk-primary" {
		t.Fatalf("primary key should win, got %q", cfg.LLM.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if r := cfg.Redacted(); r.LLM.APIKey == "sk-primary" || cfg.LLM.APIKey != "sk-primary" {
		t.Fatalf("Redacted should copy and mask")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, false},
		{"redis without url", func(c *Config) { c.Storage.Backend = "redis" }, false},
		{"bad timeout", func(c *Config) { c.LLM.Timeout = "soon" }, false},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = "-1s" }, false},
		{"bad color profile", func(c *Config) { c.TUI.ColorProfile = "sepia" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
