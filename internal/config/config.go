package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	LLM      LLMConfig      `yaml:"llm" json:"llm"`
	Waitlist WaitlistConfig `yaml:"waitlist" json:"waitlist"`
	TUI      TUIConfig      `yaml:"tui" json:"tui"`
}

type StorageConfig struct {
	// Backend is one of file|sqlite|redis|memory.
	Backend     string `yaml:"backend" json:"backend"`
	Dir         string `yaml:"dir,omitempty" json:"dir,omitempty"`
	RedisURL    string `yaml:"redisUrl,omitempty" json:"redisUrl,omitempty"`
	RedisPrefix string `yaml:"redisPrefix,omitempty" json:"redisPrefix,omitempty"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr" json:"addr"`
	AllowOrigins    []string `yaml:"allowOrigins,omitempty" json:"allowOrigins,omitempty"`
	BodyLimit       string   `yaml:"bodyLimit,omitempty" json:"bodyLimit,omitempty"`
	ShutdownTimeout string   `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty"`
}

type LLMConfig struct {
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type WaitlistConfig struct {
	// DatabaseURL is a Postgres DSN. Empty keeps the waitlist in memory.
	DatabaseURL string `yaml:"databaseUrl,omitempty" json:"databaseUrl,omitempty"`
}

type TUIConfig struct {
	// ColorProfile is one of auto|ascii|ansi|ansi256|truecolor.
	ColorProfile string `yaml:"colorProfile,omitempty" json:"colorProfile,omitempty"`
	// MarkdownStyle is a glamour standard style (dark, light, notty, ...).
	MarkdownStyle string `yaml:"markdownStyle,omitempty" json:"markdownStyle,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.flowboard).
	if v := strings.TrimSpace(os.Getenv("FLOWBOARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowboard"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Default is the configuration used when no file exists. dir is the config directory.
func Default(dir string) *Config {
	return &Config{
		Storage: StorageConfig{Backend: "file", Dir: filepath.Join(dir, "data"), RedisPrefix: "flowboard:"},
		Server:  ServerConfig{Addr: "127.0.0.1:8080", BodyLimit: "64K", ShutdownTimeout: "10s"},
		LLM:     LLMConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", Timeout: "60s"},
		TUI:     TUIConfig{ColorProfile: "auto", MarkdownStyle: "dark"},
	}
}

// Load reads the config file (defaults when missing), then applies environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	cfg := Default(filepath.Dir(path))
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Storage.Backend, "FLOWBOARD_STORE")
	set(&c.Storage.Dir, "FLOWBOARD_DIR")
	set(&c.Storage.RedisURL, "FLOWBOARD_REDIS_URL")
	set(&c.Server.Addr, "FLOWBOARD_ADDR")
	set(&c.LLM.BaseURL, "FLOWBOARD_LLM_BASE_URL")
	set(&c.LLM.Model, "FLOWBOARD_LLM_MODEL")
	set(&c.LLM.APIKey, "FLOWBOARD_LLM_API_KEY", "OPENAI_API_KEY")
	set(&c.Waitlist.DatabaseURL, "FLOWBOARD_DATABASE_URL", "DATABASE_URL")
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case "", "file", "sqlite", "memory":
	case "redis":
		if strings.TrimSpace(c.Storage.RedisURL) == "" {
			return errors.New("config: storage.redisUrl is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown storage.backend %q (expected file|sqlite|redis|memory)", c.Storage.Backend)
	}
	if _, err := parseDuration("llm.timeout", c.LLM.Timeout); err != nil {
		return err
	}
	if _, err := parseDuration("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.TUI.ColorProfile)) {
	case "", "auto", "ascii", "ansi", "ansi256", "truecolor":
	default:
		return fmt.Errorf("config: unknown tui.colorProfile %q", c.TUI.ColorProfile)
	}
	return nil
}

func (c *Config) LLMTimeout() time.Duration {
	d, _ := parseDuration("llm.timeout", c.LLM.Timeout)
	return d
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration("server.shutdownTimeout", c.Server.ShutdownTimeout)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

func parseDuration(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("config: invalid %s %q", field, s)
	}
	return d, nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.LLM.APIKey != "" {
		out.LLM.APIKey = "********"
	}
	if out.Waitlist.DatabaseURL != "" {
		out.Waitlist.DatabaseURL = "********"
	}
	return &out
}

// Save writes the config file atomically, keeping a backup of the previous version.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, fileName+".bak.*.tmp", path+".bak", prev, 0o600)
	}
	// The file may hold an API key.
	return atomicWriteFile(dir, fileName+".*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
