// Package config loads the timetravel YAML configuration.
//
//	server:
//	  addr: ":8080"
//	  read_timeout: 5s
//	log:
//	  level: info
//	journal:
//	  path: /var/lib/timetravel/journal.db
//	debugger:
//	  max_history: 10000
//	demo:
//	  tick: 1s
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAddr is the fixed debug port used when none is configured.
const DefaultAddr = ":8080"

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Journal  JournalConfig  `yaml:"journal"`
	Debugger DebuggerConfig `yaml:"debugger"`
	Demo     DemoConfig     `yaml:"demo"`
}

// ServerConfig controls the debug HTTP listener.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the slog level: debug | info | warn | error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// JournalConfig enables the SQLite control journal when Path is set.
type JournalConfig struct {
	Path   string `yaml:"path"`
	Buffer int    `yaml:"buffer"`
}

// DebuggerConfig bounds the recorded history. 0 means unbounded.
type DebuggerConfig struct {
	MaxHistory int `yaml:"max_history"`
}

// DemoConfig drives the bundled counter application.
type DemoConfig struct {
	Tick time.Duration `yaml:"tick"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = 2 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Journal.Buffer <= 0 {
		c.Journal.Buffer = 256
	}
	if c.Demo.Tick <= 0 {
		c.Demo.Tick = time.Second
	}
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Debugger.MaxHistory < 0 {
		return fmt.Errorf("config: debugger.max_history must be >= 0, got %d", c.Debugger.MaxHistory)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}
