// Package config loads the termstore configuration file.
//
// A configuration file is YAML:
//
//	database: ./termstore.db   # SQLite file for disc tables; empty = memory only
//	schema: ./schema.yaml      # table definitions (.yaml, .yml, .cue or a CUE dir)
//	log_level: info            # debug | info | warn | error
//	exec_context: dirty        # default execution context: dirty | transaction
//	trace: false               # print OpenTelemetry spans to stderr
//
// Relative paths are resolved against the directory holding the file.
// Command-line flags override file values.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/termstore/internal/gateway"
)

// Config holds the settings shared by all commands.
type Config struct {
	Database    string `yaml:"database"`
	Schema      string `yaml:"schema"`
	LogLevel    string `yaml:"log_level"`
	ExecContext string `yaml:"exec_context"`
	Trace       bool   `yaml:"trace"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:    "info",
		ExecContext: gateway.Dirty.String(),
	}
}

// Load reads the configuration file at path on top of Default. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Database = resolvePath(dir, cfg.Database)
	cfg.Schema = resolvePath(dir, cfg.Schema)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := gateway.ParseExecContext(c.ExecContext); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level. Invalid values yield info.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// DefaultExecContext returns the configured execution context. Invalid
// values yield gateway.Dirty.
func (c Config) DefaultExecContext() gateway.ExecContext {
	ec, _ := gateway.ParseExecContext(c.ExecContext)
	return ec
}

// ParseLevel parses debug, info, warn or error. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}
