package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wippyai/wirepb/codec"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// config holds the effective settings after the config file and flags are merged.
type config struct {
	Schema         string
	Type           string
	Charset        string
	LogLevel       string
	RecursionLimit int
	StandardSFixed bool
}

type fileConfig struct {
	Schema         string `toml:"schema"`
	Type           string `toml:"type"`
	Charset        string `toml:"charset"`
	LogLevel       string `toml:"log_level"`
	RecursionLimit int    `toml:"recursion_limit"`
	StandardSFixed bool   `toml:"standard_sfixed"`
}

func defaultConfig() config {
	return config{
		LogLevel:       "warn",
		RecursionLimit: codec.DefaultRecursionLimit,
	}
}

// loadConfig overlays the keys present in the file at path onto cfg.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("schema") {
		cfg.Schema = strings.TrimSpace(raw.Schema)
	}
	if meta.IsDefined("type") {
		cfg.Type = strings.TrimSpace(raw.Type)
	}
	if meta.IsDefined("charset") {
		cfg.Charset = strings.TrimSpace(raw.Charset)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("recursion_limit") {
		if raw.RecursionLimit <= 0 {
			return config{}, fmt.Errorf("load config: recursion_limit must be positive, got %d", raw.RecursionLimit)
		}
		cfg.RecursionLimit = raw.RecursionLimit
	}
	if meta.IsDefined("standard_sfixed") {
		cfg.StandardSFixed = raw.StandardSFixed
	}
	return cfg, nil
}

func (c config) codecOptions() []codec.Option {
	opts := []codec.Option{
		codec.WithRecursionLimit(c.RecursionLimit),
		codec.WithStandardSFixed(c.StandardSFixed),
	}
	if c.Charset != "" {
		opts = append(opts, codec.WithCharset(c.Charset))
	}
	return opts
}

// newLogger builds a console logger on stderr. PBWIRE_LOG_LEVEL overrides level.
func newLogger(level string) (*zap.Logger, error) {
	if env := os.Getenv("PBWIRE_LOG_LEVEL"); env != "" {
		level = env
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !stderrIsTerminal() {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return cfg.Build()
}
