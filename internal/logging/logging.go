// Package logging builds the zap loggers used by the formbuilder command.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a sugared logger at level ("debug", "info", "warn", "error",
// or "off"). The json format uses the production encoder, console the
// development one.
func New(level, format string) (*zap.SugaredLogger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "off" || level == "none" {
		return zap.NewNop().Sugar(), nil
	}

	var lvl zapcore.Level
	if level == "" {
		lvl = zapcore.InfoLevel
	} else if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	case FormatJSON:
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger.Sugar(), nil
}
