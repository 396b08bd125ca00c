// Package commands implements the ruledesc subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/cvickery/rule-descriptions/internal/cli/config"
)

// ConfigKey is the context key the root command stores the loaded
// configuration under.
type ConfigKey struct{}

// LoggerKey is the context key the root command stores the logger under.
type LoggerKey struct{}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(ConfigKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Schema:     config.DefaultSchema,
		StatePath:  config.DefaultStateFile,
		AnomalyDir: config.DefaultAnomalyDir,
	}
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
