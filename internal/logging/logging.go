// Package logging builds the zap loggers used across the binary.
//
// The dashboard owns the terminal, so it only ever logs to a file (or not at
// all). The backend and one-shot CLI commands log to stderr.
package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level string
	// File receives JSON lines when set.
	File string
	// Stderr is used when File is empty. With neither, New returns a no-op
	// logger.
	Stderr bool
}

func New(opts Options) (*zap.Logger, error) {
	var out string
	switch {
	case strings.TrimSpace(opts.File) != "":
		out = strings.TrimSpace(opts.File)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, err
		}
	case opts.Stderr:
		out = "stderr"
	default:
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

type loggerKey struct{}

func WithLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

// From returns the context's logger, or a no-op logger.
func From(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
