// Package logging builds the console's structured logger and carries
// request-scoped loggers through context.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel applies when no level is configured.
const DefaultLevel = "info"

type contextKey string

const loggerContextKey contextKey = "admin.logger"

var noopLogger = zap.NewNop()

// ParseLevel parses debug, info, warn or error. An empty string selects DefaultLevel.
func ParseLevel(raw string) (zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		raw = DefaultLevel
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return level, fmt.Errorf("logging: parse level %q: %w", raw, err)
	}
	return level, nil
}

// New constructs a JSON logger writing to stdout at the given level.
func New(level string) (*zap.Logger, error) {
	atomic, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
	}

	cfg := zap.Config{
		Level:             atomic,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// Nop returns the shared no-op logger.
func Nop() *zap.Logger { return noopLogger }

// WithLogger stores logger on ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the logger stored on ctx or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}
