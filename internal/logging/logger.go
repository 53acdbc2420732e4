package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type requestIDKey struct{}

// Init configures the global zerolog logger. Development gets a console writer,
// everything else emits JSON lines.
func Init(service, env, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return logger
}

// WithRequestID stores the request id in ctx so service code can log it.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request id from ctx, or "" if none was set.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides request-scoped structured logging for services
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger bound to the request id found in ctx.
func NewLogger(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{zl: log.Logger.With().Str("request_id", requestID).Logger()}
}

// NewLoggerWith wraps an explicit zerolog logger; used by tests and background jobs.
func NewLoggerWith(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

func (l *Logger) LogError(operation string, err error) {
	l.zl.Error().Str("operation", operation).Err(err).Send()
}

func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.zl.Info().Str("operation", operation).Msgf(format, args...)
}

func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	l.zl.Warn().Str("operation", operation).Msgf(format, args...)
}
