package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Output formats accepted by NewWithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const (
	levelDebug int32 = iota
	levelInfo
	levelWarn
	levelError
)

var levels = map[string]int32{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

var slogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type implLogger struct {
	logger *log.Logger
	json   *slog.Logger
	level  atomic.Int32
}

// New creates a Logger writing to stdout.
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter creates a text Logger writing to w.
func NewWithWriter(w io.Writer, level string) Logger {
	return NewWithFormat(w, level, FormatText)
}

// NewWithFormat creates a Logger writing to w in the given format. Unknown
// formats fall back to text.
func NewWithFormat(w io.Writer, level, format string) Logger {
	l := &implLogger{}
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		l.json = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		l.logger = log.New(w, "", log.LstdFlags)
	}
	l.SetLevel(level)
	return l
}

func parseLevel(level string) int32 {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return levelInfo
	}
	return lvl
}

func (l *implLogger) SetLevel(level string) {
	l.level.Store(parseLevel(level))
}

func (l *implLogger) shouldLog(level string) bool {
	target, ok := levels[level]
	if !ok {
		return true
	}
	return target >= l.level.Load()
}

func (l *implLogger) printf(ctx context.Context, level, tag, msg string, args []any) {
	if !l.shouldLog(level) {
		return
	}
	if l.json != nil {
		l.json.Log(ctx, slogLevels[level], fmt.Sprintf(msg, args...))
		return
	}
	l.logger.Printf(tag+" "+msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, "debug", "[DEBUG]", msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, "info", "[INFO]", msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, "warn", "[WARN]", msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, "error", "[ERROR]", msg, args)
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return NewWithWriter(io.Discard, "error")
}
