package logger

import "context"

// Logger is the leveled, printf-style logging sink shared by every package.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// SetLevel changes the minimum level at runtime. Unknown levels fall back to info.
	SetLevel(level string)
}
