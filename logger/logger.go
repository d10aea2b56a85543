// Package logger holds the small leveled logging surface the guard writes
// through, with adapters for the phuslu-style log package and log/slog.
package logger

// Logger receives guard log lines. keyvals are alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// TraceIDFunc produces a correlation id attached to every guard log line.
// It must be safe for concurrent use.
type TraceIDFunc func() string
