package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// SLogLogger adapts a standard library *slog.Logger to the Logger interface,
// for callers that already route everything through slog.
type SLogLogger struct {
	l *slog.Logger
}

func NewSLogLogger(l *slog.Logger) *SLogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SLogLogger{l: l}
}

func (s *SLogLogger) Debug(msg string, keyvals ...any) { s.write(slog.LevelDebug, msg, keyvals) }
func (s *SLogLogger) Info(msg string, keyvals ...any)  { s.write(slog.LevelInfo, msg, keyvals) }
func (s *SLogLogger) Error(msg string, keyvals ...any) { s.write(slog.LevelError, msg, keyvals) }

// write forwards alternating keyvals as slog args. slog requires string keys,
// so non-string keys are stringified; a trailing key with no value is dropped.
func (s *SLogLogger) write(level slog.Level, msg string, keyvals []any) {
	args := make([]any, 0, len(keyvals))
	for i := 0; i < len(keyvals)-1; i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		args = append(args, key, keyvals[i+1])
	}
	s.l.Log(context.Background(), level, msg, args...)
}
