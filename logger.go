package ability

import "github.com/rentora/ability/logger"

// Logger is re-exported so guard callers don't need a second import.
type Logger = logger.Logger

// WithLogger installs a Logger on the Guard.
func WithLogger(l logger.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTraceIDFunc installs a correlation id generator; when set, every guard
// log line carries a "trace" key with a freshly generated id.
func WithTraceIDFunc(fn logger.TraceIDFunc) GuardOption {
	return func(g *Guard) { g.traceID = fn }
}
