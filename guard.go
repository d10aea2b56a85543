package ability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rentora/ability/logger"
	"github.com/rentora/ability/utils"
)

// Authorization failures are deliberately generic: the caller is never told
// which policy check failed, so an unauthorized caller cannot probe for the
// existence or attributes of a resource.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
)

// PolicyContext is what a policy handler gets to look at: the computed
// ability, the acting user, and the candidate record when the operation
// references one.
type PolicyContext struct {
	Ability *Ability
	User    *User
	Record  Record
}

// PolicyHandler answers one authorization question for one operation.
type PolicyHandler interface {
	Handle(pc *PolicyContext) bool
}

// PolicyHandlerFunc adapts a closure to the PolicyHandler interface.
type PolicyHandlerFunc func(pc *PolicyContext) bool

func (f PolicyHandlerFunc) Handle(pc *PolicyContext) bool { return f(pc) }

// RecordRef identifies a candidate record an operation acts on (typically
// extracted from an :id path parameter by the routing layer).
type RecordRef struct {
	Type SubjectType
	ID   string
}

// RecordSource loads candidate records for record-scoped checks. It must
// populate whatever references rule conditions navigate into (a rental
// period's lease, a transaction's lease tenant). A missing record resolves
// to (nil, nil), not an error.
type RecordSource interface {
	LoadRecord(ctx context.Context, ref RecordRef) (Record, error)
}

// Guard intercepts inbound operations before their handlers run. Operations
// with no attached policy handlers are open and pass unconditionally; guarded
// operations must clear every attached handler in order.
type Guard struct {
	mu       sync.RWMutex
	handlers map[string][]PolicyHandler
	records  RecordSource
	logger   logger.Logger
	traceID  logger.TraceIDFunc
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithRecordSource installs the storage collaborator used to resolve
// candidate records.
func WithRecordSource(src RecordSource) GuardOption {
	return func(g *Guard) { g.records = src }
}

func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		handlers: make(map[string][]PolicyHandler),
		logger:   logger.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Attach appends policy handlers to an operation. The operation id may be a
// pattern ("GET /properties/:id", "unit.*"); patterns are consulted when no
// exact attachment exists.
func (g *Guard) Attach(operation string, handlers ...PolicyHandler) {
	if len(handlers) == 0 {
		return
	}
	g.mu.Lock()
	g.handlers[operation] = append(g.handlers[operation], handlers...)
	g.mu.Unlock()
}

// Detach removes every handler attached to an operation.
func (g *Guard) Detach(operation string) {
	g.mu.Lock()
	delete(g.handlers, operation)
	g.mu.Unlock()
}

// Operations returns the ids with at least one attached handler, sorted.
func (g *Guard) Operations() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.handlers))
	for op := range g.handlers {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// attached resolves the handler list for an operation: exact id first, then
// registered patterns.
func (g *Guard) attached(operation string) []PolicyHandler {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if hs, ok := g.handlers[operation]; ok {
		return hs
	}
	// Map iteration order is random; sort so overlapping patterns always
	// resolve to the same attachment.
	patterns := make([]string, 0, len(g.handlers))
	for pattern := range g.handlers {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	for _, pattern := range patterns {
		if utils.MatchOperation(operation, pattern) {
			return g.handlers[pattern]
		}
	}
	return nil
}

// debug writes a guard log line, appending the correlation id when a
// generator is installed.
func (g *Guard) debug(msg string, keyvals ...any) {
	if g.traceID != nil {
		keyvals = append(keyvals, "trace", g.traceID())
	}
	g.logger.Debug(msg, keyvals...)
}

// Authorize enforces the attached policy handlers for an operation. ref may
// be nil for type-level operations. The candidate record is fully resolved
// (or explicitly absent) before any handler runs, and context cancellation
// short-circuits the check so no partial decision is observable.
func (g *Guard) Authorize(ctx context.Context, operation string, user *User, ref *RecordRef) error {
	handlers := g.attached(operation)
	if len(handlers) == 0 {
		return nil
	}

	if user == nil {
		return ErrUnauthenticated
	}
	if !user.HasOrganizationContext() {
		g.debug("guard: missing organization context", "operation", operation, "user", user.ID)
		return ErrForbidden
	}

	ab := BuildAbility(user)

	var rec Record
	if ref != nil && g.records != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		loaded, err := g.records.LoadRecord(ctx, *ref)
		if err != nil {
			return fmt.Errorf("resolve record %s/%s: %w", ref.Type, ref.ID, err)
		}
		rec = loaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pc := &PolicyContext{Ability: ab, User: user, Record: rec}
	for _, h := range handlers {
		if !h.Handle(pc) {
			g.debug("guard: policy check failed", "operation", operation, "user", user.ID)
			return ErrForbidden
		}
	}
	return nil
}
