package stores

import (
	"context"
	"sync"
	"time"

	"github.com/rentora/ability"
)

// MemoryRecordStore implements record loading in-memory for testing/demo
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[ability.RecordRef]ability.Record
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[ability.RecordRef]ability.Record)}
}

// Put registers a record under its own type tag and id.
func (s *MemoryRecordStore) Put(id string, rec ability.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[ability.RecordRef{Type: rec.SubjectType(), ID: id}] = rec
}

func (s *MemoryRecordStore) Delete(ref ability.RecordRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, ref)
}

func (s *MemoryRecordStore) LoadRecord(ctx context.Context, ref ability.RecordRef) (ability.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[ref]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// SessionStore resolves an opaque session token to the acting user's
// authorization projection. The surrounding system authenticates and writes
// the projection; the guard path only reads.
type SessionStore interface {
	Save(ctx context.Context, token string, user *ability.User, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (*ability.User, error)
	Revoke(ctx context.Context, token string) error
}

type memorySession struct {
	user      *ability.User
	expiresAt time.Time
}

// MemorySessionStore implements SessionStore in-memory for testing/demo
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *MemorySessionStore) Save(ctx context.Context, token string, user *ability.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := memorySession{user: user}
	if ttl > 0 {
		sess.expiresAt = time.Now().Add(ttl)
	}
	s.sessions[token] = sess
	return nil
}

func (s *MemorySessionStore) Resolve(ctx context.Context, token string) (*ability.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		return nil, nil
	}
	return sess.user, nil
}

func (s *MemorySessionStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
