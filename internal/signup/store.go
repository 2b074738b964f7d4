// File: internal/signup/store.go
package signup

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DraftStore holds pending registrations. Implementations are ephemeral:
// losing drafts on restart is acceptable, durably persisting them is not,
// since drafts can carry a plaintext password between stages.
//
// Get and Put exchange copies, never the stored draft itself, so callers
// running a read-modify-write never share state with concurrent requests.
type DraftStore interface {
	Get(token uuid.UUID) (*Draft, bool)
	Put(draft *Draft)
	Delete(token uuid.UUID)
	// PurgeExpired drops drafts past their expiry and returns how many.
	PurgeExpired() int
}

// MemoryDraftStore is the in-process DraftStore.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*Draft
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryDraftStore creates a draft store whose entries expire ttl after
// creation.
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[uuid.UUID]*Draft),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the draft for token, treating an expired draft as absent.
func (s *MemoryDraftStore) Get(token uuid.UUID) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[token]
	if !ok {
		return nil, false
	}
	if s.now().After(draft.ExpiresAt) {
		delete(s.drafts, token)
		return nil, false
	}
	return draft.clone(), true
}

// Put stores a copy of the draft, stamping creation and expiry times on
// first write. Concurrent writers for the same token resolve last-write-wins.
func (s *MemoryDraftStore) Put(draft *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = s.now().UTC()
		draft.ExpiresAt = draft.CreatedAt.Add(s.ttl)
	}
	s.drafts[draft.Token] = draft.clone()
}

// Delete removes the draft for token.
func (s *MemoryDraftStore) Delete(token uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, token)
}

// PurgeExpired drops all expired drafts.
func (s *MemoryDraftStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for token, draft := range s.drafts {
		if now.After(draft.ExpiresAt) {
			delete(s.drafts, token)
			purged++
		}
	}
	return purged
}
