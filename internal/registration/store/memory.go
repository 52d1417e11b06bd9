package store

import (
	"context"
	"strings"
	"sync"

	"prospace/internal/registration/models"
	"prospace/pkg/platform/sentinel"
)

// InMemory keeps drafts in a mutex-guarded map keyed by lowercased email.
// Used in tests and when no Postgres URL is configured.
type InMemory struct {
	mu     sync.RWMutex
	drafts map[string]*models.Draft
}

func NewInMemory() *InMemory {
	return &InMemory{drafts: make(map[string]*models.Draft)}
}

// Upsert stores the draft, replacing any prior version for the same email.
// The monotonic-step invariant is enforced here too so that a delayed flush
// carrying an older snapshot can never move the resume point backwards.
func (s *InMemory) Upsert(_ context.Context, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalize(draft.Email)
	if existing, ok := s.drafts[key]; ok {
		if existing.Status == models.DraftStatusFinalized {
			return sentinel.ErrInvalidState
		}
		if existing.CurrentStep > draft.CurrentStep {
			draft.CurrentStep = existing.CurrentStep
		}
		// The identifier assigned on first save is stable for the draft's
		// lifetime, matching the Postgres upsert.
		draft.ID = existing.ID
	}
	copied := *draft
	s.drafts[key] = &copied
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[normalize(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *draft
	return &copied, nil
}

// MarkFinalized consumes the draft. Terminal: further upserts are rejected.
func (s *InMemory) MarkFinalized(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[normalize(email)]
	if !ok {
		return sentinel.ErrNotFound
	}
	draft.Status = models.DraftStatusFinalized
	return nil
}

func (s *InMemory) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, normalize(email))
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
