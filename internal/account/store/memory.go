package store

import (
	"context"
	"strings"
	"sync"

	"prospace/internal/account/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// InMemory keeps accounts in a mutex-guarded map. Email uniqueness is
// enforced case-insensitively, matching the Postgres unique index.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[id.AccountID]*models.Account
	byEmail map[string]id.AccountID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[id.AccountID]*models.Account),
		byEmail: make(map[string]id.AccountID),
	}
}

// CreateIfEmailAvailable stores the account unless the email is taken.
func (s *InMemory) CreateIfEmailAvailable(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	copied := *account
	s.byID[account.ID] = &copied
	s.byEmail[key] = account.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[accountID]
	return &copied, nil
}

func (s *InMemory) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[account.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *account
	s.byID[account.ID] = &copied
	return nil
}
