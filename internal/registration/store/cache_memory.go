package store

import (
	"context"
	"sync"

	"prospace/internal/registration/models"
	"prospace/pkg/platform/sentinel"
)

// MemoryCache is the in-process stand-in for the Redis draft cache, used in
// tests and when Redis is not configured.
type MemoryCache struct {
	mu     sync.RWMutex
	drafts map[string]*models.Draft
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{drafts: make(map[string]*models.Draft)}
}

func (c *MemoryCache) Get(_ context.Context, email string) (*models.Draft, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	draft, ok := c.drafts[normalize(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *draft
	return &copied, nil
}

func (c *MemoryCache) Set(_ context.Context, draft *models.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *draft
	c.drafts[normalize(draft.Email)] = &copied
	return nil
}

func (c *MemoryCache) Clear(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.drafts, normalize(email))
	return nil
}
