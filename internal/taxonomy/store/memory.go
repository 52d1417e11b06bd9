package store

import (
	"context"
	"sync"

	"prospace/internal/taxonomy/models"
	"prospace/pkg/platform/sentinel"
)

// InMemory serves the category taxonomy from memory. The taxonomy is
// read-mostly reference data; it is seeded at startup and listed in stable
// order.
type InMemory struct {
	mu         sync.RWMutex
	order      []string
	categories map[string]*models.Category
}

func NewInMemory() *InMemory {
	return &InMemory{categories: make(map[string]*models.Category)}
}

func (s *InMemory) Put(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[category.Slug]; !exists {
		s.order = append(s.order, category.Slug)
	}
	copied := *category
	s.categories[category.Slug] = &copied
	return nil
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *category
	return &copied, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]*models.Category, 0, len(s.order))
	for _, slug := range s.order {
		copied := *s.categories[slug]
		categories = append(categories, &copied)
	}
	return categories, nil
}
