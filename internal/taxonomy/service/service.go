package service

import (
	"context"
	"errors"

	"prospace/internal/taxonomy/models"
	dErrors "prospace/pkg/domain-errors"
	"prospace/pkg/platform/sentinel"
)

// CategoryStore is the read port for the category taxonomy.
type CategoryStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

// Service exposes the taxonomy to the step-2 selectors.
type Service struct {
	categories CategoryStore
}

func New(categories CategoryStore) *Service {
	return &Service{categories: categories}
}

func (s *Service) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

func (s *Service) Get(ctx context.Context, slug string) (*models.Category, error) {
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category slug is required")
	}
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown category")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up category")
	}
	return category, nil
}
