package store

import (
	"context"
	"sync"

	"prospace/internal/document/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// InMemory keeps document descriptors and payloads in memory.
type InMemory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.Document
	payloads  map[id.DocumentID][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{
		documents: make(map[id.DocumentID]*models.Document),
		payloads:  make(map[id.DocumentID][]byte),
	}
}

func (s *InMemory) Save(_ context.Context, doc *models.Document, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doc
	s.documents[doc.ID] = &copied
	if payload != nil {
		s.payloads[doc.ID] = payload
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*models.Document
	for _, doc := range s.documents {
		if doc.AccountID == accountID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}
