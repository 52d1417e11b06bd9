package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"prospace/internal/document/models"
	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
	"prospace/pkg/requestcontext"
)

// DocumentStore is the persistence port for document descriptors.
type DocumentStore interface {
	Save(ctx context.Context, doc *models.Document, payload []byte) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Document, error)
}

const (
	// MaxDocumentSize bounds one upload at 10 MiB.
	MaxDocumentSize = 10 << 20

	// uploadConcurrency bounds the finalize phase-2 fan-out.
	uploadConcurrency = 4
)

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Service stores verification documents. During finalize phase 2 it uploads
// the whole batch with bounded concurrency; individual failures are recorded
// as pending descriptors rather than failing the batch.
type Service struct {
	documents DocumentStore
}

func New(documents DocumentStore) *Service {
	return &Service{documents: documents}
}

// Validate rejects an upload before any storage effect.
func Validate(upload models.Upload) error {
	if !upload.Type.Valid() {
		return dErrors.NewField(dErrors.CodeValidation, "type", "unknown document type")
	}
	if upload.Filename == "" {
		return dErrors.NewField(dErrors.CodeValidation, "filename", "filename is required")
	}
	if !allowedContentTypes[upload.ContentType] {
		return dErrors.NewField(dErrors.CodeValidation, "content_type", "document must be a PDF, JPEG or PNG")
	}
	if len(upload.Content) == 0 {
		return dErrors.NewField(dErrors.CodeValidation, "content", "document content is empty")
	}
	if len(upload.Content) > MaxDocumentSize {
		return dErrors.NewField(dErrors.CodeValidation, "content", "document exceeds the 10 MiB limit")
	}
	return nil
}

// Store validates and persists a single document for an account.
func (s *Service) Store(ctx context.Context, accountID id.AccountID, upload models.Upload) (*models.Document, error) {
	if err := Validate(upload); err != nil {
		return nil, err
	}
	doc := &models.Document{
		ID:          id.DocumentID(uuid.New()),
		AccountID:   accountID,
		Type:        upload.Type,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		SizeBytes:   int64(len(upload.Content)),
		Status:      models.StatusStored,
		StoredAt:    requestcontext.Now(ctx),
	}
	if err := s.documents.Save(ctx, doc, upload.Content); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	return doc, nil
}

// BatchResult reports the outcome of a finalize phase-2 upload batch.
// Pending documents were validated but failed to reach durable storage; their
// descriptors are retained so an explicit client retry can resubmit them.
type BatchResult struct {
	Stored  []*models.Document
	Pending []regmodels.DocumentType
}

// StoreBatch uploads all documents for an account with bounded concurrency.
// A failed upload does not abort the batch and never rolls back documents
// already stored; the failure is reported through the result.
func (s *Service) StoreBatch(ctx context.Context, accountID id.AccountID, uploads []models.Upload) (BatchResult, error) {
	for _, upload := range uploads {
		if err := Validate(upload); err != nil {
			return BatchResult{}, err
		}
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for _, upload := range uploads {
		g.Go(func() error {
			doc, err := s.Store(gctx, accountID, upload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Pending = append(result.Pending, upload.Type)
				return nil
			}
			result.Stored = append(result.Stored, doc)
			return nil
		})
	}
	// Workers swallow their own errors into the pending list, so Wait only
	// propagates context cancellation.
	if err := g.Wait(); err != nil {
		return result, err
	}

	sort.Slice(result.Stored, func(i, j int) bool {
		return result.Stored[i].Type < result.Stored[j].Type
	})
	return result, nil
}

// ListByAccount returns the stored descriptors for an account.
func (s *Service) ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Document, error) {
	docs, err := s.documents.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}
