package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"prospace/internal/document/models"
	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// Postgres persists document descriptors and payloads in PostgreSQL. The
// payload rides in a bytea column; document volumes here are wizard-scale,
// not object-store-scale.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, doc *models.Document, payload []byte) error {
	query := `
		INSERT INTO documents (id, account_id, type, filename, content_type, size_bytes, status, payload, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = COALESCE(EXCLUDED.payload, documents.payload),
			stored_at = EXCLUDED.stored_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.AccountID),
		string(doc.Type),
		doc.Filename,
		doc.ContentType,
		doc.SizeBytes,
		string(doc.Status),
		payload,
		doc.StoredAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		selectDocument+` WHERE id = $1`, uuid.UUID(docID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return doc, nil
}

func (s *Postgres) ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		selectDocument+` WHERE account_id = $1 ORDER BY stored_at`, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

const selectDocument = `
	SELECT id, account_id, type, filename, content_type, size_bytes, status, stored_at
	FROM documents
`

type documentRow interface {
	Scan(dest ...any) error
}

func scanDocument(row documentRow) (*models.Document, error) {
	var doc models.Document
	var docID, accountID uuid.UUID
	var docType, status string
	if err := row.Scan(&docID, &accountID, &docType, &doc.Filename, &doc.ContentType, &doc.SizeBytes, &status, &doc.StoredAt); err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(docID)
	doc.AccountID = id.AccountID(accountID)
	doc.Type = regmodels.DocumentType(docType)
	doc.Status = models.Status(status)
	return &doc, nil
}
