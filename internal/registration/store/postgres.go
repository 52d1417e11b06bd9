package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"prospace/internal/registration/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// Postgres persists drafts in PostgreSQL. The store is pure I/O; merge and
// step-gating rules live in the domain model and service. The one exception
// is the monotonic-step guard, which is also enforced in SQL so that
// out-of-order flushes (a slow earlier save landing after a faster later one)
// cannot move the resume point backwards.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, draft *models.Draft) error {
	formData, err := json.Marshal(draft.FormData)
	if err != nil {
		return fmt.Errorf("marshal form data: %w", err)
	}
	query := `
		INSERT INTO registration_drafts (id, email, current_step, form_data, status, version, last_saved_at, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			current_step = GREATEST(registration_drafts.current_step, EXCLUDED.current_step),
			form_data = EXCLUDED.form_data,
			version = registration_drafts.version + 1,
			last_saved_at = EXCLUDED.last_saved_at
		WHERE registration_drafts.status = 'open'
		RETURNING id, current_step, version
	`
	var draftID uuid.UUID
	err = s.db.QueryRowContext(ctx, query,
		uuid.UUID(draft.ID),
		draft.Email,
		int(draft.CurrentStep),
		formData,
		string(draft.Status),
		draft.Version,
		draft.LastSavedAt,
		draft.CreatedAt,
	).Scan(&draftID, &draft.CurrentStep, &draft.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The conditional update skipped the row: draft already consumed.
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("upsert draft: %w", err)
	}
	draft.ID = id.DraftID(draftID)
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Draft, error) {
	query := `
		SELECT id, email, current_step, form_data, status, version, last_saved_at, created_at
		FROM registration_drafts
		WHERE email = lower($1)
	`
	draft, err := scanDraft(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find draft by email: %w", err)
	}
	return draft, nil
}

func (s *Postgres) MarkFinalized(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE registration_drafts SET status = 'finalized' WHERE email = lower($1)`, email)
	if err != nil {
		return fmt.Errorf("mark draft finalized: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark draft finalized rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM registration_drafts WHERE email = lower($1)`, email)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

type draftRow interface {
	Scan(dest ...any) error
}

func scanDraft(row draftRow) (*models.Draft, error) {
	var draft models.Draft
	var draftID uuid.UUID
	var formData []byte
	var status string
	var step int
	if err := row.Scan(&draftID, &draft.Email, &step, &formData, &status, &draft.Version, &draft.LastSavedAt, &draft.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(formData, &draft.FormData); err != nil {
		return nil, fmt.Errorf("unmarshal form data: %w", err)
	}
	draft.ID = id.DraftID(draftID)
	draft.CurrentStep = models.Step(step)
	draft.Status = models.DraftStatus(status)
	return &draft, nil
}
