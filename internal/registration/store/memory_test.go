package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"prospace/internal/registration/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// =============================================================================
// In-Memory Draft Store Test Suite
// =============================================================================

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newDraft(email string, step models.Step) *models.Draft {
	draft, err := models.NewDraft(id.DraftID(uuid.New()), email, s.now)
	s.Require().NoError(err)
	draft.ApplySave(step, models.FormData{}, s.now)
	return draft
}

// =============================================================================
// Upsert Tests
// =============================================================================

func (s *MemoryStoreSuite) TestUpsert() {
	ctx := context.Background()

	s.Run("insert then find round-trips", func() {
		draft := s.newDraft("a@b.com", models.Step2Profile)
		s.NoError(s.store.Upsert(ctx, draft))

		found, err := s.store.FindByEmail(ctx, "a@b.com")
		s.NoError(err)
		s.Equal(draft.ID, found.ID)
		s.Equal(models.Step2Profile, found.CurrentStep)
	})

	s.Run("email lookup is case-insensitive", func() {
		draft := s.newDraft("case@b.com", models.Step1Info)
		s.NoError(s.store.Upsert(ctx, draft))

		_, err := s.store.FindByEmail(ctx, "Case@B.com")
		s.NoError(err)
	})

	s.Run("delayed flush cannot move the step backwards", func() {
		ahead := s.newDraft("steps@b.com", models.Step4Plan)
		s.Require().NoError(s.store.Upsert(ctx, ahead))

		stale := s.newDraft("steps@b.com", models.Step2Profile)
		s.NoError(s.store.Upsert(ctx, stale))

		found, err := s.store.FindByEmail(ctx, "steps@b.com")
		s.NoError(err)
		s.Equal(models.Step4Plan, found.CurrentStep)
	})

	s.Run("draft id is stable across upserts", func() {
		first := s.newDraft("stable@b.com", models.Step1Info)
		s.Require().NoError(s.store.Upsert(ctx, first))

		second := s.newDraft("stable@b.com", models.Step2Profile)
		s.NoError(s.store.Upsert(ctx, second))

		found, err := s.store.FindByEmail(ctx, "stable@b.com")
		s.NoError(err)
		s.Equal(first.ID, found.ID)
	})

	s.Run("finalized draft rejects further upserts", func() {
		draft := s.newDraft("done@b.com", models.Step5Preview)
		s.Require().NoError(s.store.Upsert(ctx, draft))
		s.Require().NoError(s.store.MarkFinalized(ctx, "done@b.com"))

		err := s.store.Upsert(ctx, s.newDraft("done@b.com", models.Step5Preview))
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})
}

// =============================================================================
// Lookup + Lifecycle Tests
// =============================================================================

func (s *MemoryStoreSuite) TestFindByEmail() {
	ctx := context.Background()

	s.Run("missing email returns not found", func() {
		_, err := s.store.FindByEmail(ctx, "nobody@b.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned draft is a copy", func() {
		draft := s.newDraft("copy@b.com", models.Step1Info)
		s.Require().NoError(s.store.Upsert(ctx, draft))

		found, err := s.store.FindByEmail(ctx, "copy@b.com")
		s.Require().NoError(err)
		found.FormData.FirstName = "mutated"

		again, err := s.store.FindByEmail(ctx, "copy@b.com")
		s.NoError(err)
		s.Empty(again.FormData.FirstName)
	})
}

func (s *MemoryStoreSuite) TestMarkFinalized() {
	ctx := context.Background()

	s.Run("marks the stored draft finalized", func() {
		draft := s.newDraft("fin@b.com", models.Step5Preview)
		s.Require().NoError(s.store.Upsert(ctx, draft))

		s.NoError(s.store.MarkFinalized(ctx, "fin@b.com"))
		found, err := s.store.FindByEmail(ctx, "fin@b.com")
		s.NoError(err)
		s.Equal(models.DraftStatusFinalized, found.Status)
	})

	s.Run("missing draft returns not found", func() {
		s.ErrorIs(s.store.MarkFinalized(ctx, "nobody@b.com"), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Run("delete removes the draft", func() {
		draft := s.newDraft("gone@b.com", models.Step1Info)
		s.Require().NoError(s.store.Upsert(ctx, draft))

		s.NoError(s.store.Delete(ctx, "gone@b.com"))
		_, err := s.store.FindByEmail(ctx, "gone@b.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete of a missing draft is a no-op", func() {
		s.NoError(s.store.Delete(ctx, "nobody@b.com"))
	})
}
