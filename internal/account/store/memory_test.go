package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"prospace/internal/account/models"
	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// =============================================================================
// In-Memory Account Store Test Suite
// =============================================================================

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *MemoryStoreSuite) newAccount(email string) *models.Account {
	account, err := models.NewAccount(
		id.AccountID(uuid.New()),
		regmodels.FormData{FirstName: "Yasmine", LastName: "El Mansouri"},
		email,
		"hashed",
		time.Now(),
	)
	s.Require().NoError(err)
	return account
}

func (s *MemoryStoreSuite) TestCreateIfEmailAvailable() {
	ctx := context.Background()

	s.Run("creates and finds by id and email", func() {
		account := s.newAccount("a@b.com")
		s.NoError(s.store.CreateIfEmailAvailable(ctx, account))

		byID, err := s.store.FindByID(ctx, account.ID)
		s.NoError(err)
		s.Equal(account.Email, byID.Email)

		byEmail, err := s.store.FindByEmail(ctx, "a@b.com")
		s.NoError(err)
		s.Equal(account.ID, byEmail.ID)
	})

	s.Run("email uniqueness is case-insensitive", func() {
		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, s.newAccount("dup@b.com")))

		err := s.store.CreateIfEmailAvailable(ctx, s.newAccount("DUP@B.com"))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

func (s *MemoryStoreSuite) TestUpdate() {
	ctx := context.Background()

	s.Run("updates an existing account", func() {
		account := s.newAccount("upd@b.com")
		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, account))

		account.ApplyActivation(time.Now())
		s.NoError(s.store.Update(ctx, account))

		found, err := s.store.FindByID(ctx, account.ID)
		s.NoError(err)
		s.Equal(models.AccountStatusActive, found.Status)
	})

	s.Run("updating a missing account returns not found", func() {
		s.ErrorIs(s.store.Update(ctx, s.newAccount("ghost@b.com")), sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestFind() {
	ctx := context.Background()

	s.Run("missing lookups return not found", func() {
		_, err := s.store.FindByID(ctx, id.AccountID(uuid.New()))
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByEmail(ctx, "nobody@b.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
