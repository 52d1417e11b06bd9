package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"prospace/internal/account/models"
	"prospace/internal/account/store"
	regmodels "prospace/internal/registration/models"
	dErrors "prospace/pkg/domain-errors"
)

// =============================================================================
// Account Service Test Suite
// =============================================================================

type fakeTokens struct {
	fail bool
}

func (f *fakeTokens) GenerateAccessToken(_ uuid.UUID, _ string, _ time.Duration) (string, error) {
	if f.fail {
		return "", dErrors.New(dErrors.CodeInternal, "signing failed")
	}
	return "token-abc", nil
}

type AccountServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	tokens  *fakeTokens
	service *Service
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceSuite))
}

func (s *AccountServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.tokens = &fakeTokens{}
	s.service = New(s.store, s.tokens, time.Hour)
}

func (s *AccountServiceSuite) createParams(email string) CreateParams {
	return CreateParams{
		Email:    email,
		Password: "correct-horse",
		Data: regmodels.FormData{
			FirstName:      "Yasmine",
			LastName:       "El Mansouri",
			ProfessionType: regmodels.ProfessionRegulated,
			Category:       "lawyer",
			Plan:           regmodels.PlanVisible,
		},
	}
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *AccountServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("creates a pending account with a hashed password and token", func() {
		created, err := s.service.Create(ctx, s.createParams("a@b.com"))
		s.NoError(err)
		s.Equal("token-abc", created.Token)
		s.Equal(models.AccountStatusPendingDocuments, created.Account.Status)
		s.Equal("Yasmine", created.Account.FirstName)

		// The stored hash verifies against the original password and never
		// equals it.
		s.NotEqual("correct-horse", created.Account.PasswordHash)
		s.NoError(bcrypt.CompareHashAndPassword(
			[]byte(created.Account.PasswordHash), []byte("correct-horse")))
	})

	s.Run("duplicate email returns a conflict", func() {
		_, err := s.service.Create(ctx, s.createParams("dup@b.com"))
		s.Require().NoError(err)

		_, err = s.service.Create(ctx, s.createParams("dup@b.com"))
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})

	s.Run("token failure does not undo account creation", func() {
		s.tokens.fail = true
		defer func() { s.tokens.fail = false }()

		created, err := s.service.Create(ctx, s.createParams("no-token@b.com"))
		s.NoError(err)
		s.Empty(created.Token)
		s.NotNil(created.Account)

		account, err := s.store.FindByEmail(ctx, "no-token@b.com")
		s.NoError(err)
		s.Equal(created.Account.ID, account.ID)
	})
}

// =============================================================================
// Authenticate Tests
// =============================================================================

func (s *AccountServiceSuite) TestAuthenticate() {
	ctx := context.Background()

	s.Run("valid credentials return the account", func() {
		created, err := s.service.Create(ctx, s.createParams("auth@b.com"))
		s.Require().NoError(err)

		account, err := s.service.Authenticate(ctx, "auth@b.com", "correct-horse")
		s.NoError(err)
		s.Equal(created.Account.ID, account.ID)
	})

	s.Run("wrong password is unauthorized", func() {
		_, err := s.service.Create(ctx, s.createParams("wrong@b.com"))
		s.Require().NoError(err)

		_, err = s.service.Authenticate(ctx, "wrong@b.com", "battery-staple")
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email is unauthorized, not not-found", func() {
		_, err := s.service.Authenticate(ctx, "nobody@b.com", "whatever-pass")
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// Activate Tests
// =============================================================================

func (s *AccountServiceSuite) TestActivate() {
	ctx := context.Background()

	s.Run("pending account becomes active", func() {
		created, err := s.service.Create(ctx, s.createParams("act@b.com"))
		s.Require().NoError(err)

		account, err := s.service.Activate(ctx, created.Account.ID)
		s.NoError(err)
		s.Equal(models.AccountStatusActive, account.Status)
	})

	s.Run("activating twice is a conflict", func() {
		created, err := s.service.Create(ctx, s.createParams("twice@b.com"))
		s.Require().NoError(err)

		_, err = s.service.Activate(ctx, created.Account.ID)
		s.Require().NoError(err)

		_, err = s.service.Activate(ctx, created.Account.ID)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})
}
