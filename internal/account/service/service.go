package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"prospace/internal/account/models"
	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
	"prospace/pkg/platform/sentinel"
	"prospace/pkg/requestcontext"
)

// AccountStore is the persistence port for accounts.
type AccountStore interface {
	CreateIfEmailAvailable(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}

// TokenIssuer issues access tokens for newly created accounts.
type TokenIssuer interface {
	GenerateAccessToken(accountID uuid.UUID, email string, expiresIn time.Duration) (string, error)
}

// Service owns account creation (finalize phase 1) and verification status
// transitions.
type Service struct {
	accounts AccountStore
	tokens   TokenIssuer
	tokenTTL time.Duration
}

func New(accounts AccountStore, tokens TokenIssuer, tokenTTL time.Duration) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// CreateParams carries everything needed to create an account from a
// finalized draft. The password arrives pre-validated by the registration
// service (length and confirmation are checked before any store effect).
type CreateParams struct {
	Email    string
	Password string
	Data     regmodels.FormData
}

// Created is the result handle returned to the registration service: the
// durable account plus a signed access token so the client can proceed
// straight to the dashboard.
type Created struct {
	Account *models.Account
	Token   string
}

// Create hashes the password and stores the account. The account starts in
// pending_documents status; document verification happens in finalize
// phase 2.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Created, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account, err := models.NewAccount(
		id.AccountID(uuid.New()),
		params.Data,
		params.Email,
		string(hash),
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.CreateIfEmailAvailable(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account already exists for this email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(account.ID), account.Email, s.tokenTTL)
	if err != nil {
		// The account exists; a token failure should not undo phase 1. The
		// client can sign in with the credentials it just chose.
		return &Created{Account: account}, nil
	}

	return &Created{Account: account, Token: token}, nil
}

// Authenticate verifies credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	return account, nil
}

// Activate moves an account out of pending_documents once every required
// verification document is stored.
func (s *Service) Activate(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if err := account.CanActivate(); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "account is not pending documents")
	}
	account.ApplyActivation(requestcontext.Now(ctx))
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}
	return account, nil
}
