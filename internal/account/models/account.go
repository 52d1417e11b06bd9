package models

import (
	"time"

	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
)

// Account is a professional account created by finalizing a registration
// draft.
//
// Invariants:
//   - Email is unique across accounts (case-insensitive)
//   - PasswordHash is never serialized
//   - Status starts at pending_documents and moves to active only once all
//     required verification documents are stored
type Account struct {
	ID             id.AccountID             `json:"id"`
	Email          string                   `json:"email"`
	FirstName      string                   `json:"first_name"`
	LastName       string                   `json:"last_name"`
	Phone          string                   `json:"phone,omitempty"`
	Country        string                   `json:"country,omitempty"`
	City           string                   `json:"city,omitempty"`
	ProfessionType regmodels.ProfessionType `json:"profession_type"`
	Category       string                   `json:"category"`
	Specialty      string                   `json:"specialty,omitempty"`
	Languages      []string                 `json:"languages,omitempty"`
	Bio            string                   `json:"bio,omitempty"`
	PhotoURL       string                   `json:"photo_url,omitempty"`
	Plan           regmodels.Plan           `json:"plan"`
	PasswordHash   string                   `json:"-"`
	Status         AccountStatus            `json:"status"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func NewAccount(accountID id.AccountID, data regmodels.FormData, email, passwordHash string, now time.Time) (*Account, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account password hash cannot be empty")
	}
	return &Account{
		ID:             accountID,
		Email:          email,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Phone:          data.Phone,
		Country:        data.Country,
		City:           data.City,
		ProfessionType: data.ProfessionType,
		Category:       data.Category,
		Specialty:      data.Specialty,
		Languages:      data.Languages,
		Bio:            data.Bio,
		PhotoURL:       data.PhotoURL,
		Plan:           data.Plan,
		PasswordHash:   passwordHash,
		Status:         AccountStatusPendingDocuments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanActivate checks whether the account may leave the pending-documents
// state.
func (a *Account) CanActivate() error {
	if a.Status != AccountStatusPendingDocuments {
		return dErrors.New(dErrors.CodeInvariantViolation, "account is not pending documents")
	}
	return nil
}

// ApplyActivation marks the account as fully verified.
func (a *Account) ApplyActivation(now time.Time) {
	a.Status = AccountStatusActive
	a.UpdatedAt = now
}

// AccountStatus is the verification lifecycle state of an account.
type AccountStatus string

const (
	// AccountStatusPendingDocuments means the account exists but one or more
	// required verification documents are still missing or failed to upload.
	AccountStatusPendingDocuments AccountStatus = "pending_documents"
	AccountStatusActive           AccountStatus = "active"
)
