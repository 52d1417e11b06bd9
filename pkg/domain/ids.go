package domain

import (
	"github.com/google/uuid"

	dErrors "prospace/pkg/domain-errors"
)

// Typed identifiers prevent cross-type assignment at compile time. A DraftID
// can never be passed where an AccountID is expected, even though both are
// UUIDs underneath.
type (
	DraftID    uuid.UUID
	AccountID  uuid.UUID
	DocumentID uuid.UUID
)

func (id DraftID) String() string    { return uuid.UUID(id).String() }
func (id AccountID) String() string  { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id DraftID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseDraftID validates and returns a DraftID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseDraftID(s string) (DraftID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DraftID{}, err
	}
	return DraftID(u), nil
}

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
