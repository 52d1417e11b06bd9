package audit

import (
	"context"
	"time"

	id "prospace/pkg/domain"
)

// EventType names a registration lifecycle event.
type EventType string

const (
	EventDraftCreated   EventType = "registration.draft_created"
	EventDraftSaved     EventType = "registration.draft_saved"
	EventDraftResumed   EventType = "registration.draft_resumed"
	EventDraftCleared   EventType = "registration.draft_cleared"
	EventAccountCreated EventType = "registration.account_created"
	EventDocumentStored EventType = "registration.document_stored"
	EventFinalized      EventType = "registration.finalized"
)

// Event is one append-only audit record. Email identifies the registration
// before an account exists; AccountID is set from finalize onwards.
type Event struct {
	Type      EventType         `json:"type"`
	Email     string            `json:"email,omitempty"`
	DraftID   id.DraftID        `json:"draft_id,omitempty"`
	AccountID id.AccountID      `json:"account_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store is the append-only persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEmail(ctx context.Context, email string) ([]Event, error)
}

// Sink forwards events to an external system (Kafka) in addition to the
// store. Optional; nil means store-only.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
