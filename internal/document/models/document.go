package models

import (
	"time"

	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
)

// Document is the stored descriptor of one verification document. The binary
// payload lives in the blob store; this record tracks identity, type and
// upload status.
type Document struct {
	ID          id.DocumentID          `json:"id"`
	AccountID   id.AccountID           `json:"account_id"`
	Type        regmodels.DocumentType `json:"type"`
	Filename    string                 `json:"filename"`
	ContentType string                 `json:"content_type"`
	SizeBytes   int64                  `json:"size_bytes"`
	Status      Status                 `json:"status"`
	StoredAt    time.Time              `json:"stored_at"`
}

// Status tracks whether a document made it to durable storage.
//
// StatusPending marks a document whose upload failed during finalize. The
// record is kept so the client can retry explicitly; there is no background
// retry queue.
type Status string

const (
	StatusStored  Status = "stored"
	StatusPending Status = "pending"
)

// Upload is one incoming document file. Content is base64 on the wire
// (encoding/json handles []byte that way).
type Upload struct {
	Type        regmodels.DocumentType `json:"type"`
	Filename    string                 `json:"filename"`
	ContentType string                 `json:"content_type"`
	Content     []byte                 `json:"content"`
}
