package handler

import (
	"time"

	"github.com/asaskevich/govalidator"

	docmodels "prospace/internal/document/models"
	"prospace/internal/registration/models"
	dErrors "prospace/pkg/domain-errors"
)

// SaveDraftRequest is the autosave payload: the step being entered/left plus
// the full current form snapshot. Documents lists the document types the
// client already holds for the step-3 completeness readout; files themselves
// only travel on finalize and the retry endpoints.
type SaveDraftRequest struct {
	Email     string                `json:"email"`
	Step      int                   `json:"step"`
	FormData  models.FormData       `json:"form_data"`
	Documents []models.DocumentType `json:"documents,omitempty"`
}

func (r SaveDraftRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if !models.Step(r.Step).Valid() {
		return dErrors.NewField(dErrors.CodeBadRequest, "step", "step must be between 1 and 5")
	}
	return nil
}

// SaveDraftResponse reports the merged draft plus the save-cycle status flags
// the wizard surfaces ("saving…" / "saved at").
type SaveDraftResponse struct {
	Draft          *models.Draft `json:"draft"`
	IsSaving       bool          `json:"is_saving"`
	LastSavedAt    time.Time     `json:"last_saved_at,omitempty"`
	MissingForStep []string      `json:"missing_for_step,omitempty"`
}

// LoadDraftResponse carries a resumed draft. The suggested names are derived
// from the email for prefill hints; they are not part of the saved form data.
type LoadDraftResponse struct {
	Draft              *models.Draft `json:"draft"`
	SuggestedFirstName string        `json:"suggested_first_name,omitempty"`
	SuggestedLastName  string        `json:"suggested_last_name,omitempty"`
}

// FinalizeRequest is the full registration payload with credentials and
// verification documents.
type FinalizeRequest struct {
	Email           string             `json:"email"`
	Password        string             `json:"password"`
	PasswordConfirm string             `json:"password_confirm"`
	FormData        models.FormData    `json:"form_data"`
	Documents       []docmodels.Upload `json:"documents"`
}

func (r FinalizeRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return dErrors.NewField(dErrors.CodeValidation, "password", "password is required")
	}
	return nil
}

// UploadDocumentRequest resubmits a single document for an existing account
// (the retry path after a partial finalize).
type UploadDocumentRequest struct {
	Document docmodels.Upload `json:"document"`
}

// UploadPhotoRequest carries a profile photo. Content is base64 on the wire.
type UploadPhotoRequest struct {
	Email       string `json:"email,omitempty"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

func (r UploadPhotoRequest) Validate() error {
	if r.ContentType != "image/jpeg" && r.ContentType != "image/png" {
		return dErrors.NewField(dErrors.CodeValidation, "content_type", "photo must be a JPEG or PNG")
	}
	if len(r.Content) == 0 {
		return dErrors.NewField(dErrors.CodeValidation, "content", "photo content is empty")
	}
	if len(r.Content) > maxPhotoSize {
		return dErrors.NewField(dErrors.CodeValidation, "content", "photo exceeds the 5 MiB limit")
	}
	return nil
}

// UploadPhotoResponse returns the served photo URL.
type UploadPhotoResponse struct {
	PhotoURL string `json:"photo_url"`
}

const maxPhotoSize = 5 << 20

func validateEmail(email string) error {
	if !govalidator.StringLength(email, "1", "255") || !govalidator.IsEmail(email) {
		return dErrors.NewField(dErrors.CodeBadRequest, "email", "invalid email")
	}
	return nil
}
