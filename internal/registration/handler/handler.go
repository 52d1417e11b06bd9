package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	docmodels "prospace/internal/document/models"
	"prospace/internal/jwttoken"
	"prospace/internal/registration/models"
	regservice "prospace/internal/registration/service"
	"prospace/internal/transport/http/shared"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
	"prospace/pkg/email"
	"prospace/pkg/requestcontext"
)

// DraftService is the registration draft manager consumed by this handler.
type DraftService interface {
	SaveDraft(ctx context.Context, email string, step models.Step, data models.FormData) (*models.Draft, error)
	LoadDraft(ctx context.Context, email string) (*models.Draft, error)
	Finalize(ctx context.Context, req regservice.FinalizeRequest) (*regservice.FinalizeResult, error)
	ClearDraft(ctx context.Context, email string, purge bool) error
	IsSaving() bool
	LastSaved() time.Time
}

// DocumentService is the single-document retry path.
type DocumentService interface {
	Store(ctx context.Context, accountID id.AccountID, upload docmodels.Upload) (*docmodels.Document, error)
}

// TokenValidator authenticates the document-retry endpoint.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// Handler exposes the registration endpoints.
type Handler struct {
	drafts    DraftService
	documents DocumentService
	tokens    TokenValidator
	logger    *slog.Logger
}

func New(drafts DraftService, documents DocumentService, tokens TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		drafts:    drafts,
		documents: documents,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registration/draft", h.handleLoadDraft)
	r.Post("/registration/draft", h.handleSaveDraft)
	r.Delete("/registration/draft", h.handleClearDraft)
	r.Post("/registration/finalize", h.handleFinalize)
	r.Post("/registration/documents", h.handleUploadDocument)
	r.Post("/registration/photo", h.handleUploadPhoto)
}

// handleSaveDraft applies one autosave snapshot. The durable write is
// debounced; the response reports the merged draft immediately.
func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	draft, err := h.drafts.SaveDraft(ctx, req.Email, models.Step(req.Step), req.FormData)
	if err != nil {
		h.logWarn(ctx, "save draft failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, SaveDraftResponse{
		Draft:          draft,
		IsSaving:       h.drafts.IsSaving(),
		LastSavedAt:    h.drafts.LastSaved(),
		MissingForStep: models.MissingForStep(draft.CurrentStep, draft.FormData, req.Documents),
	})
}

// handleLoadDraft resumes a prior registration by email. 404 when no open
// draft exists; lookup never creates one.
func (h *Handler) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	emailParam := r.URL.Query().Get("email")
	if err := validateEmail(emailParam); err != nil {
		shared.WriteError(w, err)
		return
	}

	draft, err := h.drafts.LoadDraft(ctx, emailParam)
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logWarn(ctx, "load draft failed", err)
		}
		shared.WriteError(w, err)
		return
	}

	resp := LoadDraftResponse{Draft: draft}
	if draft.FormData.FirstName == "" && draft.FormData.LastName == "" {
		resp.SuggestedFirstName, resp.SuggestedLastName = email.DeriveNameFromEmail(draft.Email)
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleClearDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	emailParam := r.URL.Query().Get("email")
	if err := validateEmail(emailParam); err != nil {
		shared.WriteError(w, err)
		return
	}
	purge := r.URL.Query().Get("purge") == "true"

	if err := h.drafts.ClearDraft(ctx, emailParam, purge); err != nil {
		h.logWarn(ctx, "clear draft failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFinalize runs the two-phase draft-to-account transition. A partial
// phase-2 failure still returns 201 with the pending documents listed; the
// account exists and the client retries uploads explicitly.
func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.drafts.Finalize(ctx, regservice.FinalizeRequest{
		Email:           req.Email,
		Data:            req.FormData,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Documents:       req.Documents,
	})
	if err != nil {
		h.logWarn(ctx, "finalize failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, result)
}

// handleUploadDocument resubmits one verification document for the
// authenticated account (the retry path after a partial finalize).
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := h.authenticate(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
		return
	}

	var req UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	doc, err := h.documents.Store(ctx, accountID, req.Document)
	if err != nil {
		h.logWarn(ctx, "document upload failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, doc)
}

// handleUploadPhoto accepts a profile photo and returns its served URL. When
// a draft email is supplied the URL is merged into the draft so the preview
// step can show it. The binary itself is handed to the media CDN out of band.
func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UploadPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	ext := ".jpg"
	if req.ContentType == "image/png" {
		ext = ".png"
	}
	photoURL := "/media/photos/" + uuid.NewString() + ext

	if req.Email != "" {
		if _, err := h.drafts.SaveDraft(ctx, req.Email, models.Step1Info, models.FormData{PhotoURL: photoURL}); err != nil {
			// Photo URL not attached; the client keeps its local preview and
			// the photo is merged on the next autosave.
			h.logWarn(ctx, "photo merge into draft failed", err)
		}
	}

	shared.WriteJSON(w, http.StatusCreated, UploadPhotoResponse{PhotoURL: photoURL})
}

func (h *Handler) authenticate(r *http.Request) (*jwttoken.Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token")
	}
	return h.tokens.ValidateToken(token)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
