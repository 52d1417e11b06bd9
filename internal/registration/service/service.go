package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	accountmodels "prospace/internal/account/models"
	accountservice "prospace/internal/account/service"
	"prospace/internal/audit"
	docmodels "prospace/internal/document/models"
	docservice "prospace/internal/document/service"
	"prospace/internal/registration/autosave"
	regmetrics "prospace/internal/registration/metrics"
	"prospace/internal/registration/models"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
	"prospace/pkg/platform/sentinel"
	"prospace/pkg/requestcontext"
)

// MinPasswordLength is the password policy floor checked before any store or
// network effect.
const MinPasswordLength = 8

// DraftStore is the durable persistence port for drafts.
type DraftStore interface {
	Upsert(ctx context.Context, draft *models.Draft) error
	FindByEmail(ctx context.Context, email string) (*models.Draft, error)
	MarkFinalized(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// DraftCache is the injected key-value capability holding the working draft
// snapshot. The service is its single writer.
type DraftCache interface {
	Get(ctx context.Context, email string) (*models.Draft, error)
	Set(ctx context.Context, draft *models.Draft) error
	Clear(ctx context.Context, email string) error
}

// AccountCreator is finalize phase 1: account creation and activation.
type AccountCreator interface {
	Create(ctx context.Context, params accountservice.CreateParams) (*accountservice.Created, error)
	Activate(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
}

// DocumentBatcher is finalize phase 2: the document upload fan-out.
type DocumentBatcher interface {
	StoreBatch(ctx context.Context, accountID id.AccountID, uploads []docmodels.Upload) (docservice.BatchResult, error)
}

// Emitter publishes registration audit events. Fire-and-forget.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the registration draft manager: it mediates between transient
// wizard state and durable draft storage, and performs the two-phase finalize
// transition from draft to account.
type Service struct {
	drafts    DraftStore
	cache     DraftCache
	accounts  AccountCreator
	documents DocumentBatcher
	saver     *autosave.Saver
	emitter   Emitter
	metrics   *regmetrics.Metrics
	logger    *slog.Logger

	// checked remembers emails already looked up so repeated blur events on
	// the email field do not re-trigger a store lookup.
	checkedMu sync.Mutex
	checked   map[string]bool
}

type serviceConfig struct {
	emitter  Emitter
	metrics  *regmetrics.Metrics
	debounce time.Duration
}

// Option configures the Service.
type Option func(*serviceConfig)

func WithEmitter(emitter Emitter) Option {
	return func(cfg *serviceConfig) { cfg.emitter = emitter }
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// WithDebounce overrides the autosave debounce window.
func WithDebounce(d time.Duration) Option {
	return func(cfg *serviceConfig) { cfg.debounce = d }
}

func New(
	drafts DraftStore,
	cache DraftCache,
	accounts AccountCreator,
	documents DocumentBatcher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	cfg := &serviceConfig{debounce: 2 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Service{
		drafts:    drafts,
		cache:     cache,
		accounts:  accounts,
		documents: documents,
		emitter:   cfg.emitter,
		metrics:   cfg.metrics,
		logger:    logger,
		checked:   make(map[string]bool),
	}
	s.saver = autosave.New(cfg.debounce, s.flushDraft,
		autosave.WithOnError(s.onFlushError))
	return s
}

// Close stops the autosaver, flushing pending snapshots best-effort.
func (s *Service) Close() {
	s.saver.Close()
}

// IsSaving reports whether a durable flush is in flight.
func (s *Service) IsSaving() bool { return s.saver.IsSaving() }

// LastSaved returns the time of the last successful durable flush.
func (s *Service) LastSaved() time.Time { return s.saver.LastSaved() }

// SaveDraft merges a wizard snapshot into the draft and schedules a debounced
// durable write. The caller is never blocked on the durable store: the cache
// write is synchronous, the store write rides the autosaver.
//
// The returned draft reflects the post-merge state: the step never moves
// backwards and previously saved fields are never lost.
func (s *Service) SaveDraft(ctx context.Context, email string, step models.Step, data models.FormData) (*models.Draft, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "email", "email is required")
	}
	if !step.Valid() {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "step", "step out of range")
	}

	now := requestcontext.Now(ctx)
	draft, created, err := s.loadOrCreate(ctx, email, now)
	if err != nil {
		return nil, err
	}

	if err := draft.Save(step, data, now); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "registration has already been finalized")
	}

	if err := s.cache.Set(ctx, draft); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cache draft")
	}
	s.saver.Queue(email, draft.CurrentStep, draft.FormData)
	s.markUnchecked(email)

	s.metrics.IncrementDraftsSaved()
	eventType := audit.EventDraftSaved
	if created {
		eventType = audit.EventDraftCreated
	}
	s.emit(ctx, audit.Event{Type: eventType, Email: email, DraftID: draft.ID})

	copied := *draft
	return &copied, nil
}

// LoadDraft looks up a prior draft by email so the wizard can pre-populate
// fields and resume at the saved step. Lookup never creates a draft. The
// first miss is remembered so repeated lookups for the same email
// short-circuit without hitting the store.
func (s *Service) LoadDraft(ctx context.Context, email string) (*models.Draft, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "email", "email is required")
	}

	if draft, err := s.cache.Get(ctx, email); err == nil {
		return draft, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "draft cache read failed", "error", err.Error())
	}

	if s.isChecked(email) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no draft for this email")
	}

	// The email is remembered as checked only when the lookup completed and
	// confirmed there is nothing to resume. A transient store failure must
	// stay retryable.
	draft, err := s.drafts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.markChecked(email)
			return nil, dErrors.New(dErrors.CodeNotFound, "no draft for this email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up draft")
	}
	if !draft.IsOpen() {
		s.markChecked(email)
		return nil, dErrors.New(dErrors.CodeNotFound, "no draft for this email")
	}

	if err := s.cache.Set(ctx, draft); err != nil {
		s.logger.WarnContext(ctx, "draft cache write failed", "error", err.Error())
	}

	s.metrics.IncrementDraftsResumed()
	s.emit(ctx, audit.Event{Type: audit.EventDraftResumed, Email: email, DraftID: draft.ID})
	return draft, nil
}

// FinalizeRequest carries the full registration payload for the two-phase
// finalize.
type FinalizeRequest struct {
	Email           string
	Data            models.FormData
	Password        string
	PasswordConfirm string
	Documents       []docmodels.Upload
}

// FinalizeResult is the account handle returned on (possibly partial)
// success. PendingDocuments lists uploads that failed in phase 2 and await an
// explicit retry; the account exists regardless.
type FinalizeResult struct {
	Account          *accountmodels.Account `json:"account"`
	Token            string                 `json:"token,omitempty"`
	Documents        []*docmodels.Document  `json:"documents,omitempty"`
	PendingDocuments []models.DocumentType  `json:"pending_documents,omitempty"`
	Warning          string                 `json:"warning,omitempty"`
}

// Finalize converts a draft into a durable account plus verification
// documents.
//
// Phase 1 creates the account; phase 2 uploads the documents. Phase-2
// failures do not roll back phase 1: the account stays in pending_documents
// and the failed uploads are reported for retry. Validation failures are
// caught synchronously before either phase runs.
func (s *Service) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, dErrors.NewField(dErrors.CodeBadRequest, "email", "email is required")
	}
	if err := validateFinalize(req); err != nil {
		return nil, err
	}

	// Fold the submitted snapshot over anything previously autosaved so the
	// account record carries the union of all saved fields.
	data := req.Data
	if draft, err := s.loadExisting(ctx, email); err == nil && draft != nil {
		data = draft.FormData.Merge(req.Data)
	}

	// The draft is about to be consumed; a stale flush must not resurrect it.
	s.saver.Forget(email)

	created, err := s.accounts.Create(ctx, accountservice.CreateParams{
		Email:    email,
		Password: req.Password,
		Data:     data,
	})
	if err != nil {
		return nil, err
	}
	account := created.Account
	s.emit(ctx, audit.Event{Type: audit.EventAccountCreated, Email: email, AccountID: account.ID})

	batch, batchErr := s.documents.StoreBatch(ctx, account.ID, req.Documents)
	if batchErr != nil {
		s.logger.ErrorContext(ctx, "document batch aborted",
			"account_id", account.ID.String(),
			"error", batchErr.Error(),
		)
	}
	for _, doc := range batch.Stored {
		s.emit(ctx, audit.Event{
			Type: audit.EventDocumentStored, Email: email, AccountID: account.ID,
			Metadata: map[string]string{"document_type": string(doc.Type)},
		})
	}

	result := &FinalizeResult{
		Account:          account,
		Token:            created.Token,
		Documents:        batch.Stored,
		PendingDocuments: batch.Pending,
	}

	if len(batch.Pending) == 0 && batchErr == nil {
		if activated, err := s.accounts.Activate(ctx, account.ID); err == nil {
			result.Account = activated
		}
		s.metrics.IncrementFinalized()
	} else {
		result.Warning = "some documents could not be stored; they remain pending and can be resubmitted"
		s.metrics.IncrementFinalizedPartial()
	}

	// Phase 1 succeeded, so the draft is consumed either way.
	s.consumeDraft(ctx, email)
	s.emit(ctx, audit.Event{Type: audit.EventFinalized, Email: email, AccountID: account.ID})

	return result, nil
}

// ClearDraft discards the cached draft state. With purge set, the durable
// draft is deleted as well (explicit abandonment); otherwise the remote copy
// remains until it is finalized or expires.
func (s *Service) ClearDraft(ctx context.Context, email string, purge bool) error {
	email = normalizeEmail(email)
	if email == "" {
		return dErrors.NewField(dErrors.CodeBadRequest, "email", "email is required")
	}
	s.saver.Forget(email)
	if err := s.cache.Clear(ctx, email); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear draft cache")
	}
	if purge {
		if err := s.drafts.Delete(ctx, email); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete draft")
		}
	}
	s.markUnchecked(email)
	s.emit(ctx, audit.Event{Type: audit.EventDraftCleared, Email: email})
	return nil
}

// validateFinalize enforces the synchronous preconditions: password policy
// and the required-document set for the declared profession type. No store or
// network call happens before these pass.
func validateFinalize(req FinalizeRequest) error {
	if len(req.Password) < MinPasswordLength {
		return dErrors.NewField(dErrors.CodeValidation, "password", "password must be at least 8 characters")
	}
	if req.Password != req.PasswordConfirm {
		return dErrors.NewField(dErrors.CodeValidation, "password_confirm", "passwords do not match")
	}
	if !req.Data.ProfessionType.Valid() {
		return dErrors.NewField(dErrors.CodeValidation, "profession_type", "profession type is required")
	}
	for _, upload := range req.Documents {
		if err := docservice.Validate(upload); err != nil {
			return err
		}
	}
	types := make([]models.DocumentType, 0, len(req.Documents))
	for _, upload := range req.Documents {
		types = append(types, upload.Type)
	}
	if missing := models.MissingDocuments(req.Data.ProfessionType, types); len(missing) > 0 {
		return dErrors.NewField(dErrors.CodeValidation, "documents",
			"missing required documents: "+joinDocumentTypes(missing))
	}
	return nil
}

// flushDraft is the autosaver's durable write path. The cached draft is
// authoritative when present; the queued snapshot is the fallback when the
// cache has been evicted between the edit and the flush.
func (s *Service) flushDraft(ctx context.Context, email string, step models.Step, data models.FormData) error {
	start := time.Now()
	draft, err := s.cache.Get(ctx, email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		draft, err = models.NewDraft(id.DraftID(uuid.New()), email, time.Now())
		if err != nil {
			return err
		}
		draft.ApplySave(step, data, time.Now())
	}
	if err := s.drafts.Upsert(ctx, draft); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			// Draft was finalized while this flush was queued; drop it.
			return nil
		}
		return err
	}
	s.metrics.ObserveFlushDuration(time.Since(start).Seconds())
	return nil
}

func (s *Service) onFlushError(email string, err error) {
	s.metrics.IncrementDraftFlushFailures()
	s.logger.Warn("draft flush failed; will retry on next cycle",
		"email", email,
		"error", err.Error(),
	)
}

// loadOrCreate fetches the working draft, falling back to the durable store,
// creating a fresh draft only when neither has one.
func (s *Service) loadOrCreate(ctx context.Context, email string, now time.Time) (*models.Draft, bool, error) {
	if draft, err := s.loadExisting(ctx, email); err != nil {
		return nil, false, err
	} else if draft != nil {
		return draft, false, nil
	}
	draft, err := models.NewDraft(id.DraftID(uuid.New()), email, now)
	if err != nil {
		return nil, false, err
	}
	return draft, true, nil
}

func (s *Service) loadExisting(ctx context.Context, email string) (*models.Draft, error) {
	if draft, err := s.cache.Get(ctx, email); err == nil {
		return draft, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.Warn("draft cache read failed", "error", err.Error())
	}
	draft, err := s.drafts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up draft")
	}
	return draft, nil
}

func (s *Service) consumeDraft(ctx context.Context, email string) {
	if err := s.drafts.MarkFinalized(ctx, email); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to mark draft finalized", "error", err.Error())
	}
	if err := s.cache.Clear(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "failed to clear draft cache", "error", err.Error())
	}
	s.markUnchecked(email)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.emitter == nil {
		return
	}
	if device := requestcontext.Device(ctx); device != "" {
		if event.Metadata == nil {
			event.Metadata = make(map[string]string, 1)
		}
		event.Metadata["device"] = device
	}
	s.emitter.Emit(ctx, event)
}

func (s *Service) isChecked(email string) bool {
	s.checkedMu.Lock()
	defer s.checkedMu.Unlock()
	return s.checked[email]
}

func (s *Service) markChecked(email string) {
	s.checkedMu.Lock()
	defer s.checkedMu.Unlock()
	s.checked[email] = true
}

func (s *Service) markUnchecked(email string) {
	s.checkedMu.Lock()
	defer s.checkedMu.Unlock()
	delete(s.checked, email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func joinDocumentTypes(types []models.DocumentType) string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return strings.Join(out, ", ")
}
