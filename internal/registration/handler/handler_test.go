package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	accountmodels "prospace/internal/account/models"
	docmodels "prospace/internal/document/models"
	"prospace/internal/jwttoken"
	"prospace/internal/registration/models"
	regservice "prospace/internal/registration/service"
	"prospace/internal/transport/http/shared"
	id "prospace/pkg/domain"
	dErrors "prospace/pkg/domain-errors"
)

// =============================================================================
// Registration Handler Test Suite
// =============================================================================

type fakeDraftService struct {
	drafts        map[string]*models.Draft
	finalizeCalls int
	finalizeErr   error
	saveErr       error
}

func newFakeDraftService() *fakeDraftService {
	return &fakeDraftService{drafts: make(map[string]*models.Draft)}
}

func (f *fakeDraftService) SaveDraft(_ context.Context, email string, step models.Step, data models.FormData) (*models.Draft, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	draft, ok := f.drafts[email]
	if !ok {
		created, err := models.NewDraft(id.DraftID(uuid.New()), email, time.Now())
		if err != nil {
			return nil, err
		}
		draft = created
	}
	if err := draft.Save(step, data, time.Now()); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "registration has already been finalized")
	}
	f.drafts[email] = draft
	return draft, nil
}

func (f *fakeDraftService) LoadDraft(_ context.Context, email string) (*models.Draft, error) {
	draft, ok := f.drafts[email]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "no draft for this email")
	}
	return draft, nil
}

func (f *fakeDraftService) Finalize(_ context.Context, req regservice.FinalizeRequest) (*regservice.FinalizeResult, error) {
	f.finalizeCalls++
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	account, err := accountmodels.NewAccount(
		id.AccountID(uuid.New()), req.Data, req.Email, "hashed", time.Now())
	if err != nil {
		return nil, err
	}
	return &regservice.FinalizeResult{Account: account, Token: "token-abc"}, nil
}

func (f *fakeDraftService) ClearDraft(_ context.Context, email string, _ bool) error {
	delete(f.drafts, email)
	return nil
}

func (f *fakeDraftService) IsSaving() bool       { return false }
func (f *fakeDraftService) LastSaved() time.Time { return time.Time{} }

type fakeDocuments struct {
	storeCalls int
}

func (f *fakeDocuments) Store(_ context.Context, accountID id.AccountID, upload docmodels.Upload) (*docmodels.Document, error) {
	f.storeCalls++
	return &docmodels.Document{
		ID:        id.DocumentID(uuid.New()),
		AccountID: accountID,
		Type:      upload.Type,
		Status:    docmodels.StatusStored,
	}, nil
}

type fakeTokens struct {
	claims *jwttoken.Claims
}

func (f *fakeTokens) ValidateToken(token string) (*jwttoken.Claims, error) {
	if token != "valid-token" || f.claims == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return f.claims, nil
}

type HandlerSuite struct {
	suite.Suite
	drafts    *fakeDraftService
	documents *fakeDocuments
	tokens    *fakeTokens
	router    chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.drafts = newFakeDraftService()
	s.documents = &fakeDocuments{}
	s.tokens = &fakeTokens{claims: &jwttoken.Claims{AccountID: uuid.NewString()}}

	h := New(s.drafts, s.documents, s.tokens,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decodeError(rec *httptest.ResponseRecorder) shared.ErrorResponse {
	var resp shared.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// =============================================================================
// Save Draft Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestSaveDraft() {
	s.Run("valid save returns the merged draft", func() {
		rec := s.do(http.MethodPost, "/registration/draft", SaveDraftRequest{
			Email:    "a@b.com",
			Step:     1,
			FormData: models.FormData{FirstName: "Yasmine"},
		})
		s.Equal(http.StatusOK, rec.Code)

		var resp SaveDraftResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("Yasmine", resp.Draft.FormData.FirstName)
		s.Contains(resp.MissingForStep, "last_name")
	})

	s.Run("documents held by the client shrink the step-3 missing list", func() {
		rec := s.do(http.MethodPost, "/registration/draft", SaveDraftRequest{
			Email:     "docs@b.com",
			Step:      3,
			FormData:  models.FormData{ProfessionType: models.ProfessionNonRegulated},
			Documents: []models.DocumentType{models.DocumentBusinessRegistry},
		})
		s.Equal(http.StatusOK, rec.Code)

		var resp SaveDraftResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal([]string{string(models.DocumentInsurance)}, resp.MissingForStep)
	})

	s.Run("step-3 save without documents lists the full required set", func() {
		rec := s.do(http.MethodPost, "/registration/draft", SaveDraftRequest{
			Email:    "nodocs@b.com",
			Step:     3,
			FormData: models.FormData{ProfessionType: models.ProfessionNonRegulated},
		})
		s.Equal(http.StatusOK, rec.Code)

		var resp SaveDraftResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.ElementsMatch([]string{
			string(models.DocumentBusinessRegistry),
			string(models.DocumentInsurance),
		}, resp.MissingForStep)
	})

	s.Run("malformed body is a 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/registration/draft",
			bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("invalid email is a 400 with the field named", func() {
		rec := s.do(http.MethodPost, "/registration/draft", SaveDraftRequest{
			Email: "not-an-email", Step: 1,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("email", s.decodeError(rec).Field)
	})

	s.Run("out-of-range step is a 400", func() {
		rec := s.do(http.MethodPost, "/registration/draft", SaveDraftRequest{
			Email: "a@b.com", Step: 7,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("step", s.decodeError(rec).Field)
	})
}

// =============================================================================
// Load Draft Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestLoadDraft() {
	s.Run("existing draft is returned with its step", func() {
		_, err := s.drafts.SaveDraft(context.Background(), "a@b.com",
			models.Step3Documents, models.FormData{FirstName: "Yasmine"})
		s.Require().NoError(err)

		rec := s.do(http.MethodGet, "/registration/draft?email=a@b.com", nil)
		s.Equal(http.StatusOK, rec.Code)

		var resp LoadDraftResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(models.Step3Documents, resp.Draft.CurrentStep)
		s.Empty(resp.SuggestedFirstName)
	})

	s.Run("draft without a name gets prefill suggestions from the email", func() {
		_, err := s.drafts.SaveDraft(context.Background(), "yasmine.mansouri@b.com",
			models.Step1Info, models.FormData{})
		s.Require().NoError(err)

		rec := s.do(http.MethodGet, "/registration/draft?email=yasmine.mansouri@b.com", nil)
		s.Equal(http.StatusOK, rec.Code)

		var resp LoadDraftResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("Yasmine", resp.SuggestedFirstName)
		s.Equal("Mansouri", resp.SuggestedLastName)
	})

	s.Run("missing draft is a 404", func() {
		rec := s.do(http.MethodGet, "/registration/draft?email=nobody@b.com", nil)
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal(string(dErrors.CodeNotFound), s.decodeError(rec).Error)
	})

	s.Run("missing email query is a 400", func() {
		rec := s.do(http.MethodGet, "/registration/draft", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

// =============================================================================
// Clear Draft Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestClearDraft() {
	s.Run("clear returns no content and drops the draft", func() {
		_, err := s.drafts.SaveDraft(context.Background(), "a@b.com",
			models.Step1Info, models.FormData{})
		s.Require().NoError(err)

		rec := s.do(http.MethodDelete, "/registration/draft?email=a@b.com", nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/registration/draft?email=a@b.com", nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

// =============================================================================
// Finalize Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestFinalize() {
	s.Run("successful finalize returns 201 with account and token", func() {
		rec := s.do(http.MethodPost, "/registration/finalize", FinalizeRequest{
			Email:           "a@b.com",
			Password:        "correct-horse",
			PasswordConfirm: "correct-horse",
			FormData:        models.FormData{FirstName: "Yasmine"},
		})
		s.Equal(http.StatusCreated, rec.Code)

		var result regservice.FinalizeResult
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
		s.Equal("token-abc", result.Token)
		s.NotNil(result.Account)
	})

	s.Run("missing password is a 422 and never reaches the service", func() {
		before := s.drafts.finalizeCalls
		rec := s.do(http.MethodPost, "/registration/finalize", FinalizeRequest{
			Email: "a@b.com",
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal("password", s.decodeError(rec).Field)
		s.Equal(before, s.drafts.finalizeCalls)
	})

	s.Run("validation errors from the service keep their field", func() {
		s.drafts.finalizeErr = dErrors.NewField(dErrors.CodeValidation,
			"password", "password must be at least 8 characters")
		defer func() { s.drafts.finalizeErr = nil }()

		rec := s.do(http.MethodPost, "/registration/finalize", FinalizeRequest{
			Email:           "a@b.com",
			Password:        "short",
			PasswordConfirm: "short",
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		resp := s.decodeError(rec)
		s.Equal("password", resp.Field)
		s.Equal(string(dErrors.CodeValidation), resp.Error)
	})
}

// =============================================================================
// Document Upload Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestUploadDocument() {
	s.Run("authenticated upload stores the document", func() {
		body, err := json.Marshal(UploadDocumentRequest{
			Document: docmodels.Upload{
				Type:        models.DocumentCharter,
				Filename:    "charter.pdf",
				ContentType: "application/pdf",
				Content:     []byte("%PDF-"),
			},
		})
		s.Require().NoError(err)

		req := httptest.NewRequest(http.MethodPost, "/registration/documents", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusCreated, rec.Code)
		s.Equal(1, s.documents.storeCalls)
	})

	s.Run("missing bearer token is a 401", func() {
		rec := s.do(http.MethodPost, "/registration/documents", UploadDocumentRequest{})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

// =============================================================================
// Photo Upload Endpoint Tests
// =============================================================================

func (s *HandlerSuite) TestUploadPhoto() {
	s.Run("photo upload returns a served URL and merges it into the draft", func() {
		_, err := s.drafts.SaveDraft(context.Background(), "a@b.com",
			models.Step1Info, models.FormData{})
		s.Require().NoError(err)

		rec := s.do(http.MethodPost, "/registration/photo", UploadPhotoRequest{
			Email:       "a@b.com",
			Filename:    "me.png",
			ContentType: "image/png",
			Content:     []byte{0x89, 0x50, 0x4E, 0x47},
		})
		s.Equal(http.StatusCreated, rec.Code)

		var resp UploadPhotoResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Contains(resp.PhotoURL, "/media/photos/")
		s.Contains(resp.PhotoURL, ".png")
		s.Equal(resp.PhotoURL, s.drafts.drafts["a@b.com"].FormData.PhotoURL)
	})

	s.Run("unsupported content type is a 422", func() {
		rec := s.do(http.MethodPost, "/registration/photo", UploadPhotoRequest{
			Filename:    "me.gif",
			ContentType: "image/gif",
			Content:     []byte{1},
		})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})
}
