package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prospace/internal/taxonomy/models"
	"prospace/internal/transport/http/shared"
	dErrors "prospace/pkg/domain-errors"
)

// Service is the taxonomy read API consumed by this handler.
type Service interface {
	List(ctx context.Context) ([]*models.Category, error)
	Get(ctx context.Context, slug string) (*models.Category, error)
}

// Handler serves the category taxonomy behind the step-2 selectors.
type Handler struct {
	taxonomy Service
	logger   *slog.Logger
}

func New(taxonomy Service, logger *slog.Logger) *Handler {
	return &Handler{taxonomy: taxonomy, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/taxonomy/categories", h.handleList)
	r.Get("/taxonomy/categories/{slug}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomy.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list categories failed", "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	category, err := h.taxonomy.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if !dErrors.Is(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(r.Context(), "get category failed", "error", err.Error())
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, category)
}
