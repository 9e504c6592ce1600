package fiscalyears

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/platform/validate"
	"github.com/meridian-erp/meridian/internal/shared"
)

// Handler serves the /v1/fiscal-years resource.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/close", h.Close)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list fiscal years failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	fy, err := h.service.Get(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": fy})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFiscalYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	fy, err := h.service.Create(r.Context(), shared.ScopeFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrOverlap) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "fiscal year overlaps an existing one")
			return
		}
		h.logger.Error("create fiscal year failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": fy})
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	fy, err := h.service.Close(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrAlreadyClosed) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "fiscal year already closed")
			return
		}
		h.logger.Error("close fiscal year failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": fy})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid fiscal year id")
		return 0, false
	}
	return id, true
}
