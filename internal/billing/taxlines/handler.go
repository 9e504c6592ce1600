package taxlines

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	billingshared "github.com/meridian-erp/meridian/internal/billing/shared"
	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/platform/validate"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

// Handler serves the /v1/invoice-taxes resource.
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
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope := internalShared.ScopeFromContext(r.Context())
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	invoiceID, _ := strconv.ParseInt(q.Get("invoice_id"), 10, 64)

	items, total, err := h.service.List(r.Context(), ListTaxLinesRequest{
		CompanyID: scope.CompanyID,
		InvoiceID: invoiceID,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.logger.Error("list tax lines failed", "error", err)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"meta": internalShared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	line, err := h.service.Get(r.Context(), internalShared.ScopeFromContext(r.Context()), id)
	if err != nil {
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": line})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaxLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	line, err := h.service.Create(r.Context(), internalShared.ScopeFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create tax line failed", "error", err, "invoice_id", req.InvoiceID)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": line})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateTaxLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	line, err := h.service.Update(r.Context(), internalShared.ScopeFromContext(r.Context()), id, req)
	if err != nil {
		h.logger.Error("update tax line failed", "error", err, "id", id)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": line})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), internalShared.ScopeFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete tax line failed", "error", err, "id", id)
		billingshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tax line id")
		return 0, false
	}
	return id, true
}
