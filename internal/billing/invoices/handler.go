package invoices

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	billingshared "github.com/meridian-erp/meridian/internal/billing/shared"
	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/platform/validate"
	internalShared "github.com/meridian-erp/meridian/internal/shared"
)

// PDFRenderer renders an invoice document.
type PDFRenderer interface {
	Render(inv *Invoice) ([]byte, error)
}

// Handler serves the /v1/invoices resource.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     PDFRenderer
}

func NewHandler(logger *slog.Logger, service *Service, pdf PDFRenderer) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf}
}

// MountRoutes wires the invoice endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/approve", h.Approve)
	r.Get("/{id}/pdf", h.PDF)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope := internalShared.ScopeFromContext(r.Context())
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	journalID, _ := strconv.ParseInt(q.Get("journal_id"), 10, 64)

	items, total, err := h.service.List(r.Context(), ListInvoicesRequest{
		CompanyID: scope.CompanyID,
		JournalID: journalID,
		Status:    q.Get("status"),
		Type:      q.Get("type"),
		Search:    q.Get("search"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.logger.Error("list invoices failed", "error", err)
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
	inv, err := h.service.Get(r.Context(), internalShared.ScopeFromContext(r.Context()), id)
	if err != nil {
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	inv, err := h.service.Create(r.Context(), internalShared.ScopeFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create invoice failed", "error", err)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": inv})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	inv, err := h.service.Update(r.Context(), internalShared.ScopeFromContext(r.Context()), id, req)
	if err != nil {
		h.logger.Error("update invoice failed", "error", err, "id", id)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), internalShared.ScopeFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete invoice failed", "error", err, "id", id)
		billingshared.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Approve(r.Context(), internalShared.ScopeFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("approve invoice failed", "error", err, "id", id)
		billingshared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": inv})
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), internalShared.ScopeFromContext(r.Context()), id)
	if err != nil {
		billingshared.RespondError(w, err)
		return
	}
	doc, err := h.pdf.Render(inv)
	if err != nil {
		h.logger.Error("render invoice pdf failed", "error", err, "id", id)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.Number+".pdf"))
	_, _ = w.Write(doc)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return 0, false
	}
	return id, true
}
