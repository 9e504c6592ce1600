package hr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/platform/validate"
	"github.com/meridian-erp/meridian/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.ListDepartments)
		r.Post("/", h.CreateDepartment)
		r.Get("/{id}", h.GetDepartment)
		r.Put("/{id}", h.UpdateDepartment)
		r.Delete("/{id}", h.DeleteDepartment)
	})
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.ListEmployees)
		r.Post("/", h.CreateEmployee)
		r.Get("/{id}", h.GetEmployee)
		r.Put("/{id}", h.UpdateEmployee)
		r.Delete("/{id}", h.DeleteEmployee)
		r.Get("/{id}/attendance", h.ListAttendance)
	})
	r.Route("/leaves", func(r chi.Router) {
		r.Get("/", h.ListLeaves)
		r.Post("/", h.RequestLeave)
		r.Get("/{id}", h.GetLeave)
		r.Put("/{id}", h.UpdateLeave)
		r.Delete("/{id}", h.DeleteLeave)
		r.Post("/{id}/approve", h.ApproveLeave)
		r.Post("/{id}/reject", h.RejectLeave)
	})
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/check-in", h.CheckIn)
		r.Post("/check-out", h.CheckOut)
	})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req CreateDepartmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	id, err := h.service.CreateDepartment(r.Context(), shared.ScopeFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create department failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": map[string]int64{"id": id}})
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListDepartments(r.Context(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	d, err := h.service.GetDepartment(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": d})
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateDepartmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	d, err := h.service.UpdateDepartment(r.Context(), shared.ScopeFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": d})
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteDepartment(r.Context(), shared.ScopeFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	e, err := h.service.CreateEmployee(r.Context(), shared.ScopeFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrEmployeeCodeTaken) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "employee code already in use")
			return
		}
		h.logger.Error("create employee failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": e})
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	e, err := h.service.GetEmployee(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": e})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	items, total, err := h.service.ListEmployees(r.Context(), shared.ScopeFromContext(r.Context()),
		q.Get("search"), page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": items,
		"meta": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	e, err := h.service.UpdateEmployee(r.Context(), shared.ScopeFromContext(r.Context()), id, req)
	if err != nil {
		if errors.Is(err, ErrEmployeeCodeTaken) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "employee code already in use")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": e})
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEmployee(r.Context(), shared.ScopeFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req CreateLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	l, err := h.service.RequestLeave(r.Context(), shared.ScopeFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("request leave failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": l})
}

func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	l, err := h.service.GetLeave(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": l})
}

func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	var status *LeaveStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := LeaveStatus(v)
		status = &st
	}
	items, err := h.service.ListLeaves(r.Context(), shared.ScopeFromContext(r.Context()), status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateLeaveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	l, err := h.service.UpdateLeave(r.Context(), shared.ScopeFromContext(r.Context()), id, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "leave request already decided")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": l})
}

func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLeave(r.Context(), shared.ScopeFromContext(r.Context()), id); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "leave request already decided")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decideLeave(w, r, h.service.ApproveLeave)
}

func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decideLeave(w, r, h.service.RejectLeave)
}

func (h *Handler) decideLeave(w http.ResponseWriter, r *http.Request,
	decide func(ctx context.Context, scope shared.Scope, id int64) (*LeaveRequest, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	l, err := decide(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "leave request already decided")
			return
		}
		h.logger.Error("decide leave failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": l})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	id, err := h.service.CheckIn(r.Context(), shared.ScopeFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "already checked in today")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": map[string]int64{"id": id}})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	if err := h.service.CheckOut(r.Context(), shared.ScopeFromContext(r.Context()), req.EmployeeID); err != nil {
		if errors.Is(err, ErrNotCheckedIn) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "no open check-in today")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be YYYY-MM-DD")
		return
	}
	items, err := h.service.ListAttendance(r.Context(), shared.ScopeFromContext(r.Context()), id, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
