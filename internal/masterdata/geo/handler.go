package geo

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/platform/httpx"
	"github.com/meridian-erp/meridian/internal/platform/validate"
)

// Handler serves the geography reference endpoints. The data is global and
// read-mostly, so the handler sits directly on the repository.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/countries", func(r chi.Router) {
		r.Get("/", h.ListCountries)
		r.Post("/", h.CreateCountry)
		r.Get("/{id}", h.GetCountry)
		r.Put("/{id}", h.RenameCountry)
		r.Delete("/{id}", h.DeleteCountry)
		r.Get("/{id}/regions", h.ListRegions)
	})
	r.Route("/regions", func(r chi.Router) {
		r.Post("/", h.CreateRegion)
		r.Get("/{id}", h.GetRegion)
		r.Put("/{id}", h.RenameRegion)
		r.Delete("/{id}", h.DeleteRegion)
		r.Get("/{id}/cities", h.ListCities)
	})
	r.Route("/cities", func(r chi.Router) {
		r.Post("/", h.CreateCity)
		r.Get("/{id}", h.GetCity)
		r.Put("/{id}", h.RenameCity)
		r.Delete("/{id}", h.DeleteCity)
	})
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCountries(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list countries failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var req CreateCountryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	id, err := h.repo.CreateCountry(r.Context(), Country{Code: strings.ToUpper(req.Code), Name: req.Name})
	if err != nil {
		if errors.Is(err, ErrCodeTaken) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "country code already in use")
			return
		}
		h.logger.Error("create country failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	c, err := h.repo.GetCountry(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	c, err := h.repo.GetCountry(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteCountry(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	items, err := h.repo.ListRegions(r.Context(), id)
	if err != nil {
		h.logger.Error("list regions failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	var req CreateRegionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	if _, err := h.repo.GetCountry(r.Context(), req.CountryID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.repo.CreateRegion(r.Context(), Region{CountryID: req.CountryID, Name: req.Name})
	if err != nil {
		h.logger.Error("create region failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	reg, err := h.repo.GetRegion(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": reg})
}

func (h *Handler) GetRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	reg, err := h.repo.GetRegion(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": reg})
}

func (h *Handler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteRegion(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	items, err := h.repo.ListCities(r.Context(), id)
	if err != nil {
		h.logger.Error("list cities failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req CreateCityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	if _, err := h.repo.GetRegion(r.Context(), req.RegionID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.repo.CreateCity(r.Context(), City{RegionID: req.RegionID, Name: req.Name})
	if err != nil {
		h.logger.Error("create city failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	c, err := h.repo.GetCity(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	c, err := h.repo.GetCity(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteCity(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RenameCountry(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, h.repo.RenameCountry, func(ctx context.Context, id int64) (any, error) {
		return h.repo.GetCountry(ctx, id)
	})
}

func (h *Handler) RenameRegion(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, h.repo.RenameRegion, func(ctx context.Context, id int64) (any, error) {
		return h.repo.GetRegion(ctx, id)
	})
}

func (h *Handler) RenameCity(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, h.repo.RenameCity, func(ctx context.Context, id int64) (any, error) {
		return h.repo.GetCity(ctx, id)
	})
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request,
	rename func(ctx context.Context, id int64, name string) error,
	get func(ctx context.Context, id int64) (any, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req RenameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if fields, err := validate.Struct(req); err != nil {
		httpx.ProblemFields(w, http.StatusUnprocessableEntity, "Validation Failed", fields)
		return
	}
	if err := rename(r.Context(), id, req.Name); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": item})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
