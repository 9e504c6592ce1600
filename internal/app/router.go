package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian/internal/accounting/accounts"
	"github.com/meridian-erp/meridian/internal/accounting/fiscalyears"
	"github.com/meridian-erp/meridian/internal/auth"
	"github.com/meridian-erp/meridian/internal/billing/invoices"
	"github.com/meridian-erp/meridian/internal/billing/journals"
	"github.com/meridian-erp/meridian/internal/billing/payments"
	"github.com/meridian-erp/meridian/internal/billing/taxlines"
	"github.com/meridian-erp/meridian/internal/hr"
	"github.com/meridian-erp/meridian/internal/masterdata/branches"
	"github.com/meridian-erp/meridian/internal/masterdata/companies"
	"github.com/meridian-erp/meridian/internal/masterdata/currencies"
	"github.com/meridian-erp/meridian/internal/masterdata/geo"
	"github.com/meridian-erp/meridian/internal/masterdata/taxes"
	"github.com/meridian-erp/meridian/internal/masterdata/units"
	"github.com/meridian-erp/meridian/internal/observability"
	"github.com/meridian-erp/meridian/internal/partners"
	"github.com/meridian-erp/meridian/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Tokens *auth.TokenManager
	RBAC   *rbac.Service

	AuthHandler       *auth.Handler
	CompaniesHandler  *companies.Handler
	BranchesHandler   *branches.Handler
	CurrenciesHandler *currencies.Handler
	GeoHandler        *geo.Handler
	TaxesHandler      *taxes.Handler
	UnitsHandler      *units.Handler
	CustomersHandler  *partners.Handler
	SuppliersHandler  *partners.Handler
	JournalsHandler   *journals.Handler
	InvoicesHandler   *invoices.Handler
	PaymentsHandler   *payments.Handler
	TaxLinesHandler   *taxlines.Handler
	AccountsHandler   *accounts.Handler
	FiscalYearHandler *fiscalyears.Handler
	RolesHandler      *rbac.Handler
	HRHandler         *hr.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the API server.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(params.Tokens))

			r.Route("/companies", params.CompaniesHandler.MountRoutes)
			r.Route("/branches", params.BranchesHandler.MountRoutes)
			r.Route("/currencies", params.CurrenciesHandler.MountRoutes)
			r.Route("/taxes", params.TaxesHandler.MountRoutes)
			r.Route("/units", params.UnitsHandler.MountRoutes)
			params.GeoHandler.MountRoutes(r)

			r.Route("/customers", params.CustomersHandler.MountRoutes)
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)

			r.Route("/journals", params.JournalsHandler.MountRoutes)
			r.Route("/invoices", params.InvoicesHandler.MountRoutes)
			r.Route("/invoice-payments", params.PaymentsHandler.MountRoutes)
			r.Route("/invoice-taxes", params.TaxLinesHandler.MountRoutes)

			r.Route("/accounts", params.AccountsHandler.MountRoutes)
			r.Route("/fiscal-years", params.FiscalYearHandler.MountRoutes)

			params.HRHandler.MountRoutes(r)

			r.Route("/roles", func(r chi.Router) {
				r.Use(rbac.Require(params.RBAC, "rbac.manage"))
				params.RolesHandler.MountRoutes(r)
			})
		})
	})

	return r
}
