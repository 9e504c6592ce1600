package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/meridian-erp/meridian/internal/accounting/accounts"
	"github.com/meridian-erp/meridian/internal/accounting/fiscalyears"
	"github.com/meridian-erp/meridian/internal/app"
	"github.com/meridian-erp/meridian/internal/auth"
	"github.com/meridian-erp/meridian/internal/billing/export"
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
	"github.com/meridian-erp/meridian/internal/platform/cache"
	"github.com/meridian-erp/meridian/internal/platform/db"
	"github.com/meridian-erp/meridian/internal/rbac"
	"github.com/meridian-erp/meridian/internal/shared"
	"github.com/meridian-erp/meridian/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, redisClient)
	otpStore := auth.NewOTPStore(redisClient)

	authService := auth.NewService(logger, auth.NewRepository(pool), tokens, otpStore, jobClient)
	authHandler := auth.NewHandler(logger, authService, tokens)

	rbacService := rbac.NewService(rbac.NewRepository(pool), redisClient)
	rolesHandler := rbac.NewHandler(logger, rbacService)

	companiesHandler := companies.NewHandler(logger, companies.NewService(companies.NewRepository(pool), auditLogger))
	branchesHandler := branches.NewHandler(logger, branches.NewService(branches.NewRepository(pool), auditLogger))
	currenciesHandler := currencies.NewHandler(logger, currencies.NewService(currencies.NewRepository(pool), redisClient, auditLogger))
	geoHandler := geo.NewHandler(logger, geo.NewRepository(pool))
	taxesHandler := taxes.NewHandler(logger, taxes.NewService(taxes.NewRepository(pool), auditLogger))
	unitsHandler := units.NewHandler(logger, units.NewRepository(pool))

	partnersRepo := partners.NewRepository(pool)
	customersHandler := partners.NewHandler(logger, partners.NewService(partners.KindCustomer, partnersRepo, auditLogger))
	suppliersHandler := partners.NewHandler(logger, partners.NewService(partners.KindSupplier, partnersRepo, auditLogger))

	journalsHandler := journals.NewHandler(logger, journals.NewService(journals.NewRepository(pool), auditLogger))
	invoiceService := invoices.NewService(invoices.NewRepository(pool), auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoiceService, export.NewPDF(cfg.CompanyDisplayName))
	paymentsHandler := payments.NewHandler(logger, payments.NewService(payments.NewRepository(pool), auditLogger))
	taxLinesHandler := taxlines.NewHandler(logger, taxlines.NewService(taxlines.NewRepository(pool), auditLogger))

	accountsHandler := accounts.NewHandler(logger, accounts.NewService(accounts.NewRepository(pool), auditLogger))
	fiscalYearHandler := fiscalyears.NewHandler(logger, fiscalyears.NewService(fiscalyears.NewRepository(pool), auditLogger))

	hrHandler := hr.NewHandler(logger, hr.NewService(hr.NewRepository(pool), auditLogger))

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		Tokens: tokens,
		RBAC:   rbacService,

		AuthHandler:       authHandler,
		CompaniesHandler:  companiesHandler,
		BranchesHandler:   branchesHandler,
		CurrenciesHandler: currenciesHandler,
		GeoHandler:        geoHandler,
		TaxesHandler:      taxesHandler,
		UnitsHandler:      unitsHandler,
		CustomersHandler:  customersHandler,
		SuppliersHandler:  suppliersHandler,
		JournalsHandler:   journalsHandler,
		InvoicesHandler:   invoicesHandler,
		PaymentsHandler:   paymentsHandler,
		TaxLinesHandler:   taxLinesHandler,
		AccountsHandler:   accountsHandler,
		FiscalYearHandler: fiscalYearHandler,
		RolesHandler:      rolesHandler,
		HRHandler:         hrHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
