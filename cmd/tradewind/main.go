package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/tradewind-erp/tradewind/internal/app"
	"github.com/tradewind-erp/tradewind/internal/auth"
	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/documents"
	"github.com/tradewind-erp/tradewind/internal/mail"
	"github.com/tradewind-erp/tradewind/internal/orgs"
	"github.com/tradewind-erp/tradewind/internal/platform/cache"
	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/quotes"
	"github.com/tradewind-erp/tradewind/internal/shared"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
	"github.com/tradewind-erp/tradewind/internal/tenancy"
	"github.com/tradewind-erp/tradewind/internal/users"
	"github.com/tradewind-erp/tradewind/jobs"
	"github.com/tradewind-erp/tradewind/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

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

	sessionManager := shared.NewSessionManager(redisClient, "tradewind_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, sessionManager, logger, cfg.AuthTokenSecret, cfg.BaseURL, mailer)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	tenancyService := tenancy.NewService(tenancy.NewRepository(pool))
	gate := tenancy.Middleware{Service: tenancyService, Logger: logger}

	orgsService := orgs.NewService(orgs.NewRepository(pool))
	orgsHandler := orgs.NewHandler(logger, orgsService)

	usersService := users.NewService(users.NewRepository(pool), authService)
	usersHandler := users.NewHandler(logger, usersService)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService, gate)

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	quotesService := quotes.NewService(quotes.NewRepository(pool), customersRepo, catalogService)
	quotesHandler := quotes.NewHandler(logger, quotesService)

	ordersService := purchaseorders.NewService(purchaseorders.NewRepository(pool), suppliersRepo, catalogService)
	ordersHandler := purchaseorders.NewHandler(logger, ordersService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	documentsService := documents.NewService(quotesService, ordersService, customersService, suppliersService, orgsService, reportClient, mailer, cfg.Currency)

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	documentsHandler := documents.NewHandler(logger, documentsService, jobClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Gate:                 gate,
		AuthHandler:          authHandler,
		OrgsHandler:          orgsHandler,
		UsersHandler:         usersHandler,
		CatalogHandler:       catalogHandler,
		CustomersHandler:     customersHandler,
		SuppliersHandler:     suppliersHandler,
		QuotesHandler:        quotesHandler,
		PurchaseOrderHandler: ordersHandler,
		DocumentsHandler:     documentsHandler,
		JobHandler:           jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
