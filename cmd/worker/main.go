package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tradewind-erp/tradewind/internal/app"
	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/customers"
	"github.com/tradewind-erp/tradewind/internal/documents"
	"github.com/tradewind-erp/tradewind/internal/mail"
	"github.com/tradewind-erp/tradewind/internal/orgs"
	"github.com/tradewind-erp/tradewind/internal/platform/db"
	"github.com/tradewind-erp/tradewind/internal/purchaseorders"
	"github.com/tradewind-erp/tradewind/internal/quotes"
	"github.com/tradewind-erp/tradewind/internal/suppliers"
	"github.com/tradewind-erp/tradewind/jobs"
	"github.com/tradewind-erp/tradewind/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})

	customersRepo := customers.NewRepository(pool)
	suppliersRepo := suppliers.NewRepository(pool)
	catalogService := catalog.NewService(catalog.NewRepository(pool))

	quotesService := quotes.NewService(quotes.NewRepository(pool), customersRepo, catalogService)
	ordersService := purchaseorders.NewService(purchaseorders.NewRepository(pool), suppliersRepo, catalogService)
	orgsService := orgs.NewService(orgs.NewRepository(pool))

	reportClient := report.NewClient(cfg.GotenbergURL)
	documentsService := documents.NewService(
		quotesService,
		ordersService,
		customers.NewService(customersRepo),
		suppliers.NewService(suppliersRepo),
		orgsService,
		reportClient,
		mailer,
		cfg.Currency,
	)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:    asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:       logger,
		EmailHandler: jobs.NewEmailDocumentHandler(documentsService, logger),
	})

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
