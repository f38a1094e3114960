package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/config"
	"github.com/mamadbah2/household/internal/repository"
	"github.com/mamadbah2/household/internal/repository/memory"
	"github.com/mamadbah2/household/internal/repository/mongodb"
	"github.com/mamadbah2/household/internal/repository/sheets"
	"github.com/mamadbah2/household/internal/scheduler"
	"github.com/mamadbah2/household/internal/server/handlers"
	"github.com/mamadbah2/household/internal/server/router"
	commandsvc "github.com/mamadbah2/household/internal/service/commands"
	"github.com/mamadbah2/household/internal/service/dashboard"
	reminderssvc "github.com/mamadbah2/household/internal/service/reminders"
	reportingsvc "github.com/mamadbah2/household/internal/service/reporting"
	statementsvc "github.com/mamadbah2/household/internal/service/statement"
	whatsappsvc "github.com/mamadbah2/household/internal/service/whatsapp"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
	"github.com/mamadbah2/household/pkg/clients/imagekit"
	whatsappclient "github.com/mamadbah2/household/pkg/clients/whatsapp"
	"github.com/mamadbah2/household/pkg/logger"
)

const startupTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	store, closeStore := openStore(startupCtx, cfg, baseLogger)
	defer closeStore()

	loc := cfg.Location()
	controller := dashboard.NewController(store, loc, baseLogger.Named("svc.dashboard"))
	if err := controller.Load(startupCtx); err != nil {
		// The dashboard keeps serving with empty records and default rates.
		baseLogger.Error("initial load failed", zap.Error(err))
	}

	var aiClient anthropic.Client
	if cfg.AI.Enabled() {
		var opts []anthropic.Option
		if cfg.AI.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.AI.Model))
		}
		if cfg.AI.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.AI.BaseURL))
		}
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey, opts...)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, reorder reminders disabled")
	}

	var sheetsAppender statementsvc.Appender
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsAppender = sheetsRepo
	} else {
		baseLogger.Info("google sheets not configured, statement export disabled")
	}

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
	} else {
		baseLogger.Warn("whatsapp credentials missing, outbound messages disabled")
	}

	reportingSvc := reportingsvc.NewService(controller, baseLogger.Named("svc.reporting"))
	remindersSvc := reminderssvc.NewService(aiClient, controller, baseLogger.Named("svc.reminders"))
	statementSvc := statementsvc.NewService(controller, sheetsAppender, baseLogger.Named("svc.statement"))
	commandDispatcher := commandsvc.NewService(controller, reportingSvc, baseLogger.Named("svc.commands"))
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
	signer := imagekit.NewSigner(cfg.ImageKit.PublicKey, cfg.ImageKit.PrivateKey, cfg.ImageKit.URLEndpoint, cfg.ImageKit.TokenTTL)

	engine, err := router.New(router.Handlers{
		Ledger:  handlers.NewLedgerHandler(controller, baseLogger.Named("handlers.ledger")),
		Tools:   handlers.NewToolsHandler(remindersSvc, signer, statementSvc, controller, baseLogger.Named("handlers.tools")),
		Webhook: handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
	}, baseLogger.Named("router"))
	if err != nil {
		baseLogger.Fatal("failed to build router", zap.Error(err))
	}

	var notifier whatsappsvc.MessagingService
	if cfg.WhatsApp.Enabled() {
		notifier = messagingSvc
	}
	sched := scheduler.NewScheduler(*cfg, loc, reportingSvc, remindersSvc, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects the configured backend and returns it with its cleanup.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, func()) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Warn("using in-memory store, records are lost on restart")
		return memory.NewStore(), func() {}
	}

	mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log.Named("repo.mongodb"))
	if err != nil {
		log.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure mongodb indexes", zap.Error(err))
	}

	return mongoRepo, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoRepo.Close(closeCtx); err != nil {
			log.Error("failed to close mongodb connection", zap.Error(err))
		}
	}
}
