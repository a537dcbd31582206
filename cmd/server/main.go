package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/config"
	"github.com/mamadbah2/breakeven/internal/repository/memory"
	"github.com/mamadbah2/breakeven/internal/repository/mongodb"
	"github.com/mamadbah2/breakeven/internal/repository/sheets"
	"github.com/mamadbah2/breakeven/internal/scheduler"
	"github.com/mamadbah2/breakeven/internal/server/handlers"
	"github.com/mamadbah2/breakeven/internal/server/router"
	bepsvc "github.com/mamadbah2/breakeven/internal/service/bep"
	commandsvc "github.com/mamadbah2/breakeven/internal/service/commands"
	reportingsvc "github.com/mamadbah2/breakeven/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/breakeven/internal/service/whatsapp"
	"github.com/mamadbah2/breakeven/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/breakeven/pkg/clients/whatsapp"
	"github.com/mamadbah2/breakeven/pkg/logger"
)

type store interface {
	bepsvc.ConfigStore
	reportingsvc.SnapshotStore
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx := context.Background()

	var configStore store
	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		configStore = mongoRepo
	default:
		baseLogger.Warn("using in-memory store, configuration is lost on restart")
		configStore = memory.NewStore()
	}

	var (
		sheetsRepo sheets.Repository
		staff      bepsvc.EmployeeSource = memory.Roster{}
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		staff = sheets.NewStaffRoster(sheetsRepo, cfg.Sheets.StaffRange, baseLogger.Named("repo.staff"))
	} else {
		baseLogger.Warn("google sheets not configured, staff roster is empty")
	}

	bepService := bepsvc.NewService(configStore, staff, baseLogger.Named("svc.bep"))
	reportingService := reportingsvc.NewService(bepService, configStore, sheetsRepo, cfg.Sheets.ReportRange, baseLogger.Named("svc.reporting"))

	var (
		webhookHandler *handlers.WebhookHandler
		sender         scheduler.Sender
	)
	if cfg.WhatsApp.Enabled() {
		var translator whatsappsvc.Translator
		if cfg.AI.AnthropicKey != "" {
			translator = anthropic.NewClient(cfg.AI.AnthropicKey)
			baseLogger.Info("anthropic ai client enabled")
		} else {
			baseLogger.Warn("anthropic api key missing, free text translation disabled")
		}

		dispatcher := commandsvc.NewService(bepService, cfg.Reporting.DefaultRestaurantID, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, translator, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		sender = messagingSvc
	} else {
		baseLogger.Warn("whatsapp token missing, bot disabled")
	}

	apiHandler := handlers.NewBepHandler(bepService, baseLogger.Named("handlers.bep"))
	engine := router.New(apiHandler, webhookHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, cfg.WhatsApp.ManagerID, reportingService, sender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
