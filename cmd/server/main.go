package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/repository/credstore"
	"github.com/mamadbah2/stockscan/internal/repository/sqlite"
	"github.com/mamadbah2/stockscan/internal/scheduler"
	"github.com/mamadbah2/stockscan/internal/server/handlers"
	"github.com/mamadbah2/stockscan/internal/server/router"
	metricssvc "github.com/mamadbah2/stockscan/internal/service/metrics"
	scannersvc "github.com/mamadbah2/stockscan/internal/service/scanner"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
	"github.com/mamadbah2/stockscan/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	creds, err := credstore.New(cfg.Storage.CredentialPath, cfg.Storage.Passphrase)
	if err != nil {
		baseLogger.Fatal("failed to init credential store", zap.Error(err))
	}

	store, err := sqlite.Open(context.Background(), cfg.Storage.DatabasePath)
	if err != nil {
		baseLogger.Fatal("failed to open local store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close local store", zap.Error(err))
		}
	}()

	// One client instance owns the Odoo session for the whole process.
	odooClient := odoo.NewClient(cfg.Odoo, creds, baseLogger.Named("client.odoo"))
	if ok, err := odooClient.LoadConfig(context.Background()); err != nil {
		baseLogger.Fatal("failed to load connection config", zap.Error(err))
	} else if !ok {
		baseLogger.Warn("no connection config saved yet, remote calls will require setup")
	}

	scannerSvc := scannersvc.NewService(odooClient, store, cfg.Odoo, baseLogger.Named("svc.scanner"))
	metricsSvc := metricssvc.NewService(store, cfg.Metrics, baseLogger.Named("svc.metrics"))

	configHandler := handlers.NewConfigHandler(odooClient, baseLogger.Named("handlers.config"))
	scanHandler := handlers.NewScanHandler(scannerSvc, baseLogger.Named("handlers.scan"))
	batchHandler := handlers.NewBatchHandler(scannerSvc.Batch(), baseLogger.Named("handlers.batch"))
	inventoryHandler := handlers.NewInventoryHandler(odooClient, store, metricsSvc, baseLogger.Named("handlers.inventory"))

	engine := router.New(configHandler, scanHandler, batchHandler, inventoryHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, odooClient, store, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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
