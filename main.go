package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"creditwatch/adapters/excel"
	"creditwatch/adapters/postgres"
	"creditwatch/adapters/stats"
	"creditwatch/adapters/webhook"
	"creditwatch/app"
	"creditwatch/domain/retraining"
	"creditwatch/internal"
	"creditwatch/internal/api"
	"creditwatch/internal/config"
	"creditwatch/internal/errors"
	"creditwatch/internal/migration"
	"creditwatch/internal/monitor"
	"creditwatch/ports"
)

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

// logLauncher stands in for the external training system: triggers are
// fully recorded in the audit log, execution happens elsewhere
type logLauncher struct {
	logger *internal.Logger
}

func (l *logLauncher) Launch(ctx context.Context, event retraining.TriggerEvent) error {
	l.logger.Info("retraining job %s handed off (priority %s): %s", event.JobID, event.Priority, event.Reason)
	return nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Persistence adapters
	reportStore := postgres.NewReportStore(db)
	auditLog := postgres.NewAuditLog(db)
	metricsStore := postgres.NewMetricsStore(db)
	predictionLog := postgres.NewPredictionLog(db, appConfig.Monitor.ReferenceWindow, appConfig.Monitor.CurrentWindow)

	// Data source: the prediction log, optionally with a file-pinned
	// reference distribution
	var provider ports.BatchProvider = predictionLog
	if appConfig.Data.ReferenceFile != "" {
		logger.Info("using reference data file: %s", appConfig.Data.ReferenceFile)
		provider = excel.NewFileReferenceProvider(appConfig.Data.ReferenceFile, predictionLog)
	}

	alertSink := webhook.NewAlertSink(appConfig.Alerting.WebhookURL, logger)

	// Services
	comparator := stats.NewComparator(appConfig.Monitor.DriftThreshold)
	driftService := app.NewDriftService(comparator, logger)
	fairnessService := app.NewFairnessService(logger)
	retrainingService := app.NewRetrainingService(reportStore, metricsStore, auditLog, &logLauncher{logger: logger}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := retrainingService.SeedFromAuditLog(ctx); err != nil {
		logger.Warn("could not seed retraining cooldown: %v", err)
	}

	// Background monitors
	scheduler := monitor.NewScheduler(appConfig.Monitor.RetryInterval, logger)
	scheduler.Register(monitor.NewDriftWorker(provider, driftService, reportStore, alertSink, appConfig.Monitor.DriftCheckSchedule, logger))
	scheduler.Register(monitor.NewRetrainingWorker(retrainingService, appConfig.Monitor.RetrainCheckSchedule, logger))
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start monitor scheduler: %v", err)
	}

	// HTTP API
	server := api.NewServer(driftService, fairnessService, retrainingService, provider, reportStore, logger)
	httpServer := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: server.Router(),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("API server listening on :%s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	logger.Info("creditwatch stopped")
}
