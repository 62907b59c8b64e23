// Package main implements the entry point for the readpath API server:
// the adaptive learning backend that schedules vocabulary reviews,
// orchestrates next actions, drives guided co-reading sessions, and
// serves privacy-projected progress dashboards.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/readpath/readpath-api/internal/config"
	"github.com/readpath/readpath-api/internal/decision"
	"github.com/readpath/readpath-api/internal/platform/gemini"
	"github.com/readpath/readpath-api/internal/platform/logger"
	"github.com/readpath/readpath-api/internal/platform/postgres"
	"github.com/readpath/readpath-api/internal/service/coreading"
	"github.com/readpath/readpath-api/internal/service/dashboard"
	"github.com/readpath/readpath-api/internal/service/orchestrator"
	"github.com/readpath/readpath-api/internal/service/review"
)

const (
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 5 * time.Minute

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("decision_engine_enabled", cfg.Decision.Enabled()))

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database", slog.String("error", closeErr.Error()))
		}
	}()

	if err := postgres.MigrateUp(db, appLogger); err != nil {
		return err
	}

	// Stores
	vocabStore := postgres.NewVocabItemStore(db, appLogger)
	sessionStore := postgres.NewSessionStore(db, appLogger)
	checkpointStore := postgres.NewCheckpointStore(db, appLogger)
	eventStore := postgres.NewEventStore(db, appLogger)
	statsStore := postgres.NewStatsStore(db, appLogger)

	// Decision engine, optional
	var engine decision.Engine
	if cfg.Decision.Enabled() {
		engine, err = gemini.NewEngine(context.Background(), appLogger, gemini.Config{
			APIKey:         cfg.Decision.GeminiAPIKey,
			ModelName:      cfg.Decision.ModelName,
			TimeoutSeconds: cfg.Decision.TimeoutSeconds,
		})
		if err != nil {
			return fmt.Errorf("failed to create decision engine: %w", err)
		}
	} else {
		appLogger.Info("decision engine disabled, orchestrator runs without interventions")
	}

	// Services
	reviewService := review.NewReviewService(db, vocabStore, eventStore, appLogger)
	orchestratorService := orchestrator.NewOrchestratorService(
		reviewService,
		engine,
		checkpointStore,
		eventStore,
		appLogger,
	)
	coreadingService := coreading.NewCoReadingService(
		db,
		sessionStore,
		checkpointStore,
		eventStore,
		appLogger,
	)
	dashboardService := dashboard.NewDashboardService(statsStore, nil, appLogger)

	router := newRouter(routerDeps{
		logger:       appLogger,
		review:       reviewService,
		orchestrator: orchestratorService,
		coreading:    coreadingService,
		dashboard:    dashboardService,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		appLogger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	appLogger.Info("server stopped")
	return nil
}

// openDatabase opens and verifies the connection pool.
func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
