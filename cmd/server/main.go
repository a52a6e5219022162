package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acharya-rj/admissions/internal/app"
	"github.com/acharya-rj/admissions/internal/config"
	"github.com/acharya-rj/admissions/internal/controller"
	"github.com/acharya-rj/admissions/internal/repository"
	"github.com/acharya-rj/admissions/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting admissions service", zap.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории
	transactor := repository.NewTransactor(pool)
	verificationRepo := repository.NewVerificationRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	decisionRepo := repository.NewDecisionRepository(pool)
	schoolRepo := repository.NewSchoolRepository(pool)
	feeBandRepo := repository.NewFeeBandRepository(pool)

	// Сервисы
	notifier := service.NewLogNotifier(logger)
	verificationService := service.NewVerificationService(verificationRepo, notifier, logger)
	applicationService := service.NewApplicationService(
		transactor,
		applicationRepo,
		decisionRepo,
		verificationRepo,
		schoolRepo,
		notifier,
		logger,
	)
	decisionService := service.NewDecisionService(transactor, decisionRepo, applicationRepo, schoolRepo, logger)
	feeService := service.NewFeeService(feeBandRepo, applicationRepo, decisionRepo, logger)
	dashboardService := service.NewDashboardService(applicationRepo, decisionRepo, logger)

	// Фоновая чистка протухших кодов
	sweeper := app.NewSweeper(verificationService, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	router := controller.NewRouter(controller.Services{
		Verifications: verificationService,
		Applications:  applicationService,
		Decisions:     decisionService,
		Fees:          feeService,
		Dashboard:     dashboardService,
	}, logger)

	server := app.NewServer(cfg.HTTPAddr, router, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Admissions service stopped")
}
