package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/fintra/payledger/internal/adapter/http"
	"github.com/fintra/payledger/internal/adapter/http/handler"
	postgresRepo "github.com/fintra/payledger/internal/adapter/repository/postgres"
	redisRepo "github.com/fintra/payledger/internal/adapter/repository/redis"
	"github.com/fintra/payledger/internal/infrastructure/advisory"
	"github.com/fintra/payledger/internal/infrastructure/auth"
	"github.com/fintra/payledger/internal/infrastructure/config"
	"github.com/fintra/payledger/internal/infrastructure/logger"
	"github.com/fintra/payledger/internal/infrastructure/metrics"
	"github.com/fintra/payledger/internal/infrastructure/postgres"
	"github.com/fintra/payledger/internal/infrastructure/redis"
	"github.com/fintra/payledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	threshold, err := decimal.NewFromString(cfg.ApprovalThreshold)
	if err != nil {
		appLogger.Fatal().Err(err).Str("value", cfg.ApprovalThreshold).Msg("invalid approval threshold")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, path, appLogger); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	dedup := redisRepo.NewDedupGuard(redisClient)
	cache := redisRepo.NewCache(redisClient)

	var advisoryClient usecase.AdvisoryClient
	if cfg.AdvisoryURL != "" {
		advisoryClient = advisory.NewClient(cfg.AdvisoryURL, cfg.AdvisoryTimeout)
		appLogger.Info().Str("url", cfg.AdvisoryURL).Msg("risk advisory enabled")
	}

	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, transferRepo, auditRepo, idGen, m)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, auditRepo, dedup, idGen, m, threshold, cfg.TransferDedupTTL)
	riskUC := usecase.NewRiskUseCase(accountRepo, auditRepo, advisoryClient, cache, m, appLogger)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, auditRepo)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			appLogger.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		AuditHandler:    handler.NewAuditHandler(reconciliationUC),
		RiskHandler:     handler.NewRiskHandler(riskUC),
		LedgerHandler:   handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          appLogger,
		JWTManager:      jwtManager,
		AuthEnabled:     cfg.AuthEnabled,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
