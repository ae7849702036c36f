package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/agfdbk.net/internal/adapter/crypto"
	"gitlab.com/agfdbk.net/internal/adapter/diff"
	"gitlab.com/agfdbk.net/internal/adapter/filestore"
	"gitlab.com/agfdbk.net/internal/adapter/memory"
	"gitlab.com/agfdbk.net/internal/adapter/postgres/resultrepository"
	"gitlab.com/agfdbk.net/internal/adapter/postgres/submissionrepository"
	"gitlab.com/agfdbk.net/internal/adapter/postgres/testdefrepository"
	"gitlab.com/agfdbk.net/internal/adapter/redis/fdbkcache"
	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/core/services/export"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/core/services/receipt"
	"gitlab.com/agfdbk.net/internal/core/services/ultimate"
	logger2 "gitlab.com/agfdbk.net/internal/global/logger"
	"gitlab.com/agfdbk.net/internal/handlers"
	http2 "gitlab.com/agfdbk.net/internal/http"
)

func main() {
	InitReader()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sysCfg := config.NewSystemConfig()
	logger2.Init(sysCfg.DebugMode)
	defer logger2.Sync()
	logger := logger2.Logger
	logger.Info("Starting feedback service", "port", sysCfg.HTTPPort)

	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// SECONDARY PORTS
	schema := sysCfg.PostgresConfig.Schema
	submissionRepo := submissionrepository.NewSubmissionRepository(db, logger, schema)
	resultRepo := resultrepository.New(db, logger, schema)
	testDefRepo := testdefrepository.NewTestDefRepository(db, logger, schema)
	outputStore := filestore.NewOutputStore(sysCfg.OutputStoreCfg)
	differ := diff.NewLineDiffer()

	cache, closeCache := setupCache(sysCfg, logger)
	defer closeCache()

	// PRIMARY PORTS
	jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)
	sealer, err := crypto.NewSecretboxSealer(sysCfg.ReceiptCfg)
	if err != nil {
		logger.Error("Failed to set up receipt sealer", "error", err)
		os.Exit(1)
	}
	if sysCfg.ReceiptCfg.SecretKey == "" {
		logger.Warn("RECEIPT_SECRET_KEY not set, receipts will not verify after a restart")
	}

	// services
	feedbackSvc := feedback.NewFeedbackService(submissionRepo, resultRepo, testDefRepo,
		cache, outputStore, differ, logger, sysCfg.FeedbackSvcCfg)
	ultimateSvc := ultimate.NewUltimateService(submissionRepo, feedbackSvc, logger)
	exportSvc := export.NewExportService(submissionRepo, testDefRepo, ultimateSvc, logger)
	receiptSvc := receipt.NewReceiptService(sealer, feedbackSvc, logger)
	serviceProvider := http2.NewServiceProvider(feedbackSvc, ultimateSvc, exportSvc, receiptSvc, submissionRepo)

	// server
	middleware := handlers.New(jwtProvider, sysCfg.JwtConfig, logger)
	httpServer := http2.NewServer(sysCfg.HTTPPort, "agfeedback", *serviceProvider, middleware, logger)
	if err := httpServer.Init(); err != nil {
		logger.Error("Failed to init http server", "error", err)
		os.Exit(1)
	}
	ctxBg := context.Background()
	httpServer.Start(ctxBg)

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	httpServer.Stop(ctx)

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// setupCache picks the feedback cache backend
func setupCache(sysCfg *config.AppConfig, logger primary.Logger) (secondary.FeedbackCache, func()) {
	if sysCfg.FeedbackSvcCfg.CacheBackend == "memory" {
		logger.Info("Using in-process feedback cache")
		return memory.NewFeedbackCache(sysCfg.FeedbackSvcCfg.CacheTTL), func() {}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     sysCfg.RedisConfig.Url,
		Password: sysCfg.RedisConfig.Password,
		DB:       sysCfg.RedisConfig.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to in-process feedback cache", "error", err)
		_ = redisClient.Close()
		return memory.NewFeedbackCache(sysCfg.FeedbackSvcCfg.CacheTTL), func() {}
	}
	return fdbkcache.NewFeedbackCache(redisClient, logger), func() { _ = redisClient.Close() }
}

// InitReader loads <env>.env when an environment name is passed, else .env if present
func InitReader() {
	if len(os.Args) < 2 {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Error loading .env file: %v", err)
		}
		return
	}
	environment := os.Args[1]
	if err := godotenv.Load(environment + ".env"); err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
