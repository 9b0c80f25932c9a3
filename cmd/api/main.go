package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/config"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/dynamo"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/google"
	jwtinfra "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/jwt"
	s3infra "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/s3"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/smtp"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/infrastructure/sns"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/observability"
	transporthttp "github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/transport/http/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables, logger)

	// Refusing to start without signing keys beats serving a login
	// endpoint that cannot issue tokens.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		logger.Fatal("JWT provider init failed", zap.Error(err))
	}

	// S3 store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender is optional.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		logger.Warn("SNS sender not available", zap.Error(err))
	}

	// Google login stays disabled without a client ID.
	var googleVerifier *google.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	// Public-endpoint request cap: Redis when configured so the limit holds
	// across instances, otherwise in memory.
	var windowStore middleware.WindowStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		windowStore = middleware.NewRedisWindowStore(rdb, "ratelimit")
		logger.Info("using redis rate-limit store", zap.String("addr", cfg.RedisAddr))
	} else {
		windowStore = middleware.NewMemoryWindowStore()
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		B2CCustomerRepo:  dynamo.NewB2CCustomerRepo(dynamoClient, cfg.DynamoTables.B2CCustomers),
		AffiliateRepo:    dynamo.NewAffiliateRepo(dynamoClient, cfg.DynamoTables.Affiliates),
		OrderRepo:        dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		CredentialRepo:   dynamo.NewCredentialRepo(dynamoClient, cfg.DynamoTables.Credentials),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions, logger),
		PresenceRepo:     dynamo.NewPresenceRepo(dynamoClient, cfg.DynamoTables.Presence),
		ResetRepo:        dynamo.NewPasswordResetRepo(dynamoClient, cfg.DynamoTables.PasswordResets),
		VerificationRepo: dynamo.NewEmailVerificationRepo(dynamoClient, cfg.DynamoTables.EmailVerifications),
		EmailLogRepo:     dynamo.NewEmailLogRepo(dynamoClient, cfg.DynamoTables.EmailLog),
		MaterialRepo:     dynamo.NewMaterialRepo(dynamoClient, cfg.DynamoTables.Materials),
		AdminDocRepo:     dynamo.NewAdminDocumentRepo(dynamoClient, cfg.DynamoTables.AdminDocuments),
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		GoogleVerifier:   googleVerifier,
		WindowStore:      windowStore,
		Logger:           logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
