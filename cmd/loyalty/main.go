package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/config"
	"github.com/retailpulse/loyalty-analytics-go/internal/handler"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/dataset"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/model"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/resilience"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/sms"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("export_dir", cfg.ExportDir),
		zap.Duration("dataset_ttl", cfg.DatasetTTL),
		zap.Int("reward_freq_threshold", cfg.FreqThreshold),
		zap.Float64("reward_monetary_threshold", cfg.MonetaryThreshold),
		zap.Bool("sms_mock_mode", cfg.SMSMockMode),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "loyalty-analytics")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Model artifacts ---
	segmentScaler, err := model.LoadStandardScaler(cfg.SegmentScalerPath)
	if err != nil {
		logger.Fatal("failed to load segment scaler", zap.String("path", cfg.SegmentScalerPath), zap.Error(err))
	}
	segmentModel, err := model.LoadKMeans(cfg.SegmentModelPath)
	if err != nil {
		logger.Fatal("failed to load segment model", zap.String("path", cfg.SegmentModelPath), zap.Error(err))
	}
	churnScaler, err := model.LoadStandardScaler(cfg.ChurnScalerPath)
	if err != nil {
		logger.Fatal("failed to load churn scaler", zap.String("path", cfg.ChurnScalerPath), zap.Error(err))
	}
	churnModel, err := model.LoadMLP(cfg.ChurnModelPath)
	if err != nil {
		logger.Fatal("failed to load churn model", zap.String("path", cfg.ChurnModelPath), zap.Error(err))
	}
	logger.Info("model artifacts loaded",
		zap.Int("segment_clusters", segmentModel.NumClusters()),
	)

	// --- Stores ---
	store := dataset.NewStore(cfg.DatasetTTL, metrics)
	exporter, err := dataset.NewExporter(cfg.ExportDir)
	if err != nil {
		logger.Fatal("failed to create export dir", zap.String("dir", cfg.ExportDir), zap.Error(err))
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("sms-gateway")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- SMS sender ---
	var sender port.SMSSender
	if cfg.SMSMockMode || cfg.SMSAccountSID == "" {
		logger.Info("SMS gateway in mock mode")
		sender = sms.NewMockSender(logger)
	} else {
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		sender = sms.NewClient(httpClient, cfg.SMSBaseURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFromNumber, cb, resilienceCfg)
	}

	// --- Services ---
	rewards := service.NewRewardPolicy(cfg.FreqThreshold, cfg.MonetaryThreshold)
	segmentationSvc := service.NewSegmentationService(segmentScaler, segmentModel, rewards, metrics, logger)
	churnSvc := service.NewChurnService(churnScaler, churnModel, metrics, logger)
	analysisSvc := service.NewAnalysisService(store, exporter, segmentationSvc, churnSvc, metrics, logger)
	ingestSvc := service.NewIngestService(store, metrics, logger)
	bundlingSvc := service.NewBundlingService(store, metrics, logger)
	insightsSvc := service.NewInsightsService(store, churnSvc, metrics, logger)
	notifierSvc := service.NewNotifierService(sender, bulkhead, cfg.SMSMockMode, metrics, logger)

	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" {
		// Dev fallback only: hash the default password at startup.
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal("failed to hash default password", zap.Error(err))
		}
		passwordHash = string(hash)
		logger.Warn("ADMIN_PASSWORD_HASH not set, using default credentials")
	}
	authSvc := service.NewAuthService(cfg.AdminUsername, passwordHash, []byte(cfg.JWTSecret), cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Ingest:    ingestSvc,
		Analysis:  analysisSvc,
		Bundling:  bundlingSvc,
		Insights:  insightsSvc,
		Notifier:  notifierSvc,
		Auth:      authSvc,
		Metrics:   metrics,
		MaxUpload: cfg.MaxUploadBytes,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
