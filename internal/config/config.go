package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Uploads / exports
	MaxUploadBytes int64
	ExportDir      string
	DatasetTTL     time.Duration

	// Pre-trained model artifacts
	SegmentScalerPath string
	SegmentModelPath  string
	ChurnScalerPath   string
	ChurnModelPath    string

	// Reward policy thresholds
	FreqThreshold     int
	MonetaryThreshold float64

	// SMS gateway (Twilio-compatible REST API)
	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string
	SMSBaseURL    string
	SMSMockMode   bool

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Observability
	OTLPEndpoint string

	// Auth
	JWTSecret         string
	JWTAccessTTL      time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt hash of the operator password
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 32<<20)),
		ExportDir:      getEnv("EXPORT_DIR", "data/exports"),
		DatasetTTL:     getEnvDuration("DATASET_TTL", 2*time.Hour),

		SegmentScalerPath: getEnv("SEGMENT_SCALER_PATH", "models/segment_scaler.json"),
		SegmentModelPath:  getEnv("SEGMENT_MODEL_PATH", "models/segment_kmeans.json"),
		ChurnScalerPath:   getEnv("CHURN_SCALER_PATH", "models/churn_scaler.json"),
		ChurnModelPath:    getEnv("CHURN_MODEL_PATH", "models/churn_mlp.json"),

		FreqThreshold:     getEnvInt("REWARD_FREQ_THRESHOLD", 15),
		MonetaryThreshold: getEnvFloat("REWARD_MONETARY_THRESHOLD", 30000),

		SMSAccountSID: getEnv("SMS_ACCOUNT_SID", ""),
		SMSAuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
		SMSFromNumber: getEnv("SMS_FROM_NUMBER", ""),
		SMSBaseURL:    getEnv("SMS_BASE_URL", "https://api.twilio.com"),
		SMSMockMode:   getEnv("SMS_MOCK_MODE", "true") == "true",

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:         getEnv("JWT_SECRET", "loyalty-default-dev-secret-change-me"),
		JWTAccessTTL:      getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
