package handler

import (
	"net/http"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the wired service layer for the router.
type Services struct {
	Ingest    *service.IngestService
	Analysis  *service.AnalysisService
	Bundling  *service.BundlingService
	Insights  *service.InsightsService
	Notifier  *service.NotifierService
	Auth      *service.AuthService
	Metrics   *observability.Metrics
	MaxUpload int64
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(svcs.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication
		// POST /v1/auth/login
		// =============================================
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))

		// Everything below requires a valid operator token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// =============================================
			// Dataset ingestion
			// POST /v1/datasets
			// POST /v1/datasets/{id}/stock
			// =============================================
			r.Post("/datasets", uploadDatasetHandler(svcs.Ingest, svcs.MaxUpload, logger))
			r.Post("/datasets/{id}/stock", uploadStockHandler(svcs.Ingest, svcs.MaxUpload, logger))

			// =============================================
			// Segmentation + churn analysis
			// POST /v1/datasets/{id}/analysis
			// GET  /v1/datasets/{id}/analysis/export
			// =============================================
			r.Post("/datasets/{id}/analysis", runAnalysisHandler(svcs.Analysis, logger))
			r.Get("/datasets/{id}/analysis/export", exportAnalysisHandler(svcs.Analysis, logger))

			// =============================================
			// Dead-stock bundling
			// POST /v1/datasets/{id}/bundles
			// =============================================
			r.Post("/datasets/{id}/bundles", bundlesHandler(svcs.Bundling, logger))

			// =============================================
			// Per-customer and per-product insights
			// =============================================
			r.Get("/datasets/{id}/customers/{customerId}/recommendations", recommendationsHandler(svcs.Insights, logger))
			r.Get("/datasets/{id}/customers/{customerId}/value", customerValueHandler(svcs.Insights, logger))
			r.Get("/datasets/{id}/products/{productId}/pricing", pricingHandler(svcs.Insights, logger))
			r.Get("/datasets/{id}/products/{productId}/forecast", forecastHandler(svcs.Insights, logger))

			// =============================================
			// Notifications
			// POST /v1/datasets/{id}/notifications
			// =============================================
			r.Post("/datasets/{id}/notifications", notificationsHandler(svcs.Analysis, svcs.Notifier, logger))

			// =============================================
			// Pipeline metrics snapshot
			// GET /v1/metrics/pipeline
			// =============================================
			r.Get("/metrics/pipeline", pipelineMetricsHandler(svcs.Metrics, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "loyalty-analytics-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func pipelineMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetPipelineSnapshot())
	}
}
