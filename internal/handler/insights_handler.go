package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Recommendations — GET /v1/datasets/{id}/customers/{customerId}/recommendations
// ============================================================

func recommendationsHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/datasets/{id}/customers/{customerId}/recommendations")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		customerID := chi.URLParam(r, "customerId")
		if datasetID == "" || customerID == "" {
			writeError(w, http.StatusBadRequest, "dataset id and customer id are required")
			return
		}

		limit := 5
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		recs, err := svc.RecommendProducts(ctx, datasetID, customerID, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"customer_id":     customerID,
			"recommendations": recs,
		})
	}
}

// ============================================================
// Customer value — GET /v1/datasets/{id}/customers/{customerId}/value
// ============================================================

func customerValueHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/datasets/{id}/customers/{customerId}/value")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		customerID := chi.URLParam(r, "customerId")
		if datasetID == "" || customerID == "" {
			writeError(w, http.StatusBadRequest, "dataset id and customer id are required")
			return
		}

		value, err := svc.CustomerValue(ctx, datasetID, customerID, time.Now())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, value)
	}
}

// ============================================================
// Pricing — GET /v1/datasets/{id}/products/{productId}/pricing
// ============================================================

func pricingHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/datasets/{id}/products/{productId}/pricing")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		productID := chi.URLParam(r, "productId")
		if datasetID == "" || productID == "" {
			writeError(w, http.StatusBadRequest, "dataset id and product id are required")
			return
		}

		suggestion, err := svc.PricingSuggestion(ctx, datasetID, productID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, suggestion)
	}
}

// ============================================================
// Forecast — GET /v1/datasets/{id}/products/{productId}/forecast
// ============================================================

func forecastHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/datasets/{id}/products/{productId}/forecast")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		productID := chi.URLParam(r, "productId")
		if datasetID == "" || productID == "" {
			writeError(w, http.StatusBadRequest, "dataset id and product id are required")
			return
		}

		days := 30
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 365 {
				writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
				return
			}
			days = n
		}

		forecast, err := svc.ForecastDemand(ctx, datasetID, productID, days)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, forecast)
	}
}
