package handler

import (
	"encoding/json"
	"net/http"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Bundle lookup — POST /v1/datasets/{id}/bundles
// ============================================================

type bundleRequest struct {
	Products           []string `json:"products"`
	DeadStockThreshold float64  `json:"dead_stock_threshold"`
	MinSupport         float64  `json:"min_support"`
	MinLift            float64  `json:"min_lift"`
	MinConfidence      float64  `json:"min_confidence"`
	MinRuleSupport     float64  `json:"min_rule_support"`
}

func bundlesHandler(svc *service.BundlingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/datasets/{id}/bundles")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			writeError(w, http.StatusBadRequest, "dataset id is required")
			return
		}
		span.SetAttributes(attribute.String("dataset.id", datasetID))

		var req bundleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Products) == 0 {
			writeError(w, http.StatusBadRequest, "products is required")
			return
		}

		params := domain.BundlingParams{
			DeadStockThreshold: req.DeadStockThreshold,
			MinSupport:         req.MinSupport,
			RuleMetricMinLift:  req.MinLift,
			MinConfidence:      req.MinConfidence,
			MinRuleSupport:     req.MinRuleSupport,
		}

		rec, err := svc.Recommend(ctx, datasetID, req.Products, params)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
