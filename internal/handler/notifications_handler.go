package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Notifications — POST /v1/datasets/{id}/notifications
// ============================================================

func notificationsHandler(analysisSvc *service.AnalysisService, notifier *service.NotifierService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/datasets/{id}/notifications")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			writeError(w, http.StatusBadRequest, "dataset id is required")
			return
		}
		span.SetAttributes(attribute.String("dataset.id", datasetID))

		var req domain.NotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rows, err := analysisSvc.Run(ctx, datasetID, time.Now())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		batch, err := notifier.Dispatch(ctx, datasetID, rows, req.Limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// SMS dispatch is the one outward-facing action; keep an audit
		// trail of which operator triggered it.
		logger.Info("notification batch dispatched",
			zap.String("operator", OperatorFromContext(ctx)),
			zap.String("dataset_id", datasetID),
			zap.Int("sent", batch.Sent),
			zap.Int("failed", batch.Failed),
		)
		writeJSON(w, http.StatusOK, batch)
	}
}
