package handler

import (
	"net/http"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Run analysis — POST /v1/datasets/{id}/analysis?as_of=
// ============================================================

type analysisResponse struct {
	DatasetID string                    `json:"dataset_id"`
	AsOf      string                    `json:"as_of"`
	Rows      int                       `json:"rows"`
	Customers []domain.AnalyzedCustomer `json:"customers"`
}

func runAnalysisHandler(svc *service.AnalysisService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/datasets/{id}/analysis")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			writeError(w, http.StatusBadRequest, "dataset id is required")
			return
		}
		span.SetAttributes(attribute.String("dataset.id", datasetID))

		asOf := time.Now()
		if v := r.URL.Query().Get("as_of"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
				return
			}
			asOf = parsed
		}

		rows, err := svc.Run(ctx, datasetID, asOf)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, analysisResponse{
			DatasetID: datasetID,
			AsOf:      asOf.Format("2006-01-02"),
			Rows:      len(rows),
			Customers: rows,
		})
	}
}

// ============================================================
// Export download — GET /v1/datasets/{id}/analysis/export
// ============================================================

func exportAnalysisHandler(svc *service.AnalysisService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/datasets/{id}/analysis/export")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			writeError(w, http.StatusBadRequest, "dataset id is required")
			return
		}

		path, err := svc.ExportPath(ctx, datasetID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="analysis_`+datasetID+`.csv"`)
		http.ServeFile(w, r, path)
	}
}
