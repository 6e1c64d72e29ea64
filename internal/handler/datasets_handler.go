package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// uploadBody returns the CSV stream from either a multipart "file" field
// or a raw request body, capped at maxBytes.
func uploadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}

// ============================================================
// Upload transactions — POST /v1/datasets
// ============================================================

func uploadDatasetHandler(svc *service.IngestService, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/datasets")
		defer span.End()

		body, err := uploadBody(w, r, maxBytes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
			return
		}
		defer body.Close()

		summary, err := svc.Upload(ctx, body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, summary)
	}
}

// ============================================================
// Upload stock — POST /v1/datasets/{id}/stock
// ============================================================

func uploadStockHandler(svc *service.IngestService, maxBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/datasets/{id}/stock")
		defer span.End()

		datasetID := chi.URLParam(r, "id")
		if datasetID == "" {
			writeError(w, http.StatusBadRequest, "dataset id is required")
			return
		}

		body, err := uploadBody(w, r, maxBytes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
			return
		}
		defer body.Close()

		rows, err := svc.AttachStock(ctx, datasetID, body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"dataset_id": datasetID,
			"stock_rows": rows,
		})
	}
}
