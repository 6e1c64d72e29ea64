package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/dataset"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

// IngestService turns uploaded CSV streams into stored datasets.
type IngestService struct {
	store   port.DatasetStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewIngestService wires the upload path.
func NewIngestService(store port.DatasetStore, metrics *observability.Metrics, logger *zap.Logger) *IngestService {
	return &IngestService{store: store, metrics: metrics, logger: logger}
}

// Upload parses a transaction CSV, stores it under a fresh dataset id and
// returns the summary counts.
func (s *IngestService) Upload(ctx context.Context, r io.Reader) (*domain.DatasetSummary, error) {
	ctx, span := tracer.Start(ctx, "IngestService.Upload")
	defer span.End()

	start := time.Now()
	txns, err := dataset.ParseTransactions(r)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStageDuration("ingest", time.Since(start))

	ds := &domain.Dataset{
		ID:           uuid.NewString(),
		Transactions: txns,
		UploadedAt:   time.Now(),
	}
	if err := s.store.Put(ctx, ds); err != nil {
		return nil, err
	}
	s.metrics.IncrDatasetIngested(len(txns))
	span.SetAttributes(
		attribute.String("dataset.id", ds.ID),
		attribute.Int("dataset.rows", len(txns)),
	)

	customers := make(map[string]bool)
	products := make(map[string]bool)
	for _, t := range txns {
		customers[t.CustomerID] = true
		products[t.ProductID] = true
	}

	s.logger.Info("dataset ingested",
		zap.String("dataset_id", ds.ID),
		zap.Int("rows", len(txns)),
		zap.Int("customers", len(customers)),
		zap.Int("products", len(products)),
	)
	return &domain.DatasetSummary{
		DatasetID: ds.ID,
		Rows:      len(txns),
		Customers: len(customers),
		Products:  len(products),
		CreatedAt: ds.UploadedAt,
	}, nil
}

// AttachStock parses a stock CSV and attaches it to an existing dataset.
func (s *IngestService) AttachStock(ctx context.Context, datasetID string, r io.Reader) (int, error) {
	ctx, span := tracer.Start(ctx, "IngestService.AttachStock")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.id", datasetID))

	stock, err := dataset.ParseStock(r)
	if err != nil {
		return 0, err
	}
	if err := s.store.AttachStock(ctx, datasetID, stock); err != nil {
		return 0, err
	}

	s.logger.Info("stock attached",
		zap.String("dataset_id", datasetID),
		zap.Int("rows", len(stock)),
	)
	return len(stock), nil
}
