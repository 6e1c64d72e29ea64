package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

// AnalysisService orchestrates the full pipeline for one dataset:
// feature engineering once, then segmentation and churn concurrently,
// merged into the augmented per-customer table and persisted as a
// per-dataset CSV export.
type AnalysisService struct {
	store        port.DatasetStore
	exporter     port.ExportStore
	segmentation *SegmentationService
	churn        *ChurnService
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAnalysisService wires the orchestrator.
func NewAnalysisService(
	store port.DatasetStore,
	exporter port.ExportStore,
	segmentation *SegmentationService,
	churn *ChurnService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		store:        store,
		exporter:     exporter,
		segmentation: segmentation,
		churn:        churn,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run executes the pipeline for the dataset. asOf is the explicit
// reference "today" for Recency; callers default it to the request time.
func (s *AnalysisService) Run(ctx context.Context, datasetID string, asOf time.Time) ([]domain.AnalyzedCustomer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "AnalysisService.Run")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.id", datasetID))

	start := time.Now()
	var runErr error
	defer func() {
		s.metrics.RecordStageDuration("analysis", time.Since(start))
		if runErr != nil {
			s.metrics.IncrAnalysis("error")
		} else {
			s.metrics.IncrAnalysis("success")
		}
	}()

	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		runErr = err
		return nil, err
	}

	features, err := BuildCustomerFeatures(ds.Transactions, asOf)
	if err != nil {
		runErr = err
		return nil, err
	}

	var (
		segmented []domain.SegmentedCustomer
		churned   []domain.ChurnResult
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, _, err := s.segmentation.Segment(gCtx, features)
		if err != nil {
			return err
		}
		segmented = rows
		return nil
	})

	g.Go(func() error {
		results, err := s.churn.Predict(gCtx, features)
		if err != nil {
			return err
		}
		churned = results
		return nil
	})

	if err := g.Wait(); err != nil {
		runErr = err
		return nil, err
	}

	churnByID := make(map[string]domain.ChurnResult, len(churned))
	for _, c := range churned {
		churnByID[c.CustomerID] = c
	}

	out := make([]domain.AnalyzedCustomer, len(segmented))
	for i, row := range segmented {
		c := churnByID[row.CustomerID]
		out[i] = domain.AnalyzedCustomer{
			SegmentedCustomer:     row,
			ChurnPrediction:       c.Prediction,
			PredictionProbability: c.Probability,
			RiskLevel:             c.RiskLevel,
		}
	}

	path, err := s.exporter.WriteAnalysis(ctx, datasetID, out)
	if err != nil {
		// The table is still usable; exporting is best-effort.
		s.logger.Error("failed to write analysis export",
			zap.String("dataset_id", datasetID),
			zap.Error(err),
		)
	} else {
		s.logger.Info("analysis complete",
			zap.String("dataset_id", datasetID),
			zap.Int("customers", len(out)),
			zap.String("export_path", path),
		)
	}

	return out, nil
}

// ExportPath resolves the CSV export written by the last Run for a dataset.
func (s *AnalysisService) ExportPath(ctx context.Context, datasetID string) (string, error) {
	return s.exporter.OpenAnalysis(ctx, datasetID)
}
