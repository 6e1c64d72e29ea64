package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

// ChurnService applies the supplied churn scaler+classifier over
// [Monetary, Frequency, AvgPurchaseGapDays, Recency] per customer.
type ChurnService struct {
	scaler  port.FeatureScaler
	model   port.ChurnModel
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewChurnService wires the churn prediction stage.
func NewChurnService(scaler port.FeatureScaler, model port.ChurnModel, metrics *observability.Metrics, logger *zap.Logger) *ChurnService {
	return &ChurnService{
		scaler:  scaler,
		model:   model,
		metrics: metrics,
		logger:  logger,
	}
}

// Predict returns one churn result per feature row. The binary label
// flips at probability 0.5; risk levels at 0.3 and 0.7.
func (s *ChurnService) Predict(ctx context.Context, features []domain.CustomerFeatures) ([]domain.ChurnResult, error) {
	_, span := tracer.Start(ctx, "ChurnService.Predict")
	defer span.End()
	span.SetAttributes(attribute.Int("customers", len(features)))

	start := time.Now()
	defer func() {
		s.metrics.RecordStageDuration("churn", time.Since(start))
	}()

	if len(features) == 0 {
		return nil, &domain.ErrInvalidData{Column: "features", Reason: "empty feature table"}
	}

	results := make([]domain.ChurnResult, len(features))
	for i, f := range features {
		p := s.model.PredictProba(s.scaler.Transform(f.ChurnFeatureVector()))
		label := 0
		if p > 0.5 {
			label = 1
		}
		results[i] = domain.ChurnResult{
			CustomerID:  f.CustomerID,
			Prediction:  label,
			Probability: p,
			RiskLevel:   domain.RiskLevelFor(p),
		}
	}

	s.logger.Debug("churn prediction complete", zap.Int("customers", len(results)))
	return results, nil
}

// PredictOne runs the classifier for a single feature row.
func (s *ChurnService) PredictOne(f domain.CustomerFeatures) domain.ChurnResult {
	p := s.model.PredictProba(s.scaler.Transform(f.ChurnFeatureVector()))
	label := 0
	if p > 0.5 {
		label = 1
	}
	return domain.ChurnResult{
		CustomerID:  f.CustomerID,
		Prediction:  label,
		Probability: p,
		RiskLevel:   domain.RiskLevelFor(p),
	}
}
