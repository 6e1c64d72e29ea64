package service

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

var tracer = otel.Tracer("service/pipeline")

// SegmentationService assigns customers to clusters with the supplied
// pre-trained scaler+model and derives the loyalty tier ordering from
// per-cluster aggregate spend. It never trains anything: given a fixed
// model and feature table the output is deterministic.
type SegmentationService struct {
	scaler  port.FeatureScaler
	model   port.ClusterModel
	rewards RewardPolicy
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSegmentationService wires the segmentation stage.
func NewSegmentationService(scaler port.FeatureScaler, model port.ClusterModel, rewards RewardPolicy, metrics *observability.Metrics, logger *zap.Logger) *SegmentationService {
	return &SegmentationService{
		scaler:  scaler,
		model:   model,
		rewards: rewards,
		metrics: metrics,
		logger:  logger,
	}
}

// Segment predicts a cluster per customer, ranks clusters into loyalty
// tiers and applies the reward policy to every row.
func (s *SegmentationService) Segment(ctx context.Context, features []domain.CustomerFeatures) ([]domain.SegmentedCustomer, []domain.ClusterTier, error) {
	_, span := tracer.Start(ctx, "SegmentationService.Segment")
	defer span.End()
	span.SetAttributes(attribute.Int("customers", len(features)))

	start := time.Now()
	defer func() {
		s.metrics.RecordStageDuration("segmentation", time.Since(start))
	}()

	if len(features) == 0 {
		return nil, nil, &domain.ErrInvalidData{Column: "features", Reason: "empty feature table"}
	}

	rows := make([]domain.SegmentedCustomer, len(features))
	for i, f := range features {
		scaled := s.scaler.Transform(f.SegmentFeatureVector())
		rows[i] = domain.SegmentedCustomer{
			CustomerFeatures: f,
			Cluster:          s.model.Predict(scaled),
		}
	}

	tiers := rankClusters(rows)
	tierByCluster := make(map[int]domain.ClusterTier, len(tiers))
	for _, t := range tiers {
		tierByCluster[t.Cluster] = t
	}

	for i := range rows {
		t := tierByCluster[rows[i].Cluster]
		rows[i].Loyalty = t.Loyalty
		rows[i].AssignedReward = t.AssignedReward
		s.rewards.Apply(&rows[i])
	}

	s.logger.Debug("segmentation complete",
		zap.Int("customers", len(rows)),
		zap.Int("clusters", len(tiers)),
	)
	return rows, tiers, nil
}

// rankClusters aggregates monetary and frequency per cluster, orders
// clusters by unit price (monetary/frequency) descending and assigns tier
// labels in that order. Clusters past the label list get the Standard
// tier: ranking stays monotonic, overflow tiers share the lowest rank.
func rankClusters(rows []domain.SegmentedCustomer) []domain.ClusterTier {
	byCluster := make(map[int]*domain.ClusterTier)
	for _, r := range rows {
		t, ok := byCluster[r.Cluster]
		if !ok {
			t = &domain.ClusterTier{Cluster: r.Cluster}
			byCluster[r.Cluster] = t
		}
		t.TotalMonetary += r.Monetary
		t.TotalFrequency += r.Frequency
	}

	tiers := make([]domain.ClusterTier, 0, len(byCluster))
	for _, t := range byCluster {
		if t.TotalFrequency > 0 {
			t.UnitPrice = t.TotalMonetary / float64(t.TotalFrequency)
		}
		tiers = append(tiers, *t)
	}

	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].UnitPrice != tiers[j].UnitPrice {
			return tiers[i].UnitPrice > tiers[j].UnitPrice
		}
		return tiers[i].Cluster < tiers[j].Cluster
	})

	for i := range tiers {
		label := domain.TierStandard
		if i < len(domain.LoyaltyLabels) {
			label = domain.LoyaltyLabels[i]
		}
		tiers[i].Loyalty = label
		tiers[i].AssignedReward = domain.RewardForTier[label]
	}
	return tiers
}
