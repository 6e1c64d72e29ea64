package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type identityScaler struct{}

func (identityScaler) Transform(v []float64) []float64 { return v }

type stubCluster struct {
	fn func([]float64) int
}

func (s stubCluster) Predict(v []float64) int { return s.fn(v) }

type stubChurn struct {
	p float64
}

func (s stubChurn) PredictProba([]float64) float64 { return s.p }

// --- Tests ---

func features(id string, monetary float64, freq int) domain.CustomerFeatures {
	return domain.CustomerFeatures{CustomerID: id, Monetary: monetary, Frequency: freq}
}

func newSegmentation(cluster stubCluster) *service.SegmentationService {
	return service.NewSegmentationService(
		identityScaler{},
		cluster,
		service.NewRewardPolicy(15, 30000),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestSegment_TierRankingByUnitPrice(t *testing.T) {
	// Cluster by spend: big spenders land in cluster 1.
	cluster := stubCluster{fn: func(v []float64) int {
		if v[0] >= 1000 {
			return 1
		}
		return 0
	}}
	svc := newSegmentation(cluster)

	rows, tiers, err := svc.Segment(context.Background(), []domain.CustomerFeatures{
		features("big", 40000, 20),
		features("small", 500, 2),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(tiers))
	}
	// Cluster 1 has the higher unit price (2000 vs 250): top label.
	if tiers[0].Cluster != 1 || tiers[0].Loyalty != "Platinum" {
		t.Errorf("tiers[0] = %+v, want cluster 1 Platinum", tiers[0])
	}
	if tiers[1].Cluster != 0 || tiers[1].Loyalty != "Gold" {
		t.Errorf("tiers[1] = %+v, want cluster 0 Gold", tiers[1])
	}

	for _, r := range rows {
		switch r.CustomerID {
		case "big":
			if r.Loyalty != "Platinum" {
				t.Errorf("big spender tier = %q, want Platinum", r.Loyalty)
			}
			if r.AssignedReward != domain.RewardForTier["Platinum"] {
				t.Errorf("big spender reward = %q", r.AssignedReward)
			}
		case "small":
			// Below both reward thresholds: downgraded by the policy.
			if r.Loyalty != domain.TierNone {
				t.Errorf("small spender tier = %q, want %q", r.Loyalty, domain.TierNone)
			}
		}
	}
}

func TestSegment_OverflowClustersGetStandard(t *testing.T) {
	// Five clusters but only four labels: the cheapest cluster overflows.
	cluster := stubCluster{fn: func(v []float64) int {
		return int(v[0]) // cluster id = monetary
	}}
	svc := newSegmentation(cluster)

	input := []domain.CustomerFeatures{
		features("c0", 0, 20),
		features("c1", 1, 20),
		features("c2", 2, 20),
		features("c3", 3, 20),
		features("c4", 4, 20),
	}

	rows, tiers, err := svc.Segment(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tiers) != 5 {
		t.Fatalf("expected 5 tiers, got %d", len(tiers))
	}

	wantByRank := []string{"Platinum", "Gold", "Silver", "Bronze", domain.TierStandard}
	for i, tier := range tiers {
		if tier.Loyalty != wantByRank[i] {
			t.Errorf("rank %d label = %q, want %q", i, tier.Loyalty, wantByRank[i])
		}
	}

	// All rows pass the frequency threshold, so the overflow customer
	// keeps the Standard tier and its reward.
	for _, r := range rows {
		if r.CustomerID == "c0" {
			if r.Loyalty != domain.TierStandard {
				t.Errorf("c0 tier = %q, want %q", r.Loyalty, domain.TierStandard)
			}
			if r.AssignedReward != domain.RewardForTier[domain.TierStandard] {
				t.Errorf("c0 reward = %q", r.AssignedReward)
			}
		}
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	svc := newSegmentation(stubCluster{fn: func([]float64) int { return 0 }})

	_, _, err := svc.Segment(context.Background(), nil)
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
