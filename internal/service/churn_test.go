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

func newChurn(p float64) *service.ChurnService {
	return service.NewChurnService(identityScaler{}, stubChurn{p: p}, observability.NewMetrics(), zap.NewNop())
}

func TestChurnPredict_LabelAndRisk(t *testing.T) {
	cases := []struct {
		p         float64
		wantLabel int
		wantLevel string
	}{
		{0.1, 0, domain.RiskLow},
		{0.3, 0, domain.RiskLow},
		{0.5, 0, domain.RiskMedium},
		{0.7, 1, domain.RiskMedium},
		{0.9, 1, domain.RiskHigh},
	}

	for _, tc := range cases {
		svc := newChurn(tc.p)
		results, err := svc.Predict(context.Background(), []domain.CustomerFeatures{
			{CustomerID: "c1"},
		})
		if err != nil {
			t.Fatalf("p=%v: expected no error, got %v", tc.p, err)
		}
		got := results[0]
		if got.Prediction != tc.wantLabel {
			t.Errorf("p=%v: label = %d, want %d", tc.p, got.Prediction, tc.wantLabel)
		}
		if got.RiskLevel != tc.wantLevel {
			t.Errorf("p=%v: risk = %q, want %q", tc.p, got.RiskLevel, tc.wantLevel)
		}
	}
}

func TestChurnPredict_OneResultPerRow(t *testing.T) {
	svc := newChurn(0.8)
	results, err := svc.Predict(context.Background(), []domain.CustomerFeatures{
		{CustomerID: "c1"},
		{CustomerID: "c2"},
		{CustomerID: "c3"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"c1", "c2", "c3"} {
		if results[i].CustomerID != id {
			t.Errorf("results[%d] customer = %q, want %q", i, results[i].CustomerID, id)
		}
	}
}

func TestChurnPredict_EmptyInput(t *testing.T) {
	svc := newChurn(0.5)
	_, err := svc.Predict(context.Background(), nil)
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestChurnPredictOne(t *testing.T) {
	svc := newChurn(0.72)
	got := svc.PredictOne(domain.CustomerFeatures{CustomerID: "c9"})
	if got.Prediction != 1 || got.RiskLevel != domain.RiskHigh {
		t.Errorf("result = %+v, want churning High", got)
	}
}
