package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"go.uber.org/zap"
)

func newInsights(t *testing.T, ds *domain.Dataset, churnProb float64) *service.InsightsService {
	t.Helper()
	metrics := observability.NewMetrics()
	churn := service.NewChurnService(identityScaler{}, stubChurn{p: churnProb}, metrics, zap.NewNop())
	return service.NewInsightsService(storeWith(t, ds), churn, metrics, zap.NewNop())
}

// Three customers over three products: c1 and c2 share the same buying
// pattern on p1/p2, and c2 additionally buys p3.
func insightsDataset() *domain.Dataset {
	return &domain.Dataset{
		ID: "ds1",
		Transactions: []domain.Transaction{
			txn("t1", "c1", "p1", "2025-01-01", 3, 10, 30),
			txn("t2", "c1", "p2", "2025-01-02", 1, 20, 20),
			txn("t3", "c2", "p1", "2025-01-01", 3, 10, 30),
			txn("t4", "c2", "p2", "2025-01-03", 1, 20, 20),
			txn("t5", "c2", "p3", "2025-01-05", 2, 5, 10),
			txn("t6", "c3", "p2", "2025-01-02", 5, 20, 100),
		},
		UploadedAt: day("2025-01-10"),
	}
}

func TestRecommendProducts_ExcludesOwned(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	recs, err := svc.RecommendProducts(context.Background(), "ds1", "c1", 5)
	if err != nil {
		t.Fatalf("expected recommendations, got %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d: %+v", len(recs), recs)
	}
	if recs[0].ProductID != "p3" {
		t.Errorf("recommended %q, want p3", recs[0].ProductID)
	}
	if recs[0].Score != 2 {
		t.Errorf("score = %v, want 2 (neighbor quantity)", recs[0].Score)
	}
}

func TestRecommendProducts_LimitApplied(t *testing.T) {
	ds := insightsDataset()
	// c2 also buys p4, so c1 has two candidate products.
	ds.Transactions = append(ds.Transactions, txn("t7", "c2", "p4", "2025-01-06", 9, 1, 9))
	svc := newInsights(t, ds, 0.2)

	recs, err := svc.RecommendProducts(context.Background(), "ds1", "c1", 1)
	if err != nil {
		t.Fatalf("expected recommendations, got %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(recs))
	}
	if recs[0].ProductID != "p4" {
		t.Errorf("kept %q, want highest-scoring p4", recs[0].ProductID)
	}
}

func TestRecommendProducts_UnknownCustomer(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	_, err := svc.RecommendProducts(context.Background(), "ds1", "ghost", 5)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerValue(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.5)

	cv, err := svc.CustomerValue(context.Background(), "ds1", "c2", day("2025-01-10"))
	if err != nil {
		t.Fatalf("expected value, got %v", err)
	}

	// c2: monetary 60 over 3 purchases in under a month, so the monthly
	// frequency clamps to 3 and churn halves the naive projection.
	if cv.CurrentValue != 60 {
		t.Errorf("current value = %v, want 60", cv.CurrentValue)
	}
	wantFuture := 60 * (3.0 / 1.5)
	if math.Abs(cv.PredictedFuture-wantFuture) > 1e-9 {
		t.Errorf("predicted future = %v, want %v", cv.PredictedFuture, wantFuture)
	}
	if math.Abs(cv.TotalPredicted-(60+wantFuture)) > 1e-9 {
		t.Errorf("total predicted = %v, want %v", cv.TotalPredicted, 60+wantFuture)
	}
	if cv.ChurnProbability != 0.5 {
		t.Errorf("churn probability = %v, want 0.5", cv.ChurnProbability)
	}
}

func TestCustomerValue_UnknownCustomer(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.5)

	_, err := svc.CustomerValue(context.Background(), "ds1", "ghost", day("2025-01-10"))
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPricingSuggestion(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	ps, err := svc.PricingSuggestion(context.Background(), "ds1", "p2")
	if err != nil {
		t.Fatalf("expected suggestion, got %v", err)
	}
	if ps.CurrentPrice != 20 {
		t.Errorf("current price = %v, want 20", ps.CurrentPrice)
	}
	if math.Abs(ps.OptimalPrice-18) > 1e-9 {
		t.Errorf("optimal price = %v, want 18", ps.OptimalPrice)
	}
	// p2 sold 7 units inside one month, so demand level is 7 and the
	// elasticity heuristic adds 5%.
	if math.Abs(ps.ExpectedDemandIncrease-0.35) > 1e-9 {
		t.Errorf("demand increase = %v, want 0.35", ps.ExpectedDemandIncrease)
	}
}

func TestPricingSuggestion_UnknownProduct(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	_, err := svc.PricingSuggestion(context.Background(), "ds1", "ghost")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForecastDemand(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	fc, err := svc.ForecastDemand(context.Background(), "ds1", "p2", 7)
	if err != nil {
		t.Fatalf("expected forecast, got %v", err)
	}
	if len(fc.ForecastDates) != 7 || len(fc.PredictedDemand) != 7 {
		t.Fatalf("expected 7 forecast days, got %d/%d", len(fc.ForecastDates), len(fc.PredictedDemand))
	}
	// p2 sold on 2025-01-02 (1+5) and 2025-01-03 (1): 3.5/day average.
	if fc.PredictedDemand[0] != 3.5 {
		t.Errorf("daily demand = %v, want 3.5", fc.PredictedDemand[0])
	}
	if fc.ForecastDates[0] != "2025-01-04" {
		t.Errorf("first forecast day = %q, want 2025-01-04", fc.ForecastDates[0])
	}
	if math.Abs(fc.TotalDemand-24.5) > 1e-9 {
		t.Errorf("total demand = %v, want 24.5", fc.TotalDemand)
	}
}

func TestForecastDemand_SingleDayHistory(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	// p3 only ever sold on one day.
	_, err := svc.ForecastDemand(context.Background(), "ds1", "p3", 7)
	var empty *domain.ErrEmptyResult
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestForecastDemand_UnknownProduct(t *testing.T) {
	svc := newInsights(t, insightsDataset(), 0.2)

	_, err := svc.ForecastDemand(context.Background(), "ds1", "ghost", 7)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
