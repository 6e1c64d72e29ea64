package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

// InsightsService covers the per-entity analytics: similar-customer
// product recommendations, lifetime value, pricing suggestions and
// demand forecasts.
type InsightsService struct {
	store   port.DatasetStore
	churn   *ChurnService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewInsightsService wires the insights queries.
func NewInsightsService(store port.DatasetStore, churn *ChurnService, metrics *observability.Metrics, logger *zap.Logger) *InsightsService {
	return &InsightsService{store: store, churn: churn, metrics: metrics, logger: logger}
}

// ============================================================
// Product recommendations
// ============================================================

// RecommendProducts finds the customers most similar to the target
// (Pearson correlation over the customer x product quantity matrix) and
// returns the top-n products they buy that the target does not.
func (s *InsightsService) RecommendProducts(ctx context.Context, datasetID, customerID string, n int) ([]domain.ProductRecommendation, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.RecommendProducts")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if n <= 0 {
		n = 5
	}

	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	matrix, products := quantityMatrix(ds.Transactions)
	target, ok := matrix[customerID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}

	type scored struct {
		id  string
		sim float64
	}
	var neighbors []scored
	for id, row := range matrix {
		if id == customerID {
			continue
		}
		if sim, ok := pearson(target, row, products); ok {
			neighbors = append(neighbors, scored{id: id, sim: sim})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		return neighbors[i].id < neighbors[j].id
	})
	if len(neighbors) > 5 {
		neighbors = neighbors[:5]
	}

	// Aggregate quantities of products the target has never bought.
	scores := make(map[string]float64)
	for _, nb := range neighbors {
		for p, qty := range matrix[nb.id] {
			if qty > 0 && target[p] == 0 {
				scores[p] += qty
			}
		}
	}

	recs := make([]domain.ProductRecommendation, 0, len(scores))
	for p, score := range scores {
		recs = append(recs, domain.ProductRecommendation{ProductID: p, Score: score})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs, nil
}

// ============================================================
// Customer lifetime value
// ============================================================

// CustomerValue estimates CLV for one customer: Monetary scaled by
// monthly purchase frequency, damped by the churn probability.
func (s *InsightsService) CustomerValue(ctx context.Context, datasetID, customerID string, asOf time.Time) (*domain.CustomerValue, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.CustomerValue")
	defer span.End()

	features, err := s.customerFeatures(ctx, datasetID, customerID, asOf)
	if err != nil {
		return nil, err
	}

	churn := s.churn.PredictOne(*features)

	months := float64(features.ActiveDays) / 30.0
	if months < 1 {
		months = 1
	}
	purchaseFrequency := float64(features.Frequency) / months
	future := features.Monetary * (purchaseFrequency / (1 + churn.Probability))

	return &domain.CustomerValue{
		CustomerID:        customerID,
		CurrentValue:      features.Monetary,
		PredictedFuture:   future,
		TotalPredicted:    features.Monetary + future,
		ChurnProbability:  churn.Probability,
		PurchaseFrequency: purchaseFrequency,
	}, nil
}

// ============================================================
// Pricing
// ============================================================

// PricingSuggestion proposes a price using the fixed elasticity
// heuristic: a 10% price cut is assumed to lift demand by 5%.
func (s *InsightsService) PricingSuggestion(ctx context.Context, datasetID, productID string) (*domain.PricingSuggestion, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.PricingSuggestion")
	defer span.End()

	pf, err := s.productFeatures(ctx, datasetID, productID)
	if err != nil {
		return nil, err
	}

	optimal := pf.AvgPricePerUnit * 0.9
	expected := pf.DemandLevel * 1.05

	return &domain.PricingSuggestion{
		ProductID:              productID,
		CurrentPrice:           pf.AvgPricePerUnit,
		OptimalPrice:           optimal,
		ExpectedDemandIncrease: expected - pf.DemandLevel,
	}, nil
}

// ============================================================
// Demand forecast
// ============================================================

// ForecastDemand projects daily demand for a product as the moving
// average of its historical daily sales.
func (s *InsightsService) ForecastDemand(ctx context.Context, datasetID, productID string, days int) (*domain.DemandForecast, error) {
	ctx, span := tracer.Start(ctx, "InsightsService.ForecastDemand")
	defer span.End()

	if days <= 0 {
		days = 30
	}

	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]float64)
	var lastDay time.Time
	found := false
	for _, t := range ds.Transactions {
		if t.ProductID != productID {
			continue
		}
		found = true
		daily[t.PurchaseDate.Format("2006-01-02")] += float64(t.Quantity)
		if t.PurchaseDate.After(lastDay) {
			lastDay = t.PurchaseDate
		}
	}
	if !found {
		return nil, &domain.ErrNotFound{Resource: "product", ID: productID}
	}
	if len(daily) < 2 {
		return nil, &domain.ErrEmptyResult{Stage: "forecast", Message: "not enough data to forecast"}
	}

	total := 0.0
	for _, q := range daily {
		total += q
	}
	avgDaily := total / float64(len(daily))

	dates := make([]string, days)
	demand := make([]float64, days)
	for i := 0; i < days; i++ {
		dates[i] = lastDay.AddDate(0, 0, i+1).Format("2006-01-02")
		demand[i] = avgDaily
	}

	return &domain.DemandForecast{
		ProductID:       productID,
		ForecastDates:   dates,
		PredictedDemand: demand,
		TotalDemand:     avgDaily * float64(days),
		GeneratedAt:     time.Now(),
	}, nil
}

// ============================================================
// Helpers
// ============================================================

func (s *InsightsService) customerFeatures(ctx context.Context, datasetID, customerID string, asOf time.Time) (*domain.CustomerFeatures, error) {
	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	features, err := BuildCustomerFeatures(ds.Transactions, asOf)
	if err != nil {
		return nil, err
	}
	for i := range features {
		if features[i].CustomerID == customerID {
			return &features[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
}

func (s *InsightsService) productFeatures(ctx context.Context, datasetID, productID string) (*domain.ProductFeatures, error) {
	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	pf := domain.ProductFeatures{ProductID: productID}
	customers := make(map[string]bool)
	priceSum := 0.0
	for _, t := range ds.Transactions {
		if t.ProductID != productID {
			continue
		}
		pf.NumTransactions++
		pf.TotalQuantitySold += t.Quantity
		priceSum += t.PricePerUnit
		customers[t.CustomerID] = true
		if pf.FirstSold.IsZero() || t.PurchaseDate.Before(pf.FirstSold) {
			pf.FirstSold = t.PurchaseDate
		}
		if t.PurchaseDate.After(pf.LastSold) {
			pf.LastSold = t.PurchaseDate
		}
	}
	if pf.NumTransactions == 0 {
		return nil, &domain.ErrNotFound{Resource: "product", ID: productID}
	}

	pf.NumCustomers = len(customers)
	pf.AvgPricePerUnit = priceSum / float64(pf.NumTransactions)
	pf.SeasonalityMonth = int(pf.LastSold.Month())

	months := float64(daysBetween(pf.FirstSold, pf.LastSold)) / 30.0
	if months < 1 {
		months = 1
	}
	pf.DemandLevel = float64(pf.TotalQuantitySold) / months
	return &pf, nil
}

// quantityMatrix builds customer -> product -> total quantity.
func quantityMatrix(txns []domain.Transaction) (map[string]map[string]float64, []string) {
	matrix := make(map[string]map[string]float64)
	productSet := make(map[string]bool)
	for _, t := range txns {
		row, ok := matrix[t.CustomerID]
		if !ok {
			row = make(map[string]float64)
			matrix[t.CustomerID] = row
		}
		row[t.ProductID] += float64(t.Quantity)
		productSet[t.ProductID] = true
	}

	products := make([]string, 0, len(productSet))
	for p := range productSet {
		products = append(products, p)
	}
	sort.Strings(products)
	return matrix, products
}

// pearson computes the correlation of two sparse rows over the full
// product axis. Returns false when either row has zero variance.
func pearson(a, b map[string]float64, products []string) (float64, bool) {
	n := float64(len(products))
	if n == 0 {
		return 0, false
	}

	var sumA, sumB float64
	for _, p := range products {
		sumA += a[p]
		sumB += b[p]
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for _, p := range products {
		da, db := a[p]-meanA, b[p]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	return cov / (math.Sqrt(varA) * math.Sqrt(varB)), true
}
