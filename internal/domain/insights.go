package domain

import "time"

// ============================================================
// Product insights
// ============================================================

// ProductFeatures is the per-product aggregate row.
type ProductFeatures struct {
	ProductID         string    `json:"product_id"`
	TotalQuantitySold int       `json:"total_quantity_sold"`
	AvgPricePerUnit   float64   `json:"avg_price_per_unit"`
	NumCustomers      int       `json:"num_customers"`
	FirstSold         time.Time `json:"first_sold"`
	LastSold          time.Time `json:"last_sold"`
	NumTransactions   int       `json:"num_transactions"`
	DemandLevel       float64   `json:"demand_level"`
	SeasonalityMonth  int       `json:"seasonality_month"`
}

// ProductRecommendation is one recommended product with its score
// (aggregate quantity bought by similar customers).
type ProductRecommendation struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// CustomerValue is the lifetime-value estimate for one customer.
type CustomerValue struct {
	CustomerID        string  `json:"customer_id"`
	CurrentValue      float64 `json:"current_value"`
	PredictedFuture   float64 `json:"predicted_future_value"`
	TotalPredicted    float64 `json:"total_predicted_value"`
	ChurnProbability  float64 `json:"churn_probability"`
	PurchaseFrequency float64 `json:"purchase_frequency"`
}

// PricingSuggestion is a simple elasticity-based price proposal.
type PricingSuggestion struct {
	ProductID              string  `json:"product_id"`
	CurrentPrice           float64 `json:"current_price"`
	OptimalPrice           float64 `json:"optimal_price"`
	ExpectedDemandIncrease float64 `json:"expected_demand_increase"`
}

// DemandForecast is a moving-average demand projection for one product.
type DemandForecast struct {
	ProductID       string    `json:"product_id"`
	ForecastDates   []string  `json:"forecast_dates"`
	PredictedDemand []float64 `json:"predicted_demand"`
	TotalDemand     float64   `json:"total_forecasted_demand"`
	GeneratedAt     time.Time `json:"generated_at"`
}
