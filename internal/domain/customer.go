package domain

import "time"

// ============================================================
// Customer feature engineering
// ============================================================

// CustomerFeatures is the per-customer aggregate row derived from raw
// transactions. Exactly one row exists per distinct customer id.
type CustomerFeatures struct {
	CustomerID          string    `json:"customer_id"`
	Mobile              string    `json:"mobile"`
	Monetary            float64   `json:"monetary"`
	Frequency           int       `json:"frequency"`
	TotalQuantity       int       `json:"total_quantity"`
	NumUniqueProducts   int       `json:"num_unique_products"`
	LastPurchaseDate    time.Time `json:"last_purchase_date"`
	AvgPricePerUnit     float64   `json:"avg_price_per_unit"`
	StoreVisitFrequency int       `json:"store_visit_frequency"`
	MembershipStartDate time.Time `json:"membership_start_date"`
	ActiveDays          int       `json:"active_days"`
	AvgPurchaseGapDays  float64   `json:"avg_purchase_gap_days"`
	Recency             int       `json:"recency"`
}

// SegmentFeatureVector returns the fixed ordered vector consumed by the
// clustering scaler+model. Order matters: the artifacts were trained on it.
func (c CustomerFeatures) SegmentFeatureVector() []float64 {
	return []float64{
		c.Monetary,
		float64(c.Frequency),
		float64(c.Recency),
		float64(c.ActiveDays),
		float64(c.TotalQuantity),
		c.AvgPricePerUnit,
		float64(c.StoreVisitFrequency),
		c.AvgPurchaseGapDays,
	}
}

// ChurnFeatureVector returns the ordered vector consumed by the churn
// scaler+classifier.
func (c CustomerFeatures) ChurnFeatureVector() []float64 {
	return []float64{
		c.Monetary,
		float64(c.Frequency),
		c.AvgPurchaseGapDays,
		float64(c.Recency),
	}
}

// SegmentedCustomer is a feature row annotated with its cluster, loyalty
// tier, reward and reward-policy message.
type SegmentedCustomer struct {
	CustomerFeatures
	Cluster         int    `json:"cluster"`
	Loyalty         string `json:"loyalty"`
	AssignedReward  string `json:"assigned_reward"`
	ProgressMessage string `json:"progress_message"`
}

// AnalyzedCustomer is the full augmented output row: segmentation merged
// with churn prediction.
type AnalyzedCustomer struct {
	SegmentedCustomer
	ChurnPrediction       int     `json:"churn_prediction"`
	PredictionProbability float64 `json:"prediction_probability"`
	RiskLevel             string  `json:"risk_level"`
}

// ChurnResult is the churn prediction for one customer.
type ChurnResult struct {
	CustomerID  string  `json:"customer_id"`
	Prediction  int     `json:"churn_prediction"`
	Probability float64 `json:"prediction_probability"`
	RiskLevel   string  `json:"risk_level"`
}

// Churn risk levels derived from the predicted probability.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// RiskLevelFor maps a churn probability to its risk label.
func RiskLevelFor(p float64) string {
	switch {
	case p > 0.7:
		return RiskHigh
	case p > 0.3:
		return RiskMedium
	default:
		return RiskLow
	}
}
