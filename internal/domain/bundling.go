package domain

// ============================================================
// Dead-stock bundling
// ============================================================

// AssociationRule is one mined rule with its strength metrics.
// Antecedents and Consequents are sets of product names.
type AssociationRule struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Support     float64  `json:"support"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
}

// BundlingParams are the caller-overridable thresholds for the bundling
// pipeline. Zero values fall back to the defaults below.
type BundlingParams struct {
	DeadStockThreshold float64 `json:"dead_stock_threshold"`
	MinSupport         float64 `json:"min_support"`
	RuleMetricMinLift  float64 `json:"min_lift"`
	MinConfidence      float64 `json:"min_confidence"`
	MinRuleSupport     float64 `json:"min_rule_support"`
}

// Public defaults for the bundling thresholds.
const (
	DefaultDeadStockThreshold = 0.6
	DefaultMinSupport         = 0.1
	DefaultMinLift            = 1.0
	DefaultMinConfidence      = 0.05
	DefaultMinRuleSupport     = 0.05
)

// WithDefaults fills unset thresholds with the public defaults.
func (p BundlingParams) WithDefaults() BundlingParams {
	if p.DeadStockThreshold <= 0 {
		p.DeadStockThreshold = DefaultDeadStockThreshold
	}
	if p.MinSupport <= 0 {
		p.MinSupport = DefaultMinSupport
	}
	if p.RuleMetricMinLift <= 0 {
		p.RuleMetricMinLift = DefaultMinLift
	}
	if p.MinConfidence <= 0 {
		p.MinConfidence = DefaultMinConfidence
	}
	if p.MinRuleSupport <= 0 {
		p.MinRuleSupport = DefaultMinRuleSupport
	}
	return p
}

// BundleRecommendation is the result of a bundle lookup for a product set.
type BundleRecommendation struct {
	InputProducts       []string `json:"input_products"`
	RecommendedProducts []string `json:"recommended_products"`
}
