package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/mining"
	"github.com/retailpulse/loyalty-analytics-go/internal/port"
)

// BundlingService suggests dead-stock bundles: it mines association rules
// from transaction baskets and keeps rules whose consequents include
// slow-moving products. Deterministic for fixed data and thresholds.
type BundlingService struct {
	store   port.DatasetStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBundlingService wires the bundling recommender.
func NewBundlingService(store port.DatasetStore, metrics *observability.Metrics, logger *zap.Logger) *BundlingService {
	return &BundlingService{store: store, metrics: metrics, logger: logger}
}

// Recommend runs the staged pipeline and answers one product-set query.
// Every stage short-circuits with a stage-specific empty-result error.
func (s *BundlingService) Recommend(ctx context.Context, datasetID string, products []string, params domain.BundlingParams) (*domain.BundleRecommendation, error) {
	ctx, span := tracer.Start(ctx, "BundlingService.Recommend")
	defer span.End()
	span.SetAttributes(
		attribute.String("dataset.id", datasetID),
		attribute.Int("query.products", len(products)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordStageDuration("bundling", time.Since(start))
	}()
	s.metrics.IncrBundleQuery()

	if len(products) == 0 {
		return nil, &domain.ErrValidation{Field: "products", Message: "at least one product required"}
	}

	ds, err := s.store.Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if len(ds.Stock) == 0 {
		return nil, &domain.ErrValidation{Field: "stock", Message: "no stock table uploaded for this dataset"}
	}

	params = params.WithDefaults()

	deadStock := DeadStockItems(ds.Stock, params.DeadStockThreshold)
	baskets := BuildBaskets(ds.Transactions)

	itemsets := mining.Apriori(baskets, params.MinSupport)
	if len(itemsets) == 0 {
		return nil, &domain.ErrEmptyResult{Stage: "itemsets", Message: "no frequent itemsets found"}
	}

	rules := filterRules(mining.GenerateRules(itemsets, params.RuleMetricMinLift), params.MinConfidence, params.MinRuleSupport)
	if len(rules) == 0 {
		return nil, &domain.ErrEmptyResult{Stage: "rules", Message: "no association rules found"}
	}

	deadRules := FilterRulesForDeadStock(rules, deadStock)
	if len(deadRules) == 0 {
		return nil, &domain.ErrEmptyResult{Stage: "dead_stock", Message: "no bundling rules involve dead stock"}
	}

	best := BestPerAntecedent(deadRules)

	recommended := lookupConsequents(best, products)
	if len(recommended) == 0 {
		return nil, &domain.ErrEmptyResult{
			Stage:   "lookup",
			Message: "no matching bundle recommendations found for: " + strings.Join(products, ", "),
		}
	}

	s.logger.Debug("bundle recommendation",
		zap.Strings("input", products),
		zap.Strings("recommended", recommended),
	)
	return &domain.BundleRecommendation{
		InputProducts:       products,
		RecommendedProducts: recommended,
	}, nil
}

// DeadStockItems returns product names whose sold ratio is below the
// threshold.
func DeadStockItems(stock []domain.StockRecord, threshold float64) map[string]bool {
	dead := make(map[string]bool)
	for _, s := range stock {
		if s.SoldRatio() < threshold {
			dead[s.ProductName] = true
		}
	}
	return dead
}

// BuildBaskets groups transactions by transaction id and collects the
// distinct product names per basket.
func BuildBaskets(txns []domain.Transaction) [][]string {
	byTxn := make(map[string]map[string]bool)
	order := make([]string, 0)
	for _, t := range txns {
		set, ok := byTxn[t.TransactionID]
		if !ok {
			set = make(map[string]bool)
			byTxn[t.TransactionID] = set
			order = append(order, t.TransactionID)
		}
		set[t.ProductName] = true
	}

	sort.Strings(order)
	baskets := make([][]string, 0, len(order))
	for _, id := range order {
		items := make([]string, 0, len(byTxn[id]))
		for p := range byTxn[id] {
			items = append(items, p)
		}
		sort.Strings(items)
		baskets = append(baskets, items)
	}
	return baskets
}

// filterRules applies the confidence/support floor and orders rules by
// confidence descending.
func filterRules(rules []mining.Rule, minConfidence, minSupport float64) []mining.Rule {
	out := rules[:0:0]
	for _, r := range rules {
		if r.Confidence >= minConfidence && r.Support >= minSupport {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// FilterRulesForDeadStock keeps rules whose consequents intersect the
// dead-stock set, trimming consequents to that intersection.
func FilterRulesForDeadStock(rules []mining.Rule, deadStock map[string]bool) []mining.Rule {
	var out []mining.Rule
	for _, r := range rules {
		var kept []string
		for _, c := range r.Consequents {
			if deadStock[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			continue
		}
		r.Consequents = kept
		out = append(out, r)
	}
	return out
}

// BestPerAntecedent keeps, for each distinct antecedent set, only the
// rule with the highest confidence.
func BestPerAntecedent(rules []mining.Rule) []mining.Rule {
	best := make(map[string]mining.Rule)
	var keys []string
	for _, r := range rules {
		key := mining.AntecedentKey(r.Antecedents)
		cur, ok := best[key]
		if !ok {
			keys = append(keys, key)
			best[key] = r
			continue
		}
		if r.Confidence > cur.Confidence {
			best[key] = r
		}
	}

	sort.Strings(keys)
	out := make([]mining.Rule, 0, len(keys))
	for _, k := range keys {
		out = append(out, best[k])
	}
	return out
}

// lookupConsequents finds rules whose antecedent set equals the query set
// (unordered) and unions their consequents.
func lookupConsequents(rules []mining.Rule, products []string) []string {
	query := mining.AntecedentKey(products)
	union := make(map[string]bool)
	for _, r := range rules {
		if mining.AntecedentKey(r.Antecedents) != query {
			continue
		}
		for _, c := range r.Consequents {
			union[c] = true
		}
	}

	out := make([]string, 0, len(union))
	for c := range union {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
