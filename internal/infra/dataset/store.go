package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/cache"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
)

// Store keeps uploaded datasets in a TTL cache keyed by id. Expired
// datasets read as not-found, which maps to 404 at the edge.
type Store struct {
	cache   *cache.InMemory[*domain.Dataset]
	metrics *observability.Metrics
}

// NewStore creates a dataset store whose entries live for ttl.
func NewStore(ttl time.Duration, metrics *observability.Metrics) *Store {
	return &Store{
		cache:   cache.New[*domain.Dataset](ttl),
		metrics: metrics,
	}
}

// Put stores a dataset under its id.
func (s *Store) Put(_ context.Context, ds *domain.Dataset) error {
	if ds.ID == "" {
		return &domain.ErrValidation{Field: "dataset_id", Message: "required"}
	}
	s.cache.Set(ds.ID, ds)
	return nil
}

// Get fetches a dataset by id.
func (s *Store) Get(_ context.Context, id string) (*domain.Dataset, error) {
	ds, ok := s.cache.Get(id)
	if !ok {
		s.metrics.IncrCacheMiss("dataset")
		return nil, &domain.ErrNotFound{Resource: "dataset", ID: id}
	}
	s.metrics.IncrCacheHit("dataset")
	return ds, nil
}

// AttachStock adds a stock table to an existing dataset.
func (s *Store) AttachStock(ctx context.Context, id string, stock []domain.StockRecord) error {
	ds, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ds.Stock = stock
	s.cache.Set(id, ds)
	return nil
}

// ============================================================
// Export artifacts
// ============================================================

// Exporter writes the augmented per-customer table to a per-dataset CSV
// path. One file per dataset id, so concurrent analyses never share a file.
type Exporter struct {
	dir string
}

// NewExporter creates the export directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

var exportHeader = []string{
	"customer_id", "mobile", "monetary", "frequency", "total_quantity",
	"num_unique_products", "last_purchase_date", "avg_price_per_unit",
	"store_visit_frequency", "membership_start_date", "active_days",
	"avg_purchase_gap_days", "recency", "cluster", "loyalty",
	"assigned_reward", "progress_message", "churn_prediction",
	"prediction_probability", "risk_level",
}

// WriteAnalysis persists the analysis table and returns the file path.
func (e *Exporter) WriteAnalysis(_ context.Context, datasetID string, rows []domain.AnalyzedCustomer) (string, error) {
	path := e.pathFor(datasetID)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		rec := []string{
			r.CustomerID,
			r.Mobile,
			strconv.FormatFloat(r.Monetary, 'f', 2, 64),
			strconv.Itoa(r.Frequency),
			strconv.Itoa(r.TotalQuantity),
			strconv.Itoa(r.NumUniqueProducts),
			r.LastPurchaseDate.Format("2006-01-02"),
			strconv.FormatFloat(r.AvgPricePerUnit, 'f', 2, 64),
			strconv.Itoa(r.StoreVisitFrequency),
			r.MembershipStartDate.Format("2006-01-02"),
			strconv.Itoa(r.ActiveDays),
			strconv.FormatFloat(r.AvgPurchaseGapDays, 'f', 2, 64),
			strconv.Itoa(r.Recency),
			strconv.Itoa(r.Cluster),
			r.Loyalty,
			r.AssignedReward,
			r.ProgressMessage,
			strconv.Itoa(r.ChurnPrediction),
			strconv.FormatFloat(r.PredictionProbability, 'f', 4, 64),
			r.RiskLevel,
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// OpenAnalysis returns the export path for a dataset, or not-found if no
// analysis has been run for it.
func (e *Exporter) OpenAnalysis(_ context.Context, datasetID string) (string, error) {
	path := e.pathFor(datasetID)
	if _, err := os.Stat(path); err != nil {
		return "", &domain.ErrNotFound{Resource: "analysis export", ID: datasetID}
	}
	return path, nil
}

func (e *Exporter) pathFor(datasetID string) string {
	return filepath.Join(e.dir, fmt.Sprintf("analysis_%s.csv", datasetID))
}
