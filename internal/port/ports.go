// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
)

// FeatureScaler transforms a raw feature vector into the scaled space the
// pre-trained models were fitted on.
type FeatureScaler interface {
	Transform(features []float64) []float64
}

// ClusterModel maps a scaled feature vector to a cluster id.
// Implementations are pre-trained artifacts loaded at startup and treated
// as read-only for the lifetime of the process.
type ClusterModel interface {
	Predict(scaled []float64) int
}

// ChurnModel maps a scaled feature vector to a churn probability in [0,1].
type ChurnModel interface {
	PredictProba(scaled []float64) float64
}

// SMSSender delivers one text message to one recipient.
type SMSSender interface {
	Send(ctx context.Context, toNumber, message string) error
}

// DatasetStore holds uploaded datasets per session, keyed by id.
// No process-wide "current dataset" exists; every pipeline call resolves
// its dataset explicitly through this port.
type DatasetStore interface {
	Put(ctx context.Context, ds *domain.Dataset) error
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	AttachStock(ctx context.Context, id string, stock []domain.StockRecord) error
}

// ExportStore persists the augmented per-customer table for download.
// Paths are per-dataset so concurrent requests never race on one file.
type ExportStore interface {
	WriteAnalysis(ctx context.Context, datasetID string, rows []domain.AnalyzedCustomer) (path string, err error)
	OpenAnalysis(ctx context.Context, datasetID string) (path string, err error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
