// Package model loads pre-trained artifacts (scalers, clustering model,
// churn classifier) from JSON files and applies them. No training happens
// here: artifacts are produced offline and treated as read-only shared
// state for the lifetime of the process.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// StandardScaler applies (x - mean) / scale per feature.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadStandardScaler reads a scaler artifact from a JSON file.
func LoadStandardScaler(path string) (*StandardScaler, error) {
	var s StandardScaler
	if err := readArtifact(path, &s); err != nil {
		return nil, err
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler %s: mean/scale length mismatch", path)
	}
	return &s, nil
}

// Transform scales a raw feature vector. Vectors shorter than the fitted
// dimension are passed through untouched beyond the fitted columns.
func (s *StandardScaler) Transform(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, v := range features {
		if i < len(s.Mean) && s.Scale[i] != 0 {
			out[i] = (v - s.Mean[i]) / s.Scale[i]
		} else {
			out[i] = v
		}
	}
	return out
}

// KMeans is a fitted clustering model: predict returns the index of the
// nearest centroid in scaled feature space.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

// LoadKMeans reads a clustering artifact from a JSON file.
func LoadKMeans(path string) (*KMeans, error) {
	var m KMeans
	if err := readArtifact(path, &m); err != nil {
		return nil, err
	}
	if len(m.Centroids) == 0 {
		return nil, fmt.Errorf("kmeans %s: no centroids", path)
	}
	return &m, nil
}

// Predict returns the cluster id (centroid index) for a scaled vector.
func (m *KMeans) Predict(scaled []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range m.Centroids {
		d := 0.0
		for j := range c {
			if j >= len(scaled) {
				break
			}
			diff := scaled[j] - c[j]
			d += diff * diff
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// NumClusters reports how many centroids the model carries.
func (m *KMeans) NumClusters() int {
	return len(m.Centroids)
}

// MLP is a small fitted feed-forward classifier: dense layers with ReLU
// activations and a sigmoid output, applied as-is.
type MLP struct {
	Layers []DenseLayer `json:"layers"`
}

// DenseLayer holds one layer's weights (rows = inputs, cols = outputs).
type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // relu or sigmoid
}

// LoadMLP reads a classifier artifact from a JSON file.
func LoadMLP(path string) (*MLP, error) {
	var m MLP
	if err := readArtifact(path, &m); err != nil {
		return nil, err
	}
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("mlp %s: no layers", path)
	}
	return &m, nil
}

// PredictProba runs the forward pass and returns the first output unit,
// a probability in [0,1].
func (m *MLP) PredictProba(scaled []float64) float64 {
	x := scaled
	for _, layer := range m.Layers {
		x = layer.apply(x)
	}
	if len(x) == 0 {
		return 0
	}
	return x[0]
}

func (l DenseLayer) apply(in []float64) []float64 {
	out := make([]float64, len(l.Biases))
	copy(out, l.Biases)
	for i, row := range l.Weights {
		if i >= len(in) {
			break
		}
		for j, w := range row {
			if j < len(out) {
				out[j] += in[i] * w
			}
		}
	}
	switch l.Activation {
	case "relu":
		for j, v := range out {
			if v < 0 {
				out[j] = 0
			}
		}
	case "sigmoid":
		for j, v := range out {
			out[j] = 1 / (1 + math.Exp(-v))
		}
	}
	return out
}

func readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return nil
}
