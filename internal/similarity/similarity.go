package similarity

import (
	"context"
	"errors"
	"math"
)

var ErrNotReady = errors.New("embedding model not loaded")

// Provider turns text into a relevance signal against a set of topics.
type Provider interface {
	MaxSimilarity(ctx context.Context, text string, topics []string) (float64, error)
	Status() Status
}

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Status is the model's load state. Error is nil unless the last load failed.
type Status struct {
	Loaded  bool    `json:"loaded"`
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

// CosineSimilarity returns 0 for vectors of different length or zero norm.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
