package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/maypok86/otter"
)

const warmupText = "warmup"

// Service caches embeddings in front of an Embedder and tracks whether the
// model has finished loading.
type Service struct {
	embedder Embedder
	cache    otter.Cache[string, []float64]

	mu     sync.RWMutex
	status Status
}

func NewService(embedder Embedder, cacheSize int, ttl time.Duration) (*Service, error) {
	cache, err := otter.MustBuilder[string, []float64](cacheSize).
		CollectStats().
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building embedding cache: %w", err)
	}

	return &Service{
		embedder: embedder,
		cache:    cache,
	}, nil
}

// Warmup loads the model by embedding a short text. Calls while a load is in
// flight or after it succeeded are no-ops; a failed load can be retried.
func (s *Service) Warmup(ctx context.Context) {
	s.mu.Lock()
	if s.status.Loaded || s.status.Loading {
		s.mu.Unlock()
		return
	}
	s.status = Status{Loading: true}
	s.mu.Unlock()

	slog.Info("Loading embedding model...")
	_, err := s.embedder.Embed(ctx, warmupText)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Error("failed to load embedding model", "error", err)
		msg := err.Error()
		s.status = Status{Error: &msg}
		return
	}

	s.status = Status{Loaded: true}
	slog.Info("Embedding model loaded")
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	if !s.Status().Loaded {
		return nil, ErrNotReady
	}

	if emb, ok := s.cache.Get(text); ok {
		return emb, nil
	}

	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.cache.Set(text, emb)
	return emb, nil
}

// MaxSimilarity returns the highest cosine similarity between text and any
// topic. It is -1 when topics is empty.
func (s *Service) MaxSimilarity(ctx context.Context, text string, topics []string) (float64, error) {
	textEmb, err := s.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embedding page text: %w", err)
	}

	best := -1.0
	for _, topic := range topics {
		topicEmb, err := s.Embed(ctx, topic)
		if err != nil {
			return 0, fmt.Errorf("embedding topic %q: %w", topic, err)
		}

		best = math.Max(best, CosineSimilarity(textEmb, topicEmb))
	}

	return best, nil
}

type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Ratio    float64 `json:"ratio"`
	Evicted  int64   `json:"evicted"`
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
}

func (s *Service) CacheStats() CacheStats {
	stats := s.cache.Stats()
	return CacheStats{
		Hits:     stats.Hits(),
		Misses:   stats.Misses(),
		Ratio:    math.Round(10_000*stats.Ratio()) / 100,
		Evicted:  stats.EvictedCount(),
		Size:     s.cache.Size(),
		Capacity: s.cache.Capacity(),
	}
}

func (s *Service) Close() {
	s.cache.Close()
}
