package relevance

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/st3v3nmw/focusguard/internal/similarity"
	"github.com/st3v3nmw/focusguard/internal/topics"
	"github.com/st3v3nmw/focusguard/internal/types"
)

const (
	Threshold        = 0.35
	WarningThreshold = 0.2

	KeywordBonus       = 0.5
	EducationBonus     = 0.3
	DistractionPenalty = 0.2
	FeedHomePenalty    = 0.15

	DefaultTimeout = 10 * time.Second
)

var (
	educationalGenres = []string{
		"Education", "Science & Technology", "Howto & Style",
		"教育", "科学と技術", "ハウツーとスタイル",
	}

	distractionDomains = []string{
		"twitter.com", "x.com", "facebook.com", "instagram.com", "tiktok.com",
		"netflix.com", "primevideo.com", "hulu.com", "nicovideo.jp",
	}

	feedDomains = []string{"twitter.com", "x.com"}
)

type Result struct {
	Score    float64 `json:"score"`
	RawScore float64 `json:"rawScore"`
}

type Scorer struct {
	provider similarity.Provider
	timeout  time.Duration
}

func NewScorer(provider similarity.Provider, timeout time.Duration) *Scorer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scorer{provider: provider, timeout: timeout}
}

// Score rates page against the user's topics. topics are the enabled,
// user-declared topics; synonyms are added here.
func (s *Scorer) Score(ctx context.Context, page PageContext, userTopics []string) (Result, error) {
	expanded := topics.Expand(userTopics)
	if len(expanded) == 0 {
		return Result{Score: 1, RawScore: 1}, nil
	}

	text := page.Text()

	raw, err := s.similarity(ctx, text, expanded)
	if err != nil {
		return Result{}, fmt.Errorf("scoring relevance: %w", err)
	}

	return Result{
		Score:    raw + adjustment(page, text, userTopics),
		RawScore: raw,
	}, nil
}

type similarityResult struct {
	raw float64
	err error
}

// similarity returns once the provider answers or the timeout expires,
// whichever comes first. A late answer is discarded.
func (s *Scorer) similarity(ctx context.Context, text string, expanded []string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan similarityResult, 1)
	go func() {
		raw, err := s.provider.MaxSimilarity(ctx, text, expanded)
		done <- similarityResult{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		return res.raw, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func adjustment(page PageContext, text string, userTopics []string) float64 {
	var delta float64

	lowered := strings.ToLower(text)
	if slices.ContainsFunc(userTopics, func(t string) bool {
		return t != "" && strings.Contains(lowered, strings.ToLower(t))
	}) {
		delta += KeywordBonus
	}

	if slices.Contains(educationalGenres, page.Genre) {
		delta += EducationBonus
	}

	u, err := url.Parse(page.URL)
	if err != nil {
		return delta
	}
	host := strings.ToLower(u.Hostname())

	if hostIn(host, distractionDomains) {
		delta -= DistractionPenalty
	}

	if hostIn(host, feedDomains) && (u.Path == "" || u.Path == "/" || u.Path == "/home") {
		delta -= FeedHomePenalty
	}

	return delta
}

// hostIn reports whether host is one of domains or a subdomain of one.
func hostIn(host string, domains []string) bool {
	if host == "" {
		return false
	}
	return slices.ContainsFunc(domains, func(d string) bool {
		return host == d || strings.HasSuffix(host, "."+d)
	})
}

// IsRelevant is false strictly below the threshold.
func IsRelevant(score float64) bool {
	return score >= Threshold
}

func Level(score float64) types.ScoreLevel {
	switch {
	case score >= Threshold:
		return types.ScoreLevelOK
	case score >= WarningThreshold:
		return types.ScoreLevelWarning
	default:
		return types.ScoreLevelBlock
	}
}
