package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/similarity"
)

// clientConfig tells tabs how often to re-check and when to re-show a
// dismissed warning. Durations are in milliseconds.
type clientConfig struct {
	CheckInterval    int64   `json:"checkInterval"`
	RecheckAfter     int64   `json:"recheckAfter"`
	Threshold        float64 `json:"threshold"`
	WarningThreshold float64 `json:"warningThreshold"`
}

func (s *APIService) getConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, clientConfig{
		CheckInterval:    s.Checks.Interval.Milliseconds(),
		RecheckAfter:     s.Checks.RecheckAfter.Milliseconds(),
		Threshold:        relevance.Threshold,
		WarningThreshold: relevance.WarningThreshold,
	})
}

type cacheStatser interface {
	CacheStats() similarity.CacheStats
}

type statusResponse struct {
	similarity.Status
	Cache      *similarity.CacheStats `json:"cache,omitempty"`
	Watchers   int                    `json:"watchers"`
	ScoredTabs int                    `json:"scoredTabs"`
}

func (s *APIService) getStatus(c echo.Context) error {
	resp := statusResponse{
		Status:     s.Similarity.Status(),
		Watchers:   s.Broadcaster.Clients(),
		ScoredTabs: s.Scores.Len(),
	}
	if cs, ok := s.Similarity.(cacheStatser); ok {
		stats := cs.CacheStats()
		resp.Cache = &stats
	}
	return c.JSON(http.StatusOK, resp)
}
