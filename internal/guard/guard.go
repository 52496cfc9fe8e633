package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/topics"
	"github.com/st3v3nmw/focusguard/internal/tracker"
	"github.com/st3v3nmw/focusguard/internal/types"
)

const ReasonDisabled = "disabled"

// Decision is what a tab should do with the page it is showing.
type Decision struct {
	Action   types.Action `json:"action"`
	Score    *float64     `json:"score,omitempty"`
	RawScore *float64     `json:"rawScore,omitempty"`
	Reason   string       `json:"reason,omitempty"`
}

// Settings is the part of the store a page check reads.
type Settings interface {
	SiteSettings(ctx context.Context) (sites.Settings, error)
	Topics(ctx context.Context) ([]topics.Topic, error)
	ExtensionEnabled(ctx context.Context) (bool, error)
}

type Checker struct {
	settings Settings
	scorer   *relevance.Scorer
	scores   *Scores
	clock    clockwork.Clock
}

func NewChecker(settings Settings, scorer *relevance.Scorer, scores *Scores, clock clockwork.Clock) *Checker {
	return &Checker{settings: settings, scorer: scorer, scores: scores, clock: clock}
}

// Check decides on page for tab. Site rules are consulted first; neutral
// pages are scored. A scoring failure allows the page.
func (c *Checker) Check(ctx context.Context, tab tracker.TabID, page relevance.PageContext) (Decision, error) {
	enabled, err := c.settings.ExtensionEnabled(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("reading extension flag: %w", err)
	}
	if !enabled {
		return Decision{Action: types.ActionAllow, Reason: ReasonDisabled}, nil
	}

	siteSettings, err := c.settings.SiteSettings(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("reading site settings: %w", err)
	}

	verdict := sites.NewEngine(siteSettings).Classify(page.URL)
	switch {
	case verdict.Allowed:
		return Decision{Action: types.ActionAllow, Reason: verdict.Reason}, nil
	case verdict.Blocked:
		return Decision{Action: types.ActionBlock, Reason: verdict.Reason}, nil
	}

	list, err := c.settings.Topics(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("reading topics: %w", err)
	}

	result, err := c.scorer.Score(ctx, page, topics.EnabledTexts(list))
	if err != nil {
		slog.Warn("Relevance check failed, allowing page", "tab", tab, "url", page.URL, "error", err)
		return Decision{Action: types.ActionAllow, Reason: err.Error()}, nil
	}

	c.scores.Report(tab, result.Score, result.RawScore, c.clock.Now())

	action := types.ActionAllow
	if !relevance.IsRelevant(result.Score) {
		action = types.ActionWarn
	}

	return Decision{Action: action, Score: &result.Score, RawScore: &result.RawScore}, nil
}
