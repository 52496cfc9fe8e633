package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/similarity"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/topics"
	"github.com/st3v3nmw/focusguard/internal/tracker"
	"github.com/st3v3nmw/focusguard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	sites   sites.Settings
	topics  []topics.Topic
	enabled bool
}

func (f *fakeSettings) SiteSettings(context.Context) (sites.Settings, error) { return f.sites, nil }
func (f *fakeSettings) Topics(context.Context) ([]topics.Topic, error)     { return f.topics, nil }
func (f *fakeSettings) ExtensionEnabled(context.Context) (bool, error)     { return f.enabled, nil }

type fakeProvider struct {
	score float64
	err   error
	calls int
}

func (f *fakeProvider) MaxSimilarity(context.Context, string, []string) (float64, error) {
	f.calls++
	return f.score, f.err
}

func (f *fakeProvider) Status() similarity.Status {
	return similarity.Status{Loaded: f.err == nil}
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestChecker(settings *fakeSettings, provider *fakeProvider) (*Checker, *Scores) {
	scores := NewScores()
	scorer := relevance.NewScorer(provider, time.Second)
	return NewChecker(settings, scorer, scores, clockwork.NewFakeClockAt(now)), scores
}

func defaultSettings() *fakeSettings {
	return &fakeSettings{
		sites:   sites.DefaultSettings(),
		topics:  []topics.Topic{{Text: "physics", Enabled: true}},
		enabled: true,
	}
}

func TestCheckSiteRulesShortCircuit(t *testing.T) {
	settings := defaultSettings()
	settings.sites.AddAllowed("wikipedia.org")
	provider := &fakeProvider{score: 0}
	checker, scores := newTestChecker(settings, provider)
	ctx := context.Background()

	tests := []struct {
		url    string
		action types.Action
		reason string
	}{
		{"https://www.instagram.com/p/1", types.ActionBlock, "instagram.com"},
		{"https://youtube.com/shorts/abc", types.ActionBlock, "youtube.com/shorts"},
		{"https://en.wikipedia.org/wiki/Go", types.ActionWarn, ""},
		{"https://wikipedia.org/wiki/Go", types.ActionAllow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := checker.Check(ctx, 1, relevance.PageContext{URL: tt.url, Title: "page"})
			require.NoError(t, err)
			assert.Equal(t, tt.action, d.Action)
			if tt.action == types.ActionBlock {
				assert.Equal(t, tt.reason, d.Reason)
				assert.Nil(t, d.Score)
			}
		})
	}

	// Only the unlisted subdomain reached the scorer.
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, scores.Len())
}

func TestCheckScoresNeutralPages(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		raw    float64
		title  string
		action types.Action
	}{
		{"below threshold", 0.34, "Cat videos", types.ActionWarn},
		{"at threshold", 0.35, "Cat videos", types.ActionAllow},
		{"keyword bonus", 0.0, "Intro to Physics", types.ActionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, scores := newTestChecker(defaultSettings(), &fakeProvider{score: tt.raw})

			d, err := checker.Check(ctx, 3, relevance.PageContext{URL: "https://example.com/x", Title: tt.title})
			require.NoError(t, err)
			assert.Equal(t, tt.action, d.Action)
			require.NotNil(t, d.Score)
			require.NotNil(t, d.RawScore)
			assert.Equal(t, tt.raw, *d.RawScore)

			snapshot, ok := scores.Current(3)
			require.True(t, ok)
			assert.Equal(t, *d.Score, snapshot.Score)
			assert.Equal(t, now.UnixMilli(), snapshot.Timestamp)
		})
	}
}

func TestCheckFailsOpen(t *testing.T) {
	provider := &fakeProvider{err: similarity.ErrNotReady}
	checker, scores := newTestChecker(defaultSettings(), provider)

	d, err := checker.Check(context.Background(), 2, relevance.PageContext{URL: "https://example.com", Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, types.ActionAllow, d.Action)
	assert.Contains(t, d.Reason, similarity.ErrNotReady.Error())
	assert.Nil(t, d.Score)

	_, ok := scores.Current(2)
	assert.False(t, ok)
}

type blockingProvider struct {
	release chan struct{}
}

func (b *blockingProvider) MaxSimilarity(context.Context, string, []string) (float64, error) {
	<-b.release
	return 0.9, nil
}

func (b *blockingProvider) Status() similarity.Status {
	return similarity.Status{Loaded: true}
}

func TestCheckFailsOpenOnTimeout(t *testing.T) {
	provider := &blockingProvider{release: make(chan struct{})}
	t.Cleanup(func() { close(provider.release) })

	scores := NewScores()
	scorer := relevance.NewScorer(provider, 20*time.Millisecond)
	checker := NewChecker(defaultSettings(), scorer, scores, clockwork.NewFakeClockAt(now))

	d, err := checker.Check(context.Background(), 7, relevance.PageContext{URL: "https://example.com", Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, types.ActionAllow, d.Action)
	assert.Contains(t, d.Reason, context.DeadlineExceeded.Error())
	assert.Nil(t, d.Score)

	_, ok := scores.Current(7)
	assert.False(t, ok)
}

func TestCheckDisabledExtension(t *testing.T) {
	settings := defaultSettings()
	settings.enabled = false
	provider := &fakeProvider{}
	checker, _ := newTestChecker(settings, provider)

	d, err := checker.Check(context.Background(), 1, relevance.PageContext{URL: "https://instagram.com"})
	require.NoError(t, err)
	assert.Equal(t, Decision{Action: types.ActionAllow, Reason: ReasonDisabled}, d)
	assert.Zero(t, provider.calls)
}

func TestCheckWithoutTopicsIsNeutral(t *testing.T) {
	settings := defaultSettings()
	settings.topics = []topics.Topic{{Text: "physics", Enabled: false}}
	provider := &fakeProvider{err: errors.New("unreachable")}
	checker, _ := newTestChecker(settings, provider)

	d, err := checker.Check(context.Background(), 1, relevance.PageContext{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, types.ActionAllow, d.Action)
	require.NotNil(t, d.Score)
	assert.Equal(t, 1.0, *d.Score)
	assert.Zero(t, provider.calls)
}

func TestScoresForget(t *testing.T) {
	scores := NewScores()
	scores.Report(tracker.TabID(4), 0.5, 0.4, now)

	scores.Forget(4)
	_, ok := scores.Current(4)
	assert.False(t, ok)
	scores.Forget(4)
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	fast := b.Subscribe()
	slow := b.Subscribe()
	assert.Equal(t, 2, b.Clients())

	for i := 0; i < 15; i++ {
		b.Broadcast(Event{Type: EventExtensionToggled, Enabled: i%2 == 0})
		<-fast
	}

	// The slow client's buffer filled up and the rest were skipped.
	assert.Len(t, slow, 10)

	b.Unsubscribe(slow)
	b.Unsubscribe(slow)
	assert.Equal(t, 1, b.Clients())

	_, open := <-slow
	for open {
		_, open = <-slow
	}
}
