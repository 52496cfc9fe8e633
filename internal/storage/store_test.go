package storage

import (
	"context"
	"testing"
	"time"

	"github.com/st3v3nmw/focusguard/internal/models"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/topics"
	"github.com/st3v3nmw/focusguard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", Defaults{Sites: sites.DefaultSettings()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTopics_MigratesLegacyAndWritesBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.put(ctx, KeyTopics, []any{"math", map[string]any{"topic": "英語", "enabled": false}}))

	list, err := store.Topics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []topics.Topic{{Text: "math", Enabled: true}, {Text: "英語", Enabled: false}}, list)

	raw, err := store.getRaw(ctx, KeyTopics)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"math","enabled":true},{"text":"英語","enabled":false}]`, string(raw))
}

func TestUpdateTopics(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UpdateTopics(ctx, func(list []topics.Topic) ([]topics.Topic, bool) {
		return topics.Add(list, "math")
	})
	require.NoError(t, err)

	list, err := store.Topics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []topics.Topic{{Text: "math", Enabled: true}}, list)
}

func TestSiteSettings_DefaultsAndMerge(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	settings, err := store.SiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, sites.DefaultSettings(), settings)

	// a partial document keeps defaults for missing fields
	require.NoError(t, store.put(ctx, KeySiteSettings, map[string]any{"allowlist": []string{"example.com"}}))
	settings, err = store.SiteSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, settings.Allowlist)
	assert.Equal(t, sites.DefaultSettings().Blocklist, settings.Blocklist)

	settings, err = store.UpdateSiteSettings(ctx, func(s *sites.Settings) bool {
		return s.AddBlocked("reddit.com")
	})
	require.NoError(t, err)
	assert.Contains(t, settings.Blocklist, "reddit.com")
}

func TestRecordingSettings(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	settings, err := store.RecordingSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRecordingSettings(), settings)

	saved, err := store.SetRecordingSettings(ctx, models.RecordingSettings{
		Enabled:            true,
		RecordBrowsingTime: true,
		RecordSnsTimeOnly:  true,
	})
	require.NoError(t, err)
	assert.False(t, saved.RecordSnsTimeOnly)
	assert.Equal(t, types.TimezoneAuto, saved.TimezoneMode)

	// stored values written before normalization existed are fixed on read
	require.NoError(t, store.put(ctx, KeyRecordingSettings, map[string]any{
		"enabled": true, "recordBrowsingTime": true, "recordSnsTimeOnly": true,
	}))
	settings, err = store.RecordingSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.False(t, settings.RecordSnsTimeOnly)
}

func TestFlags(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enabled, err := store.ExtensionEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, store.SetExtensionEnabled(ctx, false))
	enabled, err = store.ExtensionEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	lang, err := store.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ja", lang)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.AppendBrowsingSessions(ctx,
		models.NewBrowsingSession("a.com", start, start.Add(time.Minute), false)))
	require.NoError(t, store.AppendBrowsingSessions(ctx,
		models.NewBrowsingSession("b.com", start.Add(time.Hour), start.Add(2*time.Hour), true)))
	require.NoError(t, store.AppendPatienceEvents(ctx, models.NewPatienceEvent("c.com", start)))

	sessions, err := store.BrowsingSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, store.ReplaceStats(ctx, sessions[:1], nil))
	sessions, err = store.BrowsingSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	events, err := store.PatienceEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, store.DeleteStats(ctx))
	sessions, err = store.BrowsingSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestOptimize(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetLanguage(ctx, "en"))
	require.NoError(t, store.Optimize(ctx))

	lang, err := store.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}
