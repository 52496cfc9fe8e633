package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(8765), cfg.API.Port)
	assert.Equal(t, "paraphrase-multilingual", cfg.Similarity.Model)
	assert.Equal(t, 10*time.Second, cfg.Similarity.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Tracker.FlushInterval)
	assert.Equal(t, 30*time.Second, cfg.Checks.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Checks.RecheckAfter)
	assert.Equal(t, sites.DefaultSettings(), cfg.Sites.Settings())
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
api:
  port: 9000
timezone: Asia/Tokyo
similarity:
  model: nomic-embed-text
tracker:
  flush_interval: 10s
sites:
  allowlist: [golang.org]
  blocklist: []
  blocked_patterns:
    - domain: reddit.com
      path_pattern: /r/all
`))
	require.NoError(t, err)

	assert.Equal(t, uint16(9000), cfg.API.Port)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "nomic-embed-text", cfg.Similarity.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Similarity.Host)
	assert.Equal(t, 10*time.Second, cfg.Tracker.FlushInterval)
	assert.Equal(t, 5*time.Second, cfg.Stats.WriteInterval)

	settings := cfg.Sites.Settings()
	assert.Equal(t, []string{"golang.org"}, settings.Allowlist)
	assert.Empty(t, settings.Blocklist)
	assert.Equal(t, []sites.BlockPattern{{Domain: "reddit.com", PathPattern: "/r/all"}}, settings.BlockedPatterns)
}

func TestParse_ClampsIntervals(t *testing.T) {
	cfg, err := Parse([]byte(`
tracker:
  flush_interval: 10ms
stats:
  write_interval: 0s
  queue_size: -1
checks:
  interval: 500ms
`))
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Tracker.FlushInterval)
	assert.Equal(t, time.Second, cfg.Stats.WriteInterval)
	assert.Equal(t, 1_000, cfg.Stats.QueueSize)
	assert.Equal(t, time.Second, cfg.Checks.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Checks.RecheckAfter)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("api: [1, 2"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusguard.yml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: UTC\n"), 0644))

	require.NoError(t, Read(path))
	assert.Equal(t, time.UTC, Location)

	require.NoError(t, os.WriteFile(path, []byte("timezone: Mars/Olympus\n"), 0644))
	assert.Error(t, Read(path))

	assert.Error(t, Read(filepath.Join(t.TempDir(), "missing.yml")))
}
