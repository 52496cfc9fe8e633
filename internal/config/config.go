package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/st3v3nmw/focusguard/internal/sites"
)

var (
	All      Config
	Location *time.Location
)

const minInterval = time.Second

type Config struct {
	API        *APIConfig        `yaml:"api" json:"api"`
	Timezone   string            `yaml:"timezone" json:"timezone"`
	Similarity *SimilarityConfig `yaml:"similarity" json:"similarity"`
	Tracker    *TrackerConfig    `yaml:"tracker" json:"tracker"`
	Stats      *StatsConfig      `yaml:"stats" json:"stats"`
	Checks     *ChecksConfig     `yaml:"checks" json:"checks"`
	Sites      *SitesConfig      `yaml:"sites" json:"sites"`
}

type APIConfig struct {
	Port uint16 `yaml:"port" json:"port"`
}

type SimilarityConfig struct {
	Host    string        `yaml:"host" json:"host"`
	Model   string        `yaml:"model" json:"model"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	Cache   CacheConfig   `yaml:"cache" json:"cache"`
}

type CacheConfig struct {
	Size int           `yaml:"size" json:"size"`
	TTL  time.Duration `yaml:"ttl" json:"ttl"`
}

type TrackerConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`
}

type StatsConfig struct {
	WriteInterval time.Duration `yaml:"write_interval" json:"write_interval"`
	QueueSize     int           `yaml:"queue_size" json:"queue_size"`
}

// ChecksConfig is handed to tab clients, which own the periodic relevance checks.
type ChecksConfig struct {
	Interval     time.Duration `yaml:"interval" json:"interval"`
	RecheckAfter time.Duration `yaml:"recheck_after" json:"recheck_after"`
}

// SitesConfig seeds the site settings the first time they are read.
type SitesConfig struct {
	Allowlist       []string             `yaml:"allowlist" json:"allowlist"`
	Blocklist       []string             `yaml:"blocklist" json:"blocklist"`
	BlockedPatterns []sites.BlockPattern `yaml:"blocked_patterns" json:"blocked_patterns"`
}

func (s *SitesConfig) Settings() sites.Settings {
	return sites.Settings{
		Allowlist:       s.Allowlist,
		Blocklist:       s.Blocklist,
		BlockedPatterns: s.BlockedPatterns,
	}.Clone()
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	defaultSites := sites.DefaultSettings()

	return Config{
		API:      &APIConfig{Port: 8765},
		Timezone: time.Now().Location().String(),
		Similarity: &SimilarityConfig{
			Host:    "http://localhost:11434",
			Model:   "paraphrase-multilingual",
			Timeout: 10 * time.Second,
			Cache: CacheConfig{
				Size: 10_000,
				TTL:  time.Hour,
			},
		},
		Tracker: &TrackerConfig{FlushInterval: 30 * time.Second},
		Stats: &StatsConfig{
			WriteInterval: 5 * time.Second,
			QueueSize:     1_000,
		},
		Checks: &ChecksConfig{
			Interval:     30 * time.Second,
			RecheckAfter: 2 * time.Minute,
		},
		Sites: &SitesConfig{
			Allowlist:       defaultSites.Allowlist,
			Blocklist:       defaultSites.Blocklist,
			BlockedPatterns: defaultSites.BlockedPatterns,
		},
	}
}

// fill restores defaults for sections or fields a partial file left empty
// and clamps intervals to their minimum.
func (c *Config) fill() {
	def := Default()

	if c.API == nil {
		c.API = def.API
	}
	if c.API.Port == 0 {
		c.API.Port = def.API.Port
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}

	if c.Similarity == nil {
		c.Similarity = def.Similarity
	}
	if c.Similarity.Host == "" {
		c.Similarity.Host = def.Similarity.Host
	}
	if c.Similarity.Model == "" {
		c.Similarity.Model = def.Similarity.Model
	}
	if c.Similarity.Timeout <= 0 {
		c.Similarity.Timeout = def.Similarity.Timeout
	}
	if c.Similarity.Cache.Size <= 0 {
		c.Similarity.Cache.Size = def.Similarity.Cache.Size
	}
	if c.Similarity.Cache.TTL <= 0 {
		c.Similarity.Cache.TTL = def.Similarity.Cache.TTL
	}

	if c.Tracker == nil {
		c.Tracker = def.Tracker
	}
	if c.Stats == nil {
		c.Stats = def.Stats
	}
	if c.Stats.QueueSize <= 0 {
		c.Stats.QueueSize = def.Stats.QueueSize
	}
	if c.Checks == nil {
		c.Checks = def.Checks
	}
	if c.Checks.RecheckAfter <= 0 {
		c.Checks.RecheckAfter = def.Checks.RecheckAfter
	}
	if c.Sites == nil {
		c.Sites = def.Sites
	}

	for _, d := range []*time.Duration{&c.Tracker.FlushInterval, &c.Stats.WriteInterval, &c.Checks.Interval} {
		if *d < minInterval {
			*d = minInterval
		}
	}
}

// Parse decodes a YAML document over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.fill()
	return cfg, nil
}

// Read loads the config file into All. An empty path keeps the defaults.
func Read(filePath string) error {
	var data []byte
	if filePath != "" {
		var err error
		data, err = os.ReadFile(filePath)
		if err != nil {
			return err
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	All = cfg
	Location = loc
	return nil
}
