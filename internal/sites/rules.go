package sites

import (
	"net/url"

	"github.com/armon/go-radix"
)

type Verdict struct {
	Allowed bool   `json:"allowed"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// Engine evaluates URLs against one snapshot of Settings. Build a new one
// whenever the settings change.
type Engine struct {
	settings Settings

	// path patterns keyed by normalized domain + path prefix
	patterns *radix.Tree
}

type patternRule struct {
	index   int
	pattern BlockPattern
}

func NewEngine(settings Settings) *Engine {
	tree := radix.New()
	for i, p := range settings.BlockedPatterns {
		key := NormalizeDomain(p.Domain) + p.PathPattern
		if _, exists := tree.Get(key); exists {
			// keep the earliest rule for the reason string
			continue
		}
		tree.Insert(key, patternRule{index: i, pattern: p})
	}

	return &Engine{
		settings: settings,
		patterns: tree,
	}
}

// Classify applies, in order: allowlist, path patterns, blocklist.
// Malformed URLs are neutral.
func (e *Engine) Classify(rawURL string) Verdict {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return Verdict{}
	}
	domain := NormalizeDomain(u.Hostname())

	if e.IsAllowlisted(domain) {
		return Verdict{Allowed: true}
	}

	if rule, ok := e.matchPattern(domain, u.EscapedPath()); ok {
		return Verdict{Blocked: true, Reason: rule.pattern.String()}
	}

	for _, blocked := range e.settings.Blocklist {
		if matches(domain, blocked) {
			return Verdict{Blocked: true, Reason: blocked}
		}
	}

	return Verdict{}
}

func (e *Engine) IsAllowlisted(domain string) bool {
	for _, allowed := range e.settings.Allowlist {
		if matches(domain, allowed) {
			return true
		}
	}
	return false
}

// matchPattern walks every stored key that prefixes domain+path and returns
// the earliest configured rule, so the result matches a linear scan.
func (e *Engine) matchPattern(domain, path string) (patternRule, bool) {
	if path == "" {
		path = "/"
	}

	var best patternRule
	found := false
	e.patterns.WalkPath(domain+path, func(key string, raw interface{}) bool {
		rule := raw.(patternRule)

		// the pattern's domain must be the whole host, not a prefix of it
		if len(key) <= len(domain) || key[:len(domain)] != domain {
			return false
		}

		if !found || rule.index < best.index {
			best = rule
			found = true
		}
		return false
	})

	return best, found
}
