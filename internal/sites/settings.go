package sites

import (
	"net/url"
	"slices"
	"strings"
)

type BlockPattern struct {
	Domain      string `yaml:"domain" json:"domain"`
	PathPattern string `yaml:"path_pattern" json:"pathPattern"`
}

func (p BlockPattern) String() string {
	return p.Domain + p.PathPattern
}

type Settings struct {
	Allowlist       []string       `json:"allowlist"`
	Blocklist       []string       `json:"blocklist"`
	BlockedPatterns []BlockPattern `json:"blockedPatterns"`
}

// DefaultSettings blocks Instagram and YouTube Shorts out of the box.
func DefaultSettings() Settings {
	return Settings{
		Allowlist: []string{},
		Blocklist: []string{
			"instagram.com",
			"www.instagram.com",
		},
		BlockedPatterns: []BlockPattern{
			{Domain: "youtube.com", PathPattern: "/shorts"},
			{Domain: "www.youtube.com", PathPattern: "/shorts"},
		},
	}
}

// NormalizeDomain lower-cases a domain and strips a leading "www.".
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(domain, "www.")
}

// ExtractDomain returns the normalized hostname of rawURL, or "" when it
// can't be parsed or has no host.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := u.Hostname()
	if host == "" {
		return ""
	}

	return NormalizeDomain(host)
}

// matches is exact-or-www matching. Suffix matching is deliberately absent:
// "instagram.com" must not match "fakeinstagram.com".
func matches(domain, entry string) bool {
	return domain != "" && NormalizeDomain(entry) == domain
}

func (s *Settings) AddAllowed(domain string) bool {
	return addDomain(&s.Allowlist, domain)
}

func (s *Settings) RemoveAllowed(domain string) bool {
	return removeDomain(&s.Allowlist, domain)
}

func (s *Settings) AddBlocked(domain string) bool {
	return addDomain(&s.Blocklist, domain)
}

func (s *Settings) RemoveBlocked(domain string) bool {
	return removeDomain(&s.Blocklist, domain)
}

func (s *Settings) AddPattern(domain, pathPattern string) bool {
	domain = NormalizeDomain(domain)
	if domain == "" || pathPattern == "" {
		return false
	}

	for _, p := range s.BlockedPatterns {
		if NormalizeDomain(p.Domain) == domain && p.PathPattern == pathPattern {
			return false
		}
	}

	s.BlockedPatterns = append(s.BlockedPatterns, BlockPattern{Domain: domain, PathPattern: pathPattern})
	return true
}

func (s *Settings) RemovePattern(domain, pathPattern string) bool {
	domain = NormalizeDomain(domain)
	n := len(s.BlockedPatterns)
	s.BlockedPatterns = slices.DeleteFunc(s.BlockedPatterns, func(p BlockPattern) bool {
		return NormalizeDomain(p.Domain) == domain && p.PathPattern == pathPattern
	})
	return len(s.BlockedPatterns) != n
}

func addDomain(list *[]string, domain string) bool {
	domain = NormalizeDomain(domain)
	if domain == "" || slices.Contains(*list, domain) {
		return false
	}

	*list = append(*list, domain)
	return true
}

func removeDomain(list *[]string, domain string) bool {
	domain = NormalizeDomain(domain)
	n := len(*list)
	*list = slices.DeleteFunc(*list, func(d string) bool { return d == domain })
	return len(*list) != n
}

func (s Settings) Clone() Settings {
	return Settings{
		Allowlist:       append([]string{}, s.Allowlist...),
		Blocklist:       append([]string{}, s.Blocklist...),
		BlockedPatterns: append([]BlockPattern{}, s.BlockedPatterns...),
	}
}
