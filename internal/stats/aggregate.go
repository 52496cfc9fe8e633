package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/st3v3nmw/focusguard/internal/models"
	"github.com/st3v3nmw/focusguard/internal/types"
)

// Options select and bucket records for a report. Dates are inclusive
// YYYY-MM-DD bounds compared in Location; empty means unbounded.
type Options struct {
	GroupBy        types.Granularity
	Location       *time.Location
	StartDate      string
	EndDate        string
	FilterBlocking *bool
}

type BrowsingGroup struct {
	TotalTime int64            `json:"totalTime"`
	Domains   map[string]int64 `json:"domains"`
}

type PatienceGroup struct {
	Count   int            `json:"count"`
	Domains map[string]int `json:"domains"`
}

type DomainTime struct {
	Domain string `json:"domain"`
	Time   int64  `json:"time"`
}

type Totals struct {
	PatienceCount     int          `json:"patienceCount"`
	TotalBrowsingTime int64        `json:"totalBrowsingTime"`
	BrowsingByDomain  []DomainTime `json:"browsingByDomain"`
}

type Report struct {
	Patience map[string]PatienceGroup `json:"patience"`
	Browsing map[string]BrowsingGroup `json:"browsing"`
	Totals   Totals                   `json:"totals"`
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// slot returns the local date used for range filtering and the group key.
func (o Options) slot(ms int64) (date string, key string, ok bool) {
	t := time.UnixMilli(ms).In(o.location())
	date = t.Format("2006-01-02")

	if o.StartDate != "" && date < o.StartDate {
		return "", "", false
	}
	if o.EndDate != "" && date > o.EndDate {
		return "", "", false
	}

	switch o.GroupBy {
	case types.GranularityMonth:
		key = t.Format("2006-01")
	case types.GranularityHour:
		key = t.Format("2006-01-02-15")
	default:
		key = date
	}

	return date, key, true
}

func (o Options) keepBlocking(s models.BrowsingSession) bool {
	return o.FilterBlocking == nil || s.IsBlockingEnabled == *o.FilterBlocking
}

func GroupBrowsing(sessions []models.BrowsingSession, opts Options) map[string]BrowsingGroup {
	grouped := make(map[string]BrowsingGroup)
	for _, s := range sessions {
		if !opts.keepBlocking(s) {
			continue
		}

		_, key, ok := opts.slot(s.StartTime)
		if !ok {
			continue
		}

		g, exists := grouped[key]
		if !exists {
			g = BrowsingGroup{Domains: make(map[string]int64)}
		}
		g.TotalTime += s.Duration
		g.Domains[s.Domain] += s.Duration
		grouped[key] = g
	}

	return grouped
}

func GroupPatience(events []models.PatienceEvent, opts Options) map[string]PatienceGroup {
	grouped := make(map[string]PatienceGroup)
	for _, e := range events {
		_, key, ok := opts.slot(e.Timestamp)
		if !ok {
			continue
		}

		g, exists := grouped[key]
		if !exists {
			g = PatienceGroup{Domains: make(map[string]int)}
		}
		g.Count++
		g.Domains[e.Domain]++
		grouped[key] = g
	}

	return grouped
}

// AggregateByDomain sums durations per domain, longest first. Ties are
// broken by domain name so the order is stable.
func AggregateByDomain(sessions []models.BrowsingSession) []DomainTime {
	byDomain := make(map[string]int64)
	for _, s := range sessions {
		byDomain[s.Domain] += s.Duration
	}

	ranking := make([]DomainTime, 0, len(byDomain))
	for domain, total := range byDomain {
		ranking = append(ranking, DomainTime{Domain: domain, Time: total})
	}

	slices.SortFunc(ranking, func(a, b DomainTime) int {
		if c := cmp.Compare(b.Time, a.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Domain, b.Domain)
	})

	return ranking
}

func BuildReport(sessions []models.BrowsingSession, events []models.PatienceEvent, opts Options) Report {
	report := Report{
		Patience: GroupPatience(events, opts),
		Browsing: GroupBrowsing(sessions, opts),
	}

	for _, g := range report.Browsing {
		report.Totals.TotalBrowsingTime += g.TotalTime
	}
	for _, g := range report.Patience {
		report.Totals.PatienceCount += g.Count
	}

	filtered := make([]models.BrowsingSession, 0, len(sessions))
	for _, s := range sessions {
		if !opts.keepBlocking(s) {
			continue
		}
		if _, _, ok := opts.slot(s.StartTime); ok {
			filtered = append(filtered, s)
		}
	}
	report.Totals.BrowsingByDomain = AggregateByDomain(filtered)

	return report
}
