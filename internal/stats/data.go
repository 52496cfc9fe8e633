package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/st3v3nmw/focusguard/internal/models"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/topics"
	"github.com/st3v3nmw/focusguard/internal/types"
)

const ExportVersion = "1.0"

var (
	ErrInvalidImport = errors.New("invalid import file")
	ErrInvalidRange  = errors.New("invalid date range")
)

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Export is the versioned backup document. Sections are pointers so that an
// included-but-empty list is distinguishable from an absent one.
type Export struct {
	Version           string                    `json:"version"`
	ExportedAt        string                    `json:"exportedAt,omitempty"`
	DateRange         *DateRange                `json:"dateRange,omitempty"`
	PatienceEvents    *[]models.PatienceEvent   `json:"patienceEvents,omitempty"`
	BrowsingSessions  *[]models.BrowsingSession `json:"browsingSessions,omitempty"`
	RecordingSettings *models.RecordingSettings `json:"recordingSettings,omitempty"`
	SiteSettings      *sites.Settings           `json:"siteSettings,omitempty"`
	StudyTopics       *[]topics.Topic           `json:"studyTopics,omitempty"`
}

type ExportOptions struct {
	StartDate       string
	EndDate         string
	IncludePatience bool
	IncludeBrowsing bool
	IncludeSettings bool
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{IncludePatience: true, IncludeBrowsing: true, IncludeSettings: true}
}

type ImportResult struct {
	PatienceImported    int  `json:"patienceImported"`
	BrowsingImported    int  `json:"browsingImported"`
	SettingsImported    bool `json:"settingsImported"`
	StudyTopicsImported int  `json:"studyTopicsImported"`
}

type DeleteResult struct {
	DeletedPatienceCount int `json:"deletedPatienceCount"`
	DeletedBrowsingCount int `json:"deletedBrowsingCount"`
}

func inRange(date, start, end string) bool {
	return (start == "" || date >= start) && (end == "" || date <= end)
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func (r *Recorder) Export(ctx context.Context, opts ExportOptions) (Export, error) {
	out := Export{
		Version:    ExportVersion,
		ExportedAt: r.clock.Now().UTC().Format(time.RFC3339Nano),
		DateRange:  &DateRange{StartDate: orAll(opts.StartDate), EndDate: orAll(opts.EndDate)},
	}

	sessions, events, err := r.Snapshot(ctx)
	if err != nil {
		return Export{}, err
	}

	if opts.IncludePatience {
		filtered := slices.DeleteFunc(events, func(e models.PatienceEvent) bool {
			return !inRange(e.Date, opts.StartDate, opts.EndDate)
		})
		out.PatienceEvents = &filtered
	}

	if opts.IncludeBrowsing {
		filtered := slices.DeleteFunc(sessions, func(s models.BrowsingSession) bool {
			return !inRange(s.Date, opts.StartDate, opts.EndDate)
		})
		out.BrowsingSessions = &filtered
	}

	if opts.IncludeSettings {
		recording, err := r.store.RecordingSettings(ctx)
		if err != nil {
			return Export{}, err
		}
		siteSettings, err := r.store.SiteSettings(ctx)
		if err != nil {
			return Export{}, err
		}
		studyTopics, err := r.store.Topics(ctx)
		if err != nil {
			return Export{}, err
		}

		out.RecordingSettings = &recording
		out.SiteSettings = &siteSettings
		out.StudyTopics = &studyTopics
	}

	return out, nil
}

// ParseExport decodes and validates an export document. Legacy topic shapes
// are accepted.
func ParseExport(data []byte) (Export, error) {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return Export{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	if doc.Version == "" {
		return Export{}, fmt.Errorf("%w: missing version", ErrInvalidImport)
	}

	return doc, nil
}

// Import writes the sections present in doc. Nothing is written unless doc
// and mode are valid.
func (r *Recorder) Import(ctx context.Context, doc Export, mode types.ImportMode) (ImportResult, error) {
	if doc.Version == "" {
		return ImportResult{}, fmt.Errorf("%w: missing version", ErrInvalidImport)
	}
	if mode == "" {
		mode = types.ImportMerge
	}
	if mode != types.ImportMerge && mode != types.ImportReplace {
		return ImportResult{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidImport, mode)
	}

	var result ImportResult

	err := r.do(ctx, func(ctx context.Context) error {
		if doc.PatienceEvents == nil && doc.BrowsingSessions == nil {
			return nil
		}

		sessions, err := r.store.BrowsingSessions(ctx)
		if err != nil {
			return err
		}
		events, err := r.store.PatienceEvents(ctx)
		if err != nil {
			return err
		}

		if doc.PatienceEvents != nil {
			incoming := *doc.PatienceEvents
			if mode == types.ImportReplace {
				events = incoming
				result.PatienceImported = len(incoming)
			} else {
				seen := make(map[int64]bool, len(events))
				for _, e := range events {
					seen[e.Timestamp] = true
				}
				for _, e := range incoming {
					if !seen[e.Timestamp] {
						seen[e.Timestamp] = true
						events = append(events, e)
						result.PatienceImported++
					}
				}
			}
		}

		if doc.BrowsingSessions != nil {
			incoming := *doc.BrowsingSessions
			if mode == types.ImportReplace {
				sessions = incoming
				result.BrowsingImported = len(incoming)
			} else {
				seen := make(map[int64]bool, len(sessions))
				for _, s := range sessions {
					seen[s.StartTime] = true
				}
				for _, s := range incoming {
					if !seen[s.StartTime] {
						seen[s.StartTime] = true
						sessions = append(sessions, s)
						result.BrowsingImported++
					}
				}
			}
		}

		return r.store.ReplaceStats(ctx, sessions, events)
	})
	if err != nil {
		return result, err
	}

	if doc.RecordingSettings != nil {
		if _, err := r.store.SetRecordingSettings(ctx, *doc.RecordingSettings); err != nil {
			return result, err
		}
		result.SettingsImported = true
	}

	if doc.SiteSettings != nil {
		if err := r.store.SetSiteSettings(ctx, *doc.SiteSettings); err != nil {
			return result, err
		}
		result.SettingsImported = true
	}

	if doc.StudyTopics != nil {
		incoming := *doc.StudyTopics
		_, err := r.store.UpdateTopics(ctx, func(existing []topics.Topic) ([]topics.Topic, bool) {
			if mode == types.ImportReplace {
				result.StudyTopicsImported = len(incoming)
				return incoming, true
			}

			merged := topics.Merge(existing, incoming)
			result.StudyTopicsImported = len(merged) - len(existing)
			return merged, result.StudyTopicsImported > 0
		})
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

// DeleteRange removes records whose stored UTC date is within [start, end].
func (r *Recorder) DeleteRange(ctx context.Context, start, end string) (DeleteResult, error) {
	if start == "" || end == "" || start > end {
		return DeleteResult{}, fmt.Errorf("%w: %q to %q", ErrInvalidRange, start, end)
	}

	var result DeleteResult
	err := r.do(ctx, func(ctx context.Context) error {
		sessions, err := r.store.BrowsingSessions(ctx)
		if err != nil {
			return err
		}
		events, err := r.store.PatienceEvents(ctx)
		if err != nil {
			return err
		}

		n := len(sessions)
		sessions = slices.DeleteFunc(sessions, func(s models.BrowsingSession) bool {
			return inRange(s.Date, start, end)
		})
		result.DeletedBrowsingCount = n - len(sessions)

		n = len(events)
		events = slices.DeleteFunc(events, func(e models.PatienceEvent) bool {
			return inRange(e.Date, start, end)
		})
		result.DeletedPatienceCount = n - len(events)

		if result.DeletedBrowsingCount == 0 && result.DeletedPatienceCount == 0 {
			return nil
		}
		return r.store.ReplaceStats(ctx, sessions, events)
	})

	return result, err
}

func (r *Recorder) DeleteAll(ctx context.Context) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.store.DeleteStats(ctx)
	})
}
