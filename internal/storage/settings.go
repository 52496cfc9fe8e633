package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/st3v3nmw/focusguard/internal/models"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/topics"
)

// Topics

// Topics returns the study topics, upgrading legacy shapes in place.
func (s *Store) Topics(ctx context.Context) ([]topics.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics(ctx)
}

func (s *Store) topics(ctx context.Context) ([]topics.Topic, error) {
	data, err := s.getRaw(ctx, KeyTopics)
	if errors.Is(err, ErrNotFound) {
		return []topics.Topic{}, nil
	}
	if err != nil {
		return nil, err
	}

	list, changed, err := topics.Migrate(data)
	if err != nil {
		return nil, err
	}

	if changed {
		slog.Info("Migrating stored topics", "count", len(list))
		if err := s.put(ctx, KeyTopics, list); err != nil {
			slog.Error("failed to write migrated topics", "error", err)
		}
	}

	return list, nil
}

// UpdateTopics applies fn to the stored topics and saves the result when fn
// reports a change.
func (s *Store) UpdateTopics(ctx context.Context, fn func([]topics.Topic) ([]topics.Topic, bool)) ([]topics.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.topics(ctx)
	if err != nil {
		return nil, err
	}

	list, changed := fn(list)
	if !changed {
		return list, nil
	}

	return list, s.put(ctx, KeyTopics, list)
}

// Site settings

func (s *Store) SiteSettings(ctx context.Context) (sites.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.siteSettings(ctx)
}

func (s *Store) siteSettings(ctx context.Context) (sites.Settings, error) {
	settings := s.defaults.Sites.Clone()
	if err := s.get(ctx, KeySiteSettings, &settings); err != nil && !errors.Is(err, ErrNotFound) {
		return sites.Settings{}, err
	}
	return settings, nil
}

func (s *Store) SetSiteSettings(ctx context.Context, settings sites.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, KeySiteSettings, settings)
}

func (s *Store) UpdateSiteSettings(ctx context.Context, fn func(*sites.Settings) bool) (sites.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.siteSettings(ctx)
	if err != nil {
		return sites.Settings{}, err
	}

	if !fn(&settings) {
		return settings, nil
	}

	return settings, s.put(ctx, KeySiteSettings, settings)
}

// Recording settings

func (s *Store) RecordingSettings(ctx context.Context) (models.RecordingSettings, error) {
	settings := models.DefaultRecordingSettings()
	if err := s.get(ctx, KeyRecordingSettings, &settings); err != nil && !errors.Is(err, ErrNotFound) {
		return models.RecordingSettings{}, err
	}

	settings.Normalize()
	return settings, nil
}

func (s *Store) SetRecordingSettings(ctx context.Context, settings models.RecordingSettings) (models.RecordingSettings, error) {
	settings.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	return settings, s.put(ctx, KeyRecordingSettings, settings)
}

// Flags

func (s *Store) ExtensionEnabled(ctx context.Context) (bool, error) {
	enabled := true
	if err := s.get(ctx, KeyExtensionEnabled, &enabled); err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return enabled, nil
}

func (s *Store) SetExtensionEnabled(ctx context.Context, enabled bool) error {
	return s.put(ctx, KeyExtensionEnabled, enabled)
}

func (s *Store) Language(ctx context.Context) (string, error) {
	lang := s.defaults.Language
	if err := s.get(ctx, KeyLanguage, &lang); err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return lang, nil
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	return s.put(ctx, KeyLanguage, lang)
}
