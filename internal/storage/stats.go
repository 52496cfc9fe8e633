package storage

import (
	"context"
	"errors"

	"github.com/st3v3nmw/focusguard/internal/models"
)

// Statistics keys have a single writer (stats.Recorder), so these calls
// don't take the settings lock.

func (s *Store) BrowsingSessions(ctx context.Context) ([]models.BrowsingSession, error) {
	sessions := []models.BrowsingSession{}
	if err := s.get(ctx, KeyBrowsing, &sessions); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) PatienceEvents(ctx context.Context) ([]models.PatienceEvent, error) {
	events := []models.PatienceEvent{}
	if err := s.get(ctx, KeyPatience, &events); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return events, nil
}

func (s *Store) AppendBrowsingSessions(ctx context.Context, items ...models.BrowsingSession) error {
	if len(items) == 0 {
		return nil
	}

	sessions, err := s.BrowsingSessions(ctx)
	if err != nil {
		return err
	}

	return s.put(ctx, KeyBrowsing, append(sessions, items...))
}

func (s *Store) AppendPatienceEvents(ctx context.Context, items ...models.PatienceEvent) error {
	if len(items) == 0 {
		return nil
	}

	events, err := s.PatienceEvents(ctx)
	if err != nil {
		return err
	}

	return s.put(ctx, KeyPatience, append(events, items...))
}

// ReplaceStats overwrites both statistics lists atomically.
func (s *Store) ReplaceStats(ctx context.Context, sessions []models.BrowsingSession, events []models.PatienceEvent) error {
	if sessions == nil {
		sessions = []models.BrowsingSession{}
	}
	if events == nil {
		events = []models.PatienceEvent{}
	}

	return s.putAll(ctx, map[string]any{
		KeyBrowsing: sessions,
		KeyPatience: events,
	})
}

func (s *Store) DeleteStats(ctx context.Context) error {
	return s.remove(ctx, KeyBrowsing, KeyPatience)
}
