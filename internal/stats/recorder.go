package stats

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/st3v3nmw/focusguard/internal/models"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/storage"
	"github.com/st3v3nmw/focusguard/pkg/threadsafe"
)

const MinSessionDuration = time.Second

var ErrClosed = errors.New("recorder is shut down")

var snsDomains = []string{
	"twitter.com", "x.com", "facebook.com", "instagram.com",
	"tiktok.com", "threads.net", "reddit.com",
}

func IsSNSDomain(domain string) bool {
	domain = sites.NormalizeDomain(domain)
	for _, sns := range snsDomains {
		if domain == sns {
			return true
		}
	}
	return false
}

// ShouldRecordBrowsing applies the recording settings to a domain.
func ShouldRecordBrowsing(settings models.RecordingSettings, domain string) bool {
	if !settings.Enabled {
		return false
	}
	if settings.RecordBrowsingTime {
		return true
	}
	return settings.RecordSnsTimeOnly && IsSNSDomain(domain)
}

func ShouldRecordPatience(settings models.RecordingSettings) bool {
	return settings.Enabled && settings.RecordPatienceCount
}

type entry struct {
	session *models.BrowsingSession
	event   *models.PatienceEvent
}

type op struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Recorder is the only writer of the statistics keys. Records are queued
// and written in batches by one worker goroutine; data management
// operations run on the same goroutine after pending records are flushed.
type Recorder struct {
	store *storage.Store
	clock clockwork.Clock

	interval time.Duration
	entries  chan entry
	ops      chan op

	browsing threadsafe.Slice[models.BrowsingSession]
	patience threadsafe.Slice[models.PatienceEvent]

	wg           sync.WaitGroup
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewRecorder(store *storage.Store, clock clockwork.Clock, interval time.Duration, queueSize int) *Recorder {
	r := &Recorder{
		store:    store,
		clock:    clock,
		interval: interval,
		entries:  make(chan entry, queueSize),
		ops:      make(chan op),
		shutdown: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// RecordBrowsingSession queues a session if recording allows it. Sessions
// shorter than a second are dropped.
func (r *Recorder) RecordBrowsingSession(ctx context.Context, domain string, start, end time.Time, blocking bool) (bool, error) {
	settings, err := r.store.RecordingSettings(ctx)
	if err != nil {
		return false, err
	}

	if !ShouldRecordBrowsing(settings, domain) || end.Sub(start) < MinSessionDuration {
		return false, nil
	}

	s := models.NewBrowsingSession(domain, start, end, blocking)
	return r.submit(entry{session: &s}), nil
}

func (r *Recorder) RecordPatience(ctx context.Context, domain string) (bool, error) {
	settings, err := r.store.RecordingSettings(ctx)
	if err != nil {
		return false, err
	}

	if !ShouldRecordPatience(settings) {
		return false, nil
	}

	e := models.NewPatienceEvent(domain, r.clock.Now())
	return r.submit(entry{event: &e}), nil
}

func (r *Recorder) submit(e entry) bool {
	select {
	case <-r.shutdown:
		return false
	default:
	}

	select {
	case r.entries <- e:
		return true
	default:
		slog.Warn("Recorder queue full - dropping record")
		return false
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-r.entries:
			r.enqueue(e)

		case o := <-r.ops:
			r.drain()
			if err := r.flush(o.ctx); err != nil {
				o.done <- err
				continue
			}
			o.done <- o.fn(o.ctx)

		case <-ticker.Chan():
			r.drain()
			r.flush(context.Background())

		case <-r.shutdown:
			r.drain()
			r.flush(context.Background())
			return
		}
	}
}

func (r *Recorder) enqueue(e entry) {
	if e.session != nil {
		r.browsing.Append(*e.session)
	}
	if e.event != nil {
		r.patience.Append(*e.event)
	}
}

// drain moves everything already sent on the channel into the queues.
func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.entries:
			r.enqueue(e)
		default:
			return
		}
	}
}

func (r *Recorder) flush(ctx context.Context) error {
	if sessions := r.browsing.Drain(); len(sessions) > 0 {
		if err := r.store.AppendBrowsingSessions(ctx, sessions...); err != nil {
			slog.Error("Failed to write browsing sessions", "count", len(sessions), "error", err)
			r.browsing.Append(sessions...)
			return err
		}
	}

	if events := r.patience.Drain(); len(events) > 0 {
		if err := r.store.AppendPatienceEvents(ctx, events...); err != nil {
			slog.Error("Failed to write patience events", "count", len(events), "error", err)
			r.patience.Append(events...)
			return err
		}
	}

	return nil
}

// do runs fn on the worker once pending records are written.
func (r *Recorder) do(ctx context.Context, fn func(ctx context.Context) error) error {
	o := op{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case r.ops <- o:
	case <-r.shutdown:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-o.done
}

// Flush writes all pending records now.
func (r *Recorder) Flush(ctx context.Context) error {
	return r.do(ctx, func(context.Context) error { return nil })
}

// Snapshot returns every stored record, pending ones included.
func (r *Recorder) Snapshot(ctx context.Context) (sessions []models.BrowsingSession, events []models.PatienceEvent, err error) {
	err = r.do(ctx, func(ctx context.Context) error {
		var err error
		if sessions, err = r.store.BrowsingSessions(ctx); err != nil {
			return err
		}
		events, err = r.store.PatienceEvents(ctx)
		return err
	})
	return sessions, events, err
}

func (r *Recorder) Report(ctx context.Context, opts Options) (Report, error) {
	sessions, events, err := r.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(sessions, events, opts), nil
}

func (r *Recorder) Shutdown() {
	r.shutdownOnce.Do(func() {
		close(r.shutdown)
		r.wg.Wait()
	})
}
