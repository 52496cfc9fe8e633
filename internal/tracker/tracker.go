package tracker

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/st3v3nmw/focusguard/internal/sites"
)

type (
	TabID    int
	WindowID int
)

// NoWindow is the focused window when the browser itself lost focus.
const NoWindow WindowID = -1

const DefaultFlushInterval = 30 * time.Second

// Recorder receives finished time segments.
type Recorder interface {
	RecordBrowsingSession(ctx context.Context, domain string, start, end time.Time, blocking bool) (bool, error)
}

type ActiveSession struct {
	Domain            string    `json:"domain"`
	StartTime         time.Time `json:"startTime"`
	IsBlockingEnabled bool      `json:"isBlockingEnabled"`
	LastSaveTime      time.Time `json:"lastSaveTime"`
}

type tabState struct {
	window WindowID
	url    string
}

type segment struct {
	domain     string
	start, end time.Time
	blocking   bool
}

// Tracker keeps at most one ActiveSession per tab and turns elapsed time
// into segments for the Recorder.
type Tracker struct {
	mu sync.Mutex

	clock           clockwork.Clock
	recorder        Recorder
	blockingEnabled func() bool
	onRemoved       func(TabID)
	interval        time.Duration
	validate        *validator.Validate

	tabs     map[TabID]*tabState
	sessions map[TabID]*ActiveSession
	active   map[WindowID]TabID
	focused  WindowID

	scheduler gocron.Scheduler
	job       gocron.Job
}

type Option func(*Tracker)

func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

func WithFlushInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

// WithBlockingEnabled sets how a new session learns whether blocking is on.
func WithBlockingEnabled(fn func() bool) Option {
	return func(t *Tracker) { t.blockingEnabled = fn }
}

// OnRemoved is called after a tab is closed.
func OnRemoved(fn func(TabID)) Option {
	return func(t *Tracker) { t.onRemoved = fn }
}

func New(recorder Recorder, opts ...Option) *Tracker {
	t := &Tracker{
		clock:           clockwork.NewRealClock(),
		recorder:        recorder,
		blockingEnabled: func() bool { return true },
		onRemoved:       func(TabID) {},
		interval:        DefaultFlushInterval,
		validate:        validator.New(),
		tabs:            make(map[TabID]*tabState),
		sessions:        make(map[TabID]*ActiveSession),
		active:          make(map[WindowID]TabID),
		focused:         NoWindow,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// resolveDomain returns the normalized host of an http(s) URL with a valid
// hostname, or "".
func (t *Tracker) resolveDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	host := u.Hostname()
	if host == "" || t.validate.Var(host, "hostname_rfc1123") != nil {
		return ""
	}

	return sites.NormalizeDomain(host)
}

func (t *Tracker) isActive(tab TabID) bool {
	state, ok := t.tabs[tab]
	if !ok || state.window != t.focused {
		return false
	}
	activeTab, ok := t.active[state.window]
	return ok && activeTab == tab
}

// start opens a session if tab is the active tab of the focused window,
// has none yet, and shows a resolvable URL.
func (t *Tracker) start(tab TabID, now time.Time) {
	if _, exists := t.sessions[tab]; exists || !t.isActive(tab) {
		return
	}

	domain := t.resolveDomain(t.tabs[tab].url)
	if domain == "" {
		return
	}

	t.sessions[tab] = &ActiveSession{
		Domain:            domain,
		StartTime:         now,
		IsBlockingEnabled: t.blockingEnabled(),
		LastSaveTime:      now,
	}
}

func (t *Tracker) end(tab TabID, now time.Time) []segment {
	s, ok := t.sessions[tab]
	if !ok {
		return nil
	}

	delete(t.sessions, tab)
	return []segment{{domain: s.Domain, start: s.LastSaveTime, end: now, blocking: s.IsBlockingEnabled}}
}

func (t *Tracker) emit(ctx context.Context, segments []segment) {
	for _, seg := range segments {
		if _, err := t.recorder.RecordBrowsingSession(ctx, seg.domain, seg.start, seg.end, seg.blocking); err != nil {
			slog.Error("Failed to record browsing session", "domain", seg.domain, "error", err)
		}
	}
}

// Activated handles a tab becoming the active tab of its window. The
// window is taken to be focused.
func (t *Tracker) Activated(ctx context.Context, tab TabID, window WindowID, rawURL string) {
	t.mu.Lock()
	now := t.clock.Now()
	var segments []segment

	if prev, ok := t.active[window]; ok && prev != tab {
		segments = append(segments, t.end(prev, now)...)
	}

	if t.focused != window {
		if prev, ok := t.active[t.focused]; ok {
			segments = append(segments, t.end(prev, now)...)
		}
		t.focused = window
	}
	t.active[window] = tab

	state, ok := t.tabs[tab]
	if !ok {
		state = &tabState{}
		t.tabs[tab] = state
	}
	state.window = window

	if rawURL != "" && rawURL != state.url {
		segments = append(segments, t.end(tab, now)...)
		state.url = rawURL
	}

	if s, ok := t.sessions[tab]; ok && s.Domain != t.resolveDomain(state.url) {
		segments = append(segments, t.end(tab, now)...)
	}
	t.start(tab, now)
	t.mu.Unlock()

	t.emit(ctx, segments)
}

// Navigated handles a committed URL change in a tab.
func (t *Tracker) Navigated(ctx context.Context, tab TabID, window WindowID, rawURL string) {
	t.mu.Lock()
	now := t.clock.Now()
	var segments []segment

	state, ok := t.tabs[tab]
	if !ok {
		state = &tabState{window: window}
		t.tabs[tab] = state
	}
	state.window = window

	if state.url != rawURL {
		segments = t.end(tab, now)
		state.url = rawURL
	}
	t.start(tab, now)
	t.mu.Unlock()

	t.emit(ctx, segments)
}

func (t *Tracker) Removed(ctx context.Context, tab TabID) {
	t.mu.Lock()
	segments := t.end(tab, t.clock.Now())

	if state, ok := t.tabs[tab]; ok {
		if t.active[state.window] == tab {
			delete(t.active, state.window)
		}
		delete(t.tabs, tab)
	}
	t.mu.Unlock()

	t.emit(ctx, segments)
	t.onRemoved(tab)
}

// FocusChanged handles the focused window changing. NoWindow means the
// browser lost focus.
func (t *Tracker) FocusChanged(ctx context.Context, window WindowID) {
	t.mu.Lock()
	if window == t.focused {
		t.mu.Unlock()
		return
	}

	now := t.clock.Now()
	var segments []segment
	if prev, ok := t.active[t.focused]; ok {
		segments = t.end(prev, now)
	}

	t.focused = window
	if tab, ok := t.active[window]; ok {
		t.start(tab, now)
	}
	t.mu.Unlock()

	t.emit(ctx, segments)
}

// Flush records [lastSaveTime, now) for every session open at least one
// interval and keeps the sessions running.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	now := t.clock.Now()
	var segments []segment
	for _, s := range t.sessions {
		if now.Sub(s.LastSaveTime) < t.interval {
			continue
		}

		segments = append(segments, segment{domain: s.Domain, start: s.LastSaveTime, end: now, blocking: s.IsBlockingEnabled})
		s.LastSaveTime = now
	}
	t.mu.Unlock()

	t.emit(ctx, segments)
}

// Sessions returns a copy of the open sessions.
func (t *Tracker) Sessions() map[TabID]ActiveSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[TabID]ActiveSession, len(t.sessions))
	for tab, s := range t.sessions {
		out[tab] = *s
	}
	return out
}

// Start schedules the periodic flush on scheduler. Calling it again is a no-op.
func (t *Tracker) Start(scheduler gocron.Scheduler) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job != nil {
		return nil
	}

	job, err := scheduler.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(func() { t.Flush(context.Background()) }),
	)
	if err != nil {
		return err
	}

	t.scheduler = scheduler
	t.job = job
	return nil
}

// Stop cancels the periodic flush and ends every open session.
func (t *Tracker) Stop(ctx context.Context) {
	t.mu.Lock()
	if t.job != nil {
		if err := t.scheduler.RemoveJob(t.job.ID()); err != nil {
			slog.Error("Failed to remove flush job", "error", err)
		}
		t.job = nil
		t.scheduler = nil
	}

	now := t.clock.Now()
	var segments []segment
	for tab := range t.sessions {
		segments = append(segments, t.end(tab, now)...)
	}
	t.mu.Unlock()

	t.emit(ctx, segments)
}
