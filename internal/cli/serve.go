package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/st3v3nmw/focusguard/internal/api"
	"github.com/st3v3nmw/focusguard/internal/config"
	"github.com/st3v3nmw/focusguard/internal/guard"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/similarity"
	"github.com/st3v3nmw/focusguard/internal/tracker"
)

const warmupRetryInterval = time.Minute

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	slog.Info("Focus Guard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := config.All

	// Scheduler
	scheduler, err := gocron.NewScheduler(gocron.WithClock(app.clock))
	if err != nil {
		return err
	}

	// Similarity
	slog.Info("Setting up similarity provider...", "host", cfg.Similarity.Host, "model", cfg.Similarity.Model)
	client := similarity.NewOllamaClient(cfg.Similarity.Host, cfg.Similarity.Model)
	provider, err := similarity.NewService(client, cfg.Similarity.Cache.Size, cfg.Similarity.Cache.TTL)
	if err != nil {
		return err
	}
	defer provider.Close()

	// Retries until the model is loaded, then does nothing.
	_, err = scheduler.NewJob(
		gocron.DurationJob(warmupRetryInterval),
		gocron.NewTask(func() { provider.Warmup(ctx) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	// Database maintenance
	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 30, 0))),
		gocron.NewTask(func() {
			if err := app.store.Optimize(ctx); err != nil {
				slog.Error("database maintenance failed", "error", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("scheduler shutdown failed", "error", err)
		}
	}()

	// Guard
	slog.Info("Setting up guard...")
	scorer := relevance.NewScorer(provider, cfg.Similarity.Timeout)
	scores := guard.NewScores()
	broadcaster := guard.NewBroadcaster()
	checker := guard.NewChecker(app.store, scorer, scores, app.clock)

	// Session tracker
	slog.Info("Setting up session tracker...")
	tr := tracker.New(app.recorder,
		tracker.WithClock(app.clock),
		tracker.WithFlushInterval(cfg.Tracker.FlushInterval),
		tracker.WithBlockingEnabled(func() bool {
			enabled, err := app.store.ExtensionEnabled(context.Background())
			if err != nil {
				slog.Error("failed to read extension flag", "error", err)
				return true
			}
			return enabled
		}),
		tracker.OnRemoved(scores.Forget),
	)
	if err := tr.Start(scheduler); err != nil {
		return err
	}
	defer tr.Stop(context.Background())

	scheduler.Start()

	// API
	port := cfg.API.Port
	if c.Port != 0 {
		port = c.Port
	}

	service := api.New(fmt.Sprintf("127.0.0.1:%d", port), api.Deps{
		Store:       app.store,
		Recorder:    app.recorder,
		Tracker:     tr,
		Checker:     checker,
		Scorer:      scorer,
		Scores:      scores,
		Broadcaster: broadcaster,
		Similarity:  provider,
		Checks:      *cfg.Checks,
		Location:    config.Location,
		Clock:       app.clock,
	})

	errs := make(chan error, 1)
	go func() {
		slog.Info("Starting API service...", "port", port)
		errs <- service.Start()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return service.Shutdown(shutdownCtx)
}
