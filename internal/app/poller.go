package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/finder/internal/finder"
	"github.com/five82/finder/internal/state"
)

const defaultPollInterval = 30 * time.Second

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence. It returns immediately; the returned channel is closed once
// the goroutine has exited after ctx is cancelled.
func StartPoller(ctx context.Context, store *state.Store, client finder.Service, logger *slog.Logger, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			_ = Refresh(ctx, store, client, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return done
}

// Refresh fetches health, objects, history and suggestions concurrently and
// records each result in the store. One failing source does not stop the
// others; the first error is returned.
func Refresh(ctx context.Context, store *state.Store, client finder.Service, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "poller")

	var g errgroup.Group
	g.Go(func() error {
		health, err := client.CheckHealth(ctx)
		store.UpdateHealth(health, err)
		return logFailure(logger, "health", err)
	})
	g.Go(func() error {
		objects, err := client.ListTrackedObjects(ctx)
		store.UpdateObjects(objects, err)
		return logFailure(logger, "objects", err)
	})
	g.Go(func() error {
		history, err := client.GetSearchHistory(ctx)
		store.UpdateHistory(history, err)
		return logFailure(logger, "history", err)
	})
	g.Go(func() error {
		suggestions, err := client.GetSearchSuggestions(ctx)
		if err != nil {
			store.UpdateSuggestions(nil, nil, err)
			return logFailure(logger, "suggestions", err)
		}
		common, err := client.GetCommonObjects(ctx)
		store.UpdateSuggestions(suggestions, common, err)
		return logFailure(logger, "common objects", err)
	})
	return g.Wait()
}

func logFailure(logger *slog.Logger, source string, err error) error {
	if err != nil {
		logger.Warn("refresh failed", "source", source, "kind", finder.KindOf(err).String(), "error", err)
	}
	return err
}
