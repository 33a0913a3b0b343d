// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// refreshRequest represents a manual refresh trigger.
type refreshRequest struct {
	rfdNumber int
	done      chan error
}

// PollService keeps cached discussions warm by periodically re-fetching every
// snapshot older than the cache TTL.
type PollService struct {
	discussions *DiscussionService
	store       driven.DiscussionStore
	cacheTTL    time.Duration
	interval    time.Duration
	refreshCh   chan refreshRequest
	now         func() time.Time
}

// NewPollService creates a new PollService with all required dependencies.
func NewPollService(
	discussions *DiscussionService,
	store driven.DiscussionStore,
	cacheTTL time.Duration,
	interval time.Duration,
) *PollService {
	return &PollService{
		discussions: discussions,
		store:       store,
		cacheTTL:    cacheTTL,
		interval:    interval,
		refreshCh:   make(chan refreshRequest),
		now:         time.Now,
	}
}

// Start begins the polling loop. It runs an immediate poll, then polls on the
// configured interval. It also listens for manual refresh requests. Start blocks
// until the context is canceled.
func (s *PollService) Start(ctx context.Context) {
	if err := s.pollAll(ctx); err != nil {
		slog.Error("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll service stopped")
			return
		case <-ticker.C:
			if err := s.pollAll(ctx); err != nil {
				slog.Error("poll cycle failed", "error", err)
			}
		case req := <-s.refreshCh:
			req.done <- s.discussions.RefreshRFD(ctx, req.rfdNumber)
		}
	}
}

// RefreshRFD triggers a manual refresh of one RFD's discussion, bypassing the
// polling interval. It blocks until the refresh completes or the context is
// canceled.
func (s *PollService) RefreshRFD(ctx context.Context, number int) error {
	slog.Info("manual rfd refresh requested", "rfd", number)

	done := make(chan error, 1)
	req := refreshRequest{
		rfdNumber: number,
		done:      done,
	}

	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollAll refreshes every cached snapshot that has outlived the cache TTL.
func (s *PollService) pollAll(ctx context.Context) error {
	start := time.Now()

	keys, err := s.store.ListSnapshotKeys(ctx)
	if err != nil {
		return err
	}

	var refreshed, pollErrors int
	for _, key := range keys {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if s.now().Sub(key.FetchedAt) < s.cacheTTL {
			continue
		}

		if _, err := s.discussions.RefreshPR(ctx, key.PR); err != nil {
			slog.Error("discussion poll failed", "pr", key.PR.String(), "error", err)
			pollErrors++
			continue
		}
		refreshed++
	}

	slog.Info("poll cycle complete",
		"cached", len(keys),
		"refreshed", refreshed,
		"errors", pollErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}
