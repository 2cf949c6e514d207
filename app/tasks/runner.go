package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftwiki/feedticker/app/database"
)

// FeedRefresher runs the full pipeline for one feed. Satisfied by
// *feed.Refresher.
type FeedRefresher interface {
	Run(ctx context.Context, fd database.Feed) error
}

// Failure records one feed's refresh error within a batch.
type Failure struct {
	FeedID    string `json:"feed_id"`
	FeedTitle string `json:"feed_title"`
	Error     string `json:"error"`
}

// BatchResult summarizes a refresh-all run. Individual feed failures are
// collected here instead of aborting the batch.
type BatchResult struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failures  []Failure     `json:"failures"`
	Duration  time.Duration `json:"duration"`
}

// Runner iterates all stored feeds and refreshes them sequentially.
type Runner struct {
	refresher FeedRefresher
	feedRepo  database.FeedRepository
}

func NewRunner(refresher FeedRefresher, feedRepo database.FeedRepository) *Runner {
	return &Runner{
		refresher: refresher,
		feedRepo:  feedRepo,
	}
}

// RefreshAll refreshes every feed in load order, one at a time. A feed's
// failure is recorded and the loop continues; only a failure to load the
// feed list itself is returned as an error.
func (r *Runner) RefreshAll(ctx context.Context) (*BatchResult, error) {
	feeds, err := r.feedRepo.GetAllFeeds()
	if err != nil {
		return nil, fmt.Errorf("failed to load feeds: %w", err)
	}

	started := time.Now()
	result := &BatchResult{Total: len(feeds)}

	for _, fd := range feeds {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := r.refresher.Run(ctx, fd); err != nil {
			slog.Error("Feed refresh failed", "feed_id", fd.ID, "title", fd.Title, "error", err)
			result.Failures = append(result.Failures, Failure{
				FeedID:    fd.ID,
				FeedTitle: fd.Title,
				Error:     err.Error(),
			})
			continue
		}

		result.Succeeded++
	}

	result.Duration = time.Since(started)

	slog.Info("Batch refresh completed",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", len(result.Failures),
		"duration", result.Duration)

	return result, nil
}

// RefreshOne refreshes a single feed by ID, surfacing the wrapped pipeline
// error directly so operators see why a refresh failed.
func (r *Runner) RefreshOne(ctx context.Context, feedID string) error {
	fd, err := r.feedRepo.GetFeed(feedID)
	if err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}
	if fd == nil {
		return fmt.Errorf("feed %s not found", feedID)
	}

	return r.refresher.Run(ctx, *fd)
}
