package feed

import (
	"context"
	"log/slog"

	"github.com/craftwiki/feedticker/app/database"
)

// YouTubeUpdater persists items for youtube feeds. Natural key: the video
// ID, used as the item's primary identifier for both lookup and creation.
// Re-fetches refresh every mutable item and metadata field in place.
type YouTubeUpdater struct {
	itemRepo database.ItemRepository
}

func NewYouTubeUpdater(itemRepo database.ItemRepository) *YouTubeUpdater {
	return &YouTubeUpdater{itemRepo: itemRepo}
}

func (u *YouTubeUpdater) Run(ctx context.Context, fd database.Feed, items []Item) error {
	for _, item := range items {
		if item.YouTube == nil || item.ID == "" {
			slog.Warn("Skipping youtube item without video ID", "feed_id", fd.ID, "link", item.Link)
			continue
		}

		if err := u.itemRepo.UpsertYouTubeItem(fd.ID, item.toRecord()); err != nil {
			return &PersistenceError{Op: "upsert youtube item " + item.ID, Err: err}
		}
	}

	return nil
}
