package feed

import (
	"context"
	"log/slog"

	"github.com/craftwiki/feedticker/app/database"
)

// TwitterUpdater persists the single synthetic timeline item for a twitter
// feed. Zero items is a no-op; more than one means the parser contract
// changed, so only the first is used rather than failing the batch.
type TwitterUpdater struct {
	itemRepo database.ItemRepository
}

func NewTwitterUpdater(itemRepo database.ItemRepository) *TwitterUpdater {
	return &TwitterUpdater{itemRepo: itemRepo}
}

func (u *TwitterUpdater) Run(ctx context.Context, fd database.Feed, items []Item) error {
	if len(items) == 0 {
		slog.Info("No timeline item to persist", "feed_id", fd.ID)
		return nil
	}

	if len(items) > 1 {
		slog.Warn("Expected exactly one timeline item, using the first",
			"feed_id", fd.ID, "count", len(items))
	}

	item := items[0]
	if err := u.itemRepo.UpsertTwitterItem(fd.ID, item.toRecord()); err != nil {
		return &PersistenceError{Op: "upsert twitter item " + item.ID, Err: err}
	}

	return nil
}
