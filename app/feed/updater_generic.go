package feed

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftwiki/feedticker/app/database"
)

// GenericUpdater persists items for generic feeds. Natural key: the link.
// New links are bulk-inserted; items already stored are never touched, even
// if their upstream content changed.
type GenericUpdater struct {
	feedRepo database.FeedRepository
	itemRepo database.ItemRepository
	clock    Clock
}

func NewGenericUpdater(feedRepo database.FeedRepository, itemRepo database.ItemRepository, clock Clock) *GenericUpdater {
	return &GenericUpdater{
		feedRepo: feedRepo,
		itemRepo: itemRepo,
		clock:    clock,
	}
}

func (u *GenericUpdater) Run(ctx context.Context, fd database.Feed, items []Item) error {
	stored, err := u.itemRepo.GetItemLinks(fd.ID)
	if err != nil {
		return &PersistenceError{Op: "load stored links", Err: err}
	}

	newItems := make([]database.FeedItem, 0, len(items))
	for _, item := range items {
		if _, exists := stored[item.Link]; exists {
			continue
		}

		record := item.toRecord()
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		newItems = append(newItems, record)
	}

	// The conflict-ignore insert is a safety net against a concurrent
	// refresh sneaking rows in between the read and the write.
	if err := u.itemRepo.InsertItems(fd.ID, newItems); err != nil {
		return &PersistenceError{Op: "insert items", Err: err}
	}

	// Stamped even when zero new items were found.
	if err := u.feedRepo.UpdateLastFetched(fd.ID, u.clock.Now()); err != nil {
		return &PersistenceError{Op: "stamp last fetched", Err: err}
	}

	return nil
}
