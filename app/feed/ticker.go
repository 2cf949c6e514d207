package feed

import (
	"fmt"

	"github.com/craftwiki/feedticker/app/database"
)

// TickerSlot is one slot of the materialized ticker. A nil Item marks a
// blank spacing slot the presentation layer renders as a gap.
type TickerSlot struct {
	Item      *database.Item
	FeedTitle string
	FeedIcon  string
}

// Ticker materializes the interleaved ticker read model. Pure read, no
// mutation; it tolerates running concurrently with ingestion writes.
type Ticker struct {
	feedRepo     database.FeedRepository
	itemRepo     database.ItemRepository
	settingsRepo database.SettingsRepository
}

func NewTicker(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	settingsRepo database.SettingsRepository) *Ticker {
	return &Ticker{
		feedRepo:     feedRepo,
		itemRepo:     itemRepo,
		settingsRepo: settingsRepo,
	}
}

// Run returns up to limit slots, round-robin interleaved one item per feed
// per round so a prolific feed cannot crowd out a quiet one. After each real
// item, settings.Spacing blank slots are appended; blanks count toward
// limit. Stops early once a full pass over all feeds yields nothing.
func (t *Ticker) Run(limit int) ([]TickerSlot, error) {
	if limit <= 0 {
		return nil, nil
	}

	settings, err := t.settingsRepo.GetOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker settings: %w", err)
	}

	feeds, err := t.feedRepo.GetTickerFeeds()
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker feeds: %w", err)
	}

	perFeed := make([][]database.Item, len(feeds))
	for i, fd := range feeds {
		items, err := t.itemRepo.GetRecentItems(fd.ID, settings.MaxItemsPerFeed)
		if err != nil {
			return nil, fmt.Errorf("failed to load items for feed %s: %w", fd.ID, err)
		}
		perFeed[i] = items
	}

	slots := make([]TickerSlot, 0, limit)
	for round := 0; len(slots) < limit; round++ {
		took := false
		for i := range feeds {
			if len(slots) >= limit {
				break
			}
			if round >= len(perFeed[i]) {
				continue
			}

			slots = append(slots, TickerSlot{
				Item:      &perFeed[i][round],
				FeedTitle: feeds[i].Title,
				FeedIcon:  feeds[i].IconURL,
			})
			took = true

			for s := 0; s < settings.Spacing && len(slots) < limit; s++ {
				slots = append(slots, TickerSlot{})
			}
		}

		if !took {
			break
		}
	}

	return slots, nil
}
