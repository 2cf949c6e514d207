package database

import (
	"time"
)

// FeedItem is the updater-facing shape of an item to be persisted.
// It carries no database-managed columns (created_at, updated_at).
type FeedItem struct {
	ID          string
	Title       string
	Link        string
	Description string
	Author      string
	PublishedAt time.Time

	YouTube *YouTubeMeta
	Twitter *TwitterMeta
}
