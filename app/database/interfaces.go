package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(id string) (*Feed, error)
	GetFeedByURL(url string) (*Feed, error)
	GetAllFeeds() ([]Feed, error)
	GetTickerFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	CreateFeed(feed Feed) (string, error)
	UpdateFeed(feed Feed) error
	UpdateLastFetched(id string, fetchedAt time.Time) error
	DeleteFeed(id string) error
}

type ItemRepository interface {
	GetItemLinks(feedID string) (map[string]struct{}, error)
	GetRecentItems(feedID string, limit int) ([]Item, error)
	GetItemCount(feedID string) (int, error)
	GetTotalItemCount() (int, error)

	InsertItems(feedID string, items []FeedItem) error
	UpsertYouTubeItem(feedID string, item FeedItem) error
	UpsertTwitterItem(feedID string, item FeedItem) error
}

type SettingsRepository interface {
	GetOrCreate() (*TickerSettings, error)
	Update(settings TickerSettings) error
}

type AuditRepository interface {
	Insert(event, feedID, detail string) error
	GetRecent(limit int) ([]AuditEvent, error)
}
