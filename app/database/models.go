package database

import (
	"time"
)

type FeedType string

const (
	FeedTypeGeneric FeedType = "generic"
	FeedTypeYouTube FeedType = "youtube"
	FeedTypeTwitter FeedType = "twitter"
)

// ValidFeedType reports whether t is one of the supported source types.
func ValidFeedType(t FeedType) bool {
	switch t {
	case FeedTypeGeneric, FeedTypeYouTube, FeedTypeTwitter:
		return true
	}
	return false
}

type Feed struct {
	ID            string // Database UUID
	URL           string // Feed URL, or account URL/handle for twitter feeds
	Title         string
	Type          FeedType
	Keywords      []string // Ordered keyword list, empty means no filtering
	ShowInTicker  bool
	IconURL       string
	LastFetchedAt *time.Time // nil until the first successful fetch
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Item struct {
	ID          string // UUID for generic items, video ID for youtube, synthetic timeline ID for twitter
	FeedID      string
	Title       string
	Link        string
	Description string
	Author      string
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Source-specific metadata, mutually exclusive
	YouTube *YouTubeMeta
	Twitter *TwitterMeta
}

type YouTubeMeta struct {
	VideoID      string
	ChannelID    string
	ThumbnailURL string
	ViewCount    *int64 // nil when the source does not report it
	LikeCount    *int64
	CommentCount *int64
	Duration     string
	Tags         []string
	CategoryID   string
}

type TwitterMeta struct {
	Username     string
	RetweetCount int64
	LikeCount    int64
}

type TickerSettings struct {
	ScrollSpeed     int
	PauseOnHover    bool
	Spacing         int // blank slots inserted after each real ticker item
	MaxItemsPerFeed int
	UpdatedAt       time.Time
}

// DefaultTickerSettings are applied when the singleton row does not exist yet.
var DefaultTickerSettings = TickerSettings{
	ScrollSpeed:     50,
	PauseOnHover:    true,
	Spacing:         0,
	MaxItemsPerFeed: 5,
}

type AuditEvent struct {
	ID        int64
	Event     string
	FeedID    string
	Detail    string
	CreatedAt time.Time
}
