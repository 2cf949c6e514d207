package api

import (
	"github.com/craftwiki/feedticker/app/database"
	"github.com/craftwiki/feedticker/app/feed"
	"github.com/craftwiki/feedticker/app/tasks"
)

type Handler struct {
	feedRepo     database.FeedRepository
	itemRepo     database.ItemRepository
	settingsRepo database.SettingsRepository
	auditRepo    database.AuditRepository
	ticker       *feed.Ticker
	runner       *tasks.Runner
}

// FeedPayload is the create/update request body for a feed.
type FeedPayload struct {
	URL          string   `json:"url" binding:"required"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	Keywords     []string `json:"keywords"`
	ShowInTicker bool     `json:"show_in_ticker"`
	IconURL      string   `json:"icon_url"`
}

// SettingsPayload is the ticker settings update request body.
type SettingsPayload struct {
	ScrollSpeed     int  `json:"scroll_speed"`
	PauseOnHover    bool `json:"pause_on_hover"`
	Spacing         int  `json:"spacing"`
	MaxItemsPerFeed int  `json:"max_items_per_feed"`
}

// tickerSlotJSON renders one ticker slot; spacing slots serialize as null.
type tickerSlotJSON struct {
	ID          string                `json:"id"`
	FeedID      string                `json:"feed_id"`
	FeedTitle   string                `json:"feed_title,omitempty"`
	FeedIcon    string                `json:"feed_icon,omitempty"`
	Title       string                `json:"title"`
	Link        string                `json:"link"`
	Description string                `json:"description"`
	Author      string                `json:"author,omitempty"`
	PublishedAt string                `json:"published_at"`
	YouTube     *database.YouTubeMeta `json:"youtube,omitempty"`
	Twitter     *database.TwitterMeta `json:"twitter,omitempty"`
}
