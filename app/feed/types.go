package feed

import (
	"time"

	"github.com/craftwiki/feedticker/app/database"
)

// Item is a normalized feed entry produced by a source adapter, before
// persistence. ID is empty for generic items (assigned on insert) and carries
// the natural key for youtube/twitter items.
type Item struct {
	ID          string
	Title       string
	Link        string
	Description string
	Author      string
	PublishedAt time.Time

	YouTube *database.YouTubeMeta
	Twitter *database.TwitterMeta
}

func (i Item) toRecord() database.FeedItem {
	return database.FeedItem{
		ID:          i.ID,
		Title:       i.Title,
		Link:        i.Link,
		Description: i.Description,
		Author:      i.Author,
		PublishedAt: i.PublishedAt,
		YouTube:     i.YouTube,
		Twitter:     i.Twitter,
	}
}
