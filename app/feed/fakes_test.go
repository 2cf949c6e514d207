package feed

import (
	"sort"
	"time"

	"github.com/craftwiki/feedticker/app/database"
)

// In-memory repository fakes shared by the feed package tests.

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeFeedRepo struct {
	feeds       []database.Feed
	lastFetched map[string]time.Time
}

func newFakeFeedRepo(feeds ...database.Feed) *fakeFeedRepo {
	return &fakeFeedRepo{
		feeds:       feeds,
		lastFetched: make(map[string]time.Time),
	}
}

func (r *fakeFeedRepo) GetFeed(id string) (*database.Feed, error) {
	for i := range r.feeds {
		if r.feeds[i].ID == id {
			fd := r.feeds[i]
			return &fd, nil
		}
	}
	return nil, nil
}

func (r *fakeFeedRepo) GetFeedByURL(url string) (*database.Feed, error) {
	for i := range r.feeds {
		if r.feeds[i].URL == url {
			fd := r.feeds[i]
			return &fd, nil
		}
	}
	return nil, nil
}

func (r *fakeFeedRepo) GetAllFeeds() ([]database.Feed, error) {
	return append([]database.Feed(nil), r.feeds...), nil
}

func (r *fakeFeedRepo) GetTickerFeeds() ([]database.Feed, error) {
	var feeds []database.Feed
	for _, fd := range r.feeds {
		if fd.ShowInTicker {
			feeds = append(feeds, fd)
		}
	}
	return feeds, nil
}

func (r *fakeFeedRepo) GetFeedCount() (int, error) {
	return len(r.feeds), nil
}

func (r *fakeFeedRepo) CreateFeed(fd database.Feed) (string, error) {
	r.feeds = append(r.feeds, fd)
	return fd.ID, nil
}

func (r *fakeFeedRepo) UpdateFeed(fd database.Feed) error {
	for i := range r.feeds {
		if r.feeds[i].ID == fd.ID {
			r.feeds[i] = fd
		}
	}
	return nil
}

func (r *fakeFeedRepo) UpdateLastFetched(id string, fetchedAt time.Time) error {
	r.lastFetched[id] = fetchedAt
	return nil
}

func (r *fakeFeedRepo) DeleteFeed(id string) error {
	for i := range r.feeds {
		if r.feeds[i].ID == id {
			r.feeds = append(r.feeds[:i], r.feeds[i+1:]...)
			break
		}
	}
	return nil
}

type fakeItemRepo struct {
	items map[string][]database.Item // keyed by feed ID
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string][]database.Item)}
}

func (r *fakeItemRepo) GetItemLinks(feedID string) (map[string]struct{}, error) {
	links := make(map[string]struct{})
	for _, item := range r.items[feedID] {
		links[item.Link] = struct{}{}
	}
	return links, nil
}

func (r *fakeItemRepo) GetRecentItems(feedID string, limit int) ([]database.Item, error) {
	items := append([]database.Item(nil), r.items[feedID]...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *fakeItemRepo) GetItemCount(feedID string) (int, error) {
	return len(r.items[feedID]), nil
}

func (r *fakeItemRepo) GetTotalItemCount() (int, error) {
	total := 0
	for _, items := range r.items {
		total += len(items)
	}
	return total, nil
}

func (r *fakeItemRepo) InsertItems(feedID string, items []database.FeedItem) error {
	links, _ := r.GetItemLinks(feedID)
	for _, item := range items {
		if _, exists := links[item.Link]; exists {
			continue
		}
		links[item.Link] = struct{}{}
		r.items[feedID] = append(r.items[feedID], recordToItem(feedID, item))
	}
	return nil
}

func (r *fakeItemRepo) UpsertYouTubeItem(feedID string, item database.FeedItem) error {
	return r.upsert(feedID, item)
}

func (r *fakeItemRepo) UpsertTwitterItem(feedID string, item database.FeedItem) error {
	return r.upsert(feedID, item)
}

func (r *fakeItemRepo) upsert(feedID string, item database.FeedItem) error {
	for i := range r.items[feedID] {
		if r.items[feedID][i].ID == item.ID {
			r.items[feedID][i] = recordToItem(feedID, item)
			return nil
		}
	}
	r.items[feedID] = append(r.items[feedID], recordToItem(feedID, item))
	return nil
}

func recordToItem(feedID string, record database.FeedItem) database.Item {
	return database.Item{
		ID:          record.ID,
		FeedID:      feedID,
		Title:       record.Title,
		Link:        record.Link,
		Description: record.Description,
		Author:      record.Author,
		PublishedAt: record.PublishedAt,
		YouTube:     record.YouTube,
		Twitter:     record.Twitter,
	}
}

type fakeSettingsRepo struct {
	settings *database.TickerSettings
}

func (r *fakeSettingsRepo) GetOrCreate() (*database.TickerSettings, error) {
	if r.settings == nil {
		defaults := database.DefaultTickerSettings
		r.settings = &defaults
	}
	settings := *r.settings
	return &settings, nil
}

func (r *fakeSettingsRepo) Update(settings database.TickerSettings) error {
	r.settings = &settings
	return nil
}

var (
	_ database.FeedRepository     = (*fakeFeedRepo)(nil)
	_ database.ItemRepository     = (*fakeItemRepo)(nil)
	_ database.SettingsRepository = (*fakeSettingsRepo)(nil)
)
