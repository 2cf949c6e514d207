package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeedRepo handles database operations for feeds
type FeedRepo struct {
	db *DB
}

var _ FeedRepository = (*FeedRepo)(nil)

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

const feedColumns = `id, url, COALESCE(title, ''), type, keywords, show_in_ticker,
       COALESCE(icon_url, ''), last_fetched_at, created_at, updated_at`

func (r *FeedRepo) GetFeed(id string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE id = ?
	`, id)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *FeedRepo) GetFeedByURL(url string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE url = ?
	`, url)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return feed, nil
}

func (r *FeedRepo) GetAllFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + `
		FROM feeds
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

// GetTickerFeeds returns ticker-enabled feeds in a stable order. The order
// defines the round-robin sequence of the ticker materializer.
func (r *FeedRepo) GetTickerFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + `
		FROM feeds
		WHERE show_in_ticker = 1
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func (r *FeedRepo) CreateFeed(feed Feed) (string, error) {
	id := feed.ID
	if id == "" {
		id = uuid.NewString()
	}

	keywords, err := marshalStrings(feed.Keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO feeds (id, url, title, type, keywords, show_in_ticker, icon_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, feed.URL, nullString(feed.Title), string(feed.Type), keywords,
		feed.ShowInTicker, nullString(feed.IconURL))
	if err != nil {
		return "", fmt.Errorf("failed to create feed: %w", err)
	}

	return id, nil
}

// UpdateFeed updates mutable feed attributes. The source type is immutable:
// changing it would invalidate the item natural-key scheme, so the column is
// deliberately absent from the SET list.
func (r *FeedRepo) UpdateFeed(feed Feed) error {
	keywords, err := marshalStrings(feed.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE feeds
		SET url = ?, title = ?, keywords = ?, show_in_ticker = ?, icon_url = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, feed.URL, nullString(feed.Title), keywords, feed.ShowInTicker,
		nullString(feed.IconURL), feed.ID)
	if err != nil {
		return fmt.Errorf("failed to update feed: %w", err)
	}

	return nil
}

func (r *FeedRepo) UpdateLastFetched(id string, fetchedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_fetched_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, fetchedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last fetched time: %w", err)
	}

	return nil
}

// DeleteFeed removes a feed; items and their metadata cascade.
func (r *FeedRepo) DeleteFeed(id string) error {
	_, err := r.db.Exec(`DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	var feedType string
	var keywords string

	err := row.Scan(
		&feed.ID, &feed.URL, &feed.Title, &feedType, &keywords, &feed.ShowInTicker,
		&feed.IconURL, &feed.LastFetchedAt, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	feed.Type = FeedType(feedType)
	feed.Keywords, err = unmarshalStrings(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}

	return &feed, nil
}

func collectFeeds(rows *sql.Rows) ([]Feed, error) {
	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
