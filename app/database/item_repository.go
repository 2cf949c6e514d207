package database

import (
	"database/sql"
	"fmt"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// ItemRepo handles database operations for feed items and their
// source-specific metadata
type ItemRepo struct {
	db *DB
}

var _ ItemRepository = (*ItemRepo)(nil)

func NewItemRepository(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// GetItemLinks returns the set of links already stored for a feed. The
// generic updater uses it to compute the insert-if-new difference.
func (r *ItemRepo) GetItemLinks(feedID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT link FROM feed_items WHERE feed_id = ?`, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item links: %w", err)
	}
	defer rows.Close()

	links := make(map[string]struct{})
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		links[link] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link rows: %w", err)
	}

	return links, nil
}

// InsertItems bulk-inserts items for a feed. Rows whose link already exists
// for the feed are skipped; existing rows are never modified.
func (r *ItemRepo) InsertItems(feedID string, items []FeedItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO feed_items (id, feed_id, title, link, description, author, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id, link) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.Exec(item.ID, feedID, item.Title, item.Link,
			item.Description, item.Author, item.PublishedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}

	return nil
}

// UpsertYouTubeItem inserts or refreshes an item keyed by its video ID,
// along with its youtube_metadata row.
func (r *ItemRepo) UpsertYouTubeItem(feedID string, item FeedItem) error {
	if item.YouTube == nil {
		return fmt.Errorf("item %s has no youtube metadata", item.ID)
	}

	tags, err := marshalStrings(item.YouTube.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO feed_items (id, feed_id, title, link, description, author, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			description = excluded.description,
			author = excluded.author,
			published_at = excluded.published_at,
			updated_at = CURRENT_TIMESTAMP
	`, item.ID, feedID, item.Title, item.Link, item.Description, item.Author,
		item.PublishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	meta := item.YouTube
	_, err = tx.Exec(`
		INSERT INTO youtube_metadata (item_id, video_id, channel_id, thumbnail_url,
			view_count, like_count, comment_count, duration, tags, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			video_id = excluded.video_id,
			channel_id = excluded.channel_id,
			thumbnail_url = excluded.thumbnail_url,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			comment_count = excluded.comment_count,
			duration = excluded.duration,
			tags = excluded.tags,
			category_id = excluded.category_id
	`, item.ID, meta.VideoID, meta.ChannelID, meta.ThumbnailURL,
		meta.ViewCount, meta.LikeCount, meta.CommentCount, meta.Duration, tags, meta.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to upsert youtube metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// UpsertTwitterItem inserts or refreshes the synthetic timeline item for a
// twitter feed, along with its twitter_metadata row.
func (r *ItemRepo) UpsertTwitterItem(feedID string, item FeedItem) error {
	if item.Twitter == nil {
		return fmt.Errorf("item %s has no twitter metadata", item.ID)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO feed_items (id, feed_id, title, link, description, author, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			link = excluded.link,
			description = excluded.description,
			author = excluded.author,
			published_at = excluded.published_at,
			updated_at = CURRENT_TIMESTAMP
	`, item.ID, feedID, item.Title, item.Link, item.Description, item.Author,
		item.PublishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	meta := item.Twitter
	_, err = tx.Exec(`
		INSERT INTO twitter_metadata (item_id, username, retweet_count, like_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			username = excluded.username,
			retweet_count = excluded.retweet_count,
			like_count = excluded.like_count
	`, item.ID, meta.Username, meta.RetweetCount, meta.LikeCount)
	if err != nil {
		return fmt.Errorf("failed to upsert twitter metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// GetRecentItems returns the newest items for a feed with source-specific
// metadata eager-loaded, ordered by publish date descending.
func (r *ItemRepo) GetRecentItems(feedID string, limit int) ([]Item, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"i.id", "i.feed_id", "i.title", "i.link", "i.description", "i.author",
		"i.published_at", "i.created_at", "i.updated_at",
		"y.video_id", "y.channel_id", "y.thumbnail_url",
		"y.view_count", "y.like_count", "y.comment_count",
		"y.duration", "y.tags", "y.category_id",
		"t.username", "t.retweet_count", "t.like_count",
	)
	sb.From("feed_items i")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "youtube_metadata y", "y.item_id = i.id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "twitter_metadata t", "t.item_id = i.id")
	sb.Where(sb.Equal("i.feed_id", feedID))
	sb.OrderBy("i.published_at").Desc()
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItemWithMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepo) GetItemCount(feedID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feed_items WHERE feed_id = ?", feedID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *ItemRepo) GetTotalItemCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feed_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get total item count: %w", err)
	}
	return count, nil
}

func scanItemWithMeta(rows *sql.Rows) (*Item, error) {
	var item Item
	var videoID, channelID, thumbnailURL, duration, tags, categoryID sql.NullString
	var viewCount, likeCount, commentCount sql.NullInt64
	var username sql.NullString
	var retweetCount, twitterLikeCount sql.NullInt64

	err := rows.Scan(
		&item.ID, &item.FeedID, &item.Title, &item.Link, &item.Description, &item.Author,
		&item.PublishedAt, &item.CreatedAt, &item.UpdatedAt,
		&videoID, &channelID, &thumbnailURL,
		&viewCount, &likeCount, &commentCount,
		&duration, &tags, &categoryID,
		&username, &retweetCount, &twitterLikeCount,
	)
	if err != nil {
		return nil, err
	}

	if videoID.Valid {
		itemTags, err := unmarshalStrings(tags.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		item.YouTube = &YouTubeMeta{
			VideoID:      videoID.String,
			ChannelID:    channelID.String,
			ThumbnailURL: thumbnailURL.String,
			ViewCount:    nullableInt64(viewCount),
			LikeCount:    nullableInt64(likeCount),
			CommentCount: nullableInt64(commentCount),
			Duration:     duration.String,
			Tags:         itemTags,
			CategoryID:   categoryID.String,
		}
	}

	if username.Valid {
		item.Twitter = &TwitterMeta{
			Username:     username.String,
			RetweetCount: retweetCount.Int64,
			LikeCount:    twitterLikeCount.Int64,
		}
	}

	return &item, nil
}

func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
