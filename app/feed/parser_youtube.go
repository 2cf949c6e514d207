package feed

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/craftwiki/feedticker/app/database"
)

// YouTubeParser normalizes pre-fetched YouTube channel Atom documents into
// items carrying youtube metadata. The video ID is both the item's natural
// key and its primary identifier.
type YouTubeParser struct {
	gofeedParser *gofeed.Parser
}

func NewYouTubeParser() *YouTubeParser {
	return &YouTubeParser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *YouTubeParser) Run(ctx context.Context, fd database.Feed, raw []byte) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Reason: "invalid youtube feed document", Err: err}
	}

	if parsed.FeedType != "atom" {
		return nil, &ParseError{Reason: "expected an atom document with feed.entry elements, got " + parsed.FeedType}
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item, err := p.normalizeEntry(entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *YouTubeParser) normalizeEntry(entry *gofeed.Item) (Item, error) {
	videoID := extValue(entry.Extensions, "yt", "videoId")
	if videoID == "" {
		return Item{}, &ParseError{Reason: "entry is missing yt:videoId"}
	}

	meta := &database.YouTubeMeta{
		VideoID:   videoID,
		ChannelID: extValue(entry.Extensions, "yt", "channelId"),
		// Dislike counts are no longer exposed by the upstream source.
	}

	item := Item{
		ID:          videoID,
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
		YouTube:     meta,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	}

	if entry.Author != nil {
		item.Author = entry.Author.Name
	}

	if group := extChild(entry.Extensions, "media", "group"); group != nil {
		p.applyMediaGroup(&item, meta, group)
	}

	return item, nil
}

func (p *YouTubeParser) applyMediaGroup(item *Item, meta *database.YouTubeMeta, group *ext.Extension) {
	if item.Description == "" {
		item.Description = childValue(group, "description")
	}

	if thumb := firstChild(group, "thumbnail"); thumb != nil {
		meta.ThumbnailURL = thumb.Attrs["url"]
	}

	if content := firstChild(group, "content"); content != nil {
		meta.Duration = content.Attrs["duration"]
	}

	if keywords := childValue(group, "keywords"); keywords != "" {
		meta.Tags = splitTags(keywords)
	}

	if category := firstChild(group, "category"); category != nil {
		meta.CategoryID = category.Attrs["label"]
		if meta.CategoryID == "" {
			meta.CategoryID = category.Value
		}
	}

	community := firstChild(group, "community")
	if community == nil {
		return
	}

	if stats := firstChild(community, "statistics"); stats != nil {
		meta.ViewCount = parseCount(stats.Attrs["views"])
		meta.CommentCount = parseCount(stats.Attrs["comments"])
	}

	// A missing star rating block means the like count is unknown, not zero.
	if rating := firstChild(community, "starRating"); rating != nil {
		meta.LikeCount = parseCount(rating.Attrs["count"])
	}
}

func extValue(extensions ext.Extensions, namespace, name string) string {
	e := extChild(extensions, namespace, name)
	if e == nil {
		return ""
	}
	return e.Value
}

func extChild(extensions ext.Extensions, namespace, name string) *ext.Extension {
	ns, ok := extensions[namespace]
	if !ok {
		return nil
	}
	elems, ok := ns[name]
	if !ok || len(elems) == 0 {
		return nil
	}
	return &elems[0]
}

func firstChild(parent *ext.Extension, name string) *ext.Extension {
	elems, ok := parent.Children[name]
	if !ok || len(elems) == 0 {
		return nil
	}
	return &elems[0]
}

func childValue(parent *ext.Extension, name string) string {
	e := firstChild(parent, name)
	if e == nil {
		return ""
	}
	return e.Value
}

func splitTags(keywords string) []string {
	parts := strings.Split(keywords, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseCount coerces a numeric attribute to an int64; nil when absent or
// malformed, since the source does not always report counters.
func parseCount(value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
