package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/craftwiki/feedticker/app/database"
)

const youtubeFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015"
      xmlns:media="http://search.yahoo.com/mrss/"
      xmlns="http://www.w3.org/2005/Atom">
  <title>Test Channel</title>
  <entry>
    <id>yt:video:vid001</id>
    <yt:videoId>vid001</yt:videoId>
    <yt:channelId>UCchannel01</yt:channelId>
    <title>First Video</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=vid001"/>
    <author>
      <name>Test Channel</name>
      <uri>https://www.youtube.com/channel/UCchannel01</uri>
    </author>
    <published>2024-05-01T10:00:00+00:00</published>
    <media:group>
      <media:title>First Video</media:title>
      <media:thumbnail url="https://i.ytimg.com/vi/vid001/hqdefault.jpg" width="480" height="360"/>
      <media:description>A video about sourdough</media:description>
      <media:keywords>baking, sourdough, bread</media:keywords>
      <media:community>
        <media:starRating count="250" average="5.00" min="1" max="5"/>
        <media:statistics views="12345"/>
      </media:community>
    </media:group>
  </entry>
  <entry>
    <id>yt:video:vid002</id>
    <yt:videoId>vid002</yt:videoId>
    <yt:channelId>UCchannel01</yt:channelId>
    <title>Second Video</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=vid002"/>
    <author>
      <name>Test Channel</name>
    </author>
    <published>2024-05-02T10:00:00+00:00</published>
    <media:group>
      <media:title>Second Video</media:title>
      <media:description>No ratings yet</media:description>
      <media:community>
        <media:statistics views="7"/>
      </media:community>
    </media:group>
  </entry>
</feed>`

func TestYouTubeParser_ParsesEntries(t *testing.T) {
	parser := NewYouTubeParser()

	items, err := parser.Run(context.Background(), database.Feed{Type: database.FeedTypeYouTube}, []byte(youtubeFeedXML))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "vid001" {
		t.Errorf("Expected item ID 'vid001', got %q", first.ID)
	}
	if first.Title != "First Video" {
		t.Errorf("Expected title 'First Video', got %q", first.Title)
	}
	if first.Link != "https://www.youtube.com/watch?v=vid001" {
		t.Errorf("Unexpected link: %q", first.Link)
	}
	if first.Author != "Test Channel" {
		t.Errorf("Expected author 'Test Channel', got %q", first.Author)
	}
	if first.PublishedAt.IsZero() {
		t.Error("Expected published date to be set")
	}

	meta := first.YouTube
	if meta == nil {
		t.Fatal("Expected youtube metadata")
	}
	if meta.VideoID != "vid001" {
		t.Errorf("Expected video ID 'vid001', got %q", meta.VideoID)
	}
	if meta.ChannelID != "UCchannel01" {
		t.Errorf("Expected channel ID 'UCchannel01', got %q", meta.ChannelID)
	}
	if meta.ThumbnailURL != "https://i.ytimg.com/vi/vid001/hqdefault.jpg" {
		t.Errorf("Unexpected thumbnail: %q", meta.ThumbnailURL)
	}
	if meta.ViewCount == nil || *meta.ViewCount != 12345 {
		t.Errorf("Expected view count 12345, got %v", meta.ViewCount)
	}
	if meta.LikeCount == nil || *meta.LikeCount != 250 {
		t.Errorf("Expected like count 250, got %v", meta.LikeCount)
	}
	if len(meta.Tags) != 3 || meta.Tags[0] != "baking" || meta.Tags[2] != "bread" {
		t.Errorf("Unexpected tags: %v", meta.Tags)
	}
	if first.Twitter != nil {
		t.Error("YouTube item must not carry twitter metadata")
	}
}

func TestYouTubeParser_MissingRatingMeansNilLikeCount(t *testing.T) {
	parser := NewYouTubeParser()

	items, err := parser.Run(context.Background(), database.Feed{Type: database.FeedTypeYouTube}, []byte(youtubeFeedXML))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	second := items[1]
	if second.YouTube == nil {
		t.Fatal("Expected youtube metadata")
	}
	if second.YouTube.LikeCount != nil {
		t.Errorf("Expected nil like count for missing rating block, got %v", *second.YouTube.LikeCount)
	}
	if second.YouTube.ViewCount == nil || *second.YouTube.ViewCount != 7 {
		t.Errorf("Expected view count 7, got %v", second.YouTube.ViewCount)
	}
}

func TestYouTubeParser_InvalidDocument(t *testing.T) {
	parser := NewYouTubeParser()

	_, err := parser.Run(context.Background(), database.Feed{}, []byte("definitely not xml"))
	if err == nil {
		t.Fatal("Expected error for invalid document")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError, got %T: %v", err, err)
	}
}

func TestYouTubeParser_NonAtomDocument(t *testing.T) {
	rss := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Not YouTube</title>
    <item><title>Hello</title><link>https://example.com/1</link></item>
  </channel>
</rss>`

	parser := NewYouTubeParser()

	_, err := parser.Run(context.Background(), database.Feed{}, []byte(rss))
	if err == nil {
		t.Fatal("Expected error for non-atom document")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError, got %T: %v", err, err)
	}
}

func TestYouTubeParser_EmptyFeedIsNotAnError(t *testing.T) {
	empty := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <title>Quiet Channel</title>
</feed>`

	parser := NewYouTubeParser()

	items, err := parser.Run(context.Background(), database.Feed{}, []byte(empty))
	if err != nil {
		t.Fatalf("Expected no error for zero entries, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(items))
	}
}
