package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/craftwiki/feedticker/app/database"
)

func TestExtractUsername(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"https://twitter.com/@foo", "foo"},
		{"https://twitter.com/foo", "foo"},
		{"http://www.twitter.com/foo", "foo"},
		{"x.com/foo", "foo"},
		{"https://x.com/foo?lang=en", "foo"},
		{"twitter.com/#!/foo", "foo"},
		{"https://twitter.com/foo/status/123", "foo"},
		{"@foo", "foo"},
		{"foo", "foo"},
		{"  foo  ", "foo"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractUsername(tc.input); got != tc.expected {
			t.Errorf("ExtractUsername(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestTwitterParser_BuildsSyntheticTimelineItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://twitter.com/craftwiki" {
			t.Errorf("Unexpected oEmbed url parameter: %q", got)
		}
		if got := r.URL.Query().Get("omit_script"); got != "true" {
			t.Errorf("Expected omit_script=true, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"url": "https://twitter.com/craftwiki",
			"author_name": "Craft Wiki",
			"author_url": "https://twitter.com/craftwiki",
			"html": "<blockquote>latest posts</blockquote>"
		}`))
	}))
	defer server.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	parser := NewTwitterParser(server.Client(), "test-agent", &fakeClock{now: now})
	parser.Endpoint = server.URL

	fd := database.Feed{URL: "https://twitter.com/craftwiki", Type: database.FeedTypeTwitter}

	items, err := parser.Run(context.Background(), fd, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected exactly 1 item, got %d", len(items))
	}

	item := items[0]
	if item.ID != "twitter-timeline-craftwiki" {
		t.Errorf("Expected synthetic ID 'twitter-timeline-craftwiki', got %q", item.ID)
	}
	if item.Title != "Twitter Timeline: Craft Wiki" {
		t.Errorf("Unexpected title: %q", item.Title)
	}
	if item.Link != "https://twitter.com/craftwiki" {
		t.Errorf("Unexpected link: %q", item.Link)
	}
	if !strings.Contains(item.Description, "latest posts") {
		t.Errorf("Expected embed HTML in description, got %q", item.Description)
	}
	if !item.PublishedAt.Equal(now) {
		t.Errorf("Expected published date %v, got %v", now, item.PublishedAt)
	}
	if item.Twitter == nil || item.Twitter.Username != "craftwiki" {
		t.Errorf("Expected twitter metadata with username 'craftwiki', got %+v", item.Twitter)
	}
	if item.YouTube != nil {
		t.Error("Twitter item must not carry youtube metadata")
	}
}

func TestTwitterParser_FallsBackToUsernameTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"html": "<blockquote></blockquote>", "author_url": "https://twitter.com/someone"}`))
	}))
	defer server.Close()

	parser := NewTwitterParser(server.Client(), "test-agent", SystemClock())
	parser.Endpoint = server.URL

	items, err := parser.Run(context.Background(), database.Feed{URL: "someone"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if items[0].Title != "Twitter Timeline: someone" {
		t.Errorf("Expected username fallback title, got %q", items[0].Title)
	}
	if items[0].Link != "https://twitter.com/someone" {
		t.Errorf("Expected author URL fallback link, got %q", items[0].Link)
	}
}

func TestTwitterParser_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such user"))
	}))
	defer server.Close()

	parser := NewTwitterParser(server.Client(), "test-agent", SystemClock())
	parser.Endpoint = server.URL

	_, err := parser.Run(context.Background(), database.Feed{URL: "ghost"}, nil)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T: %v", err, err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", fetchErr.StatusCode)
	}
	if !strings.Contains(fetchErr.Body, "no such user") {
		t.Errorf("Expected response body in error, got %q", fetchErr.Body)
	}
}

func TestTwitterParser_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	parser := NewTwitterParser(server.Client(), "test-agent", SystemClock())
	parser.Endpoint = server.URL

	_, err := parser.Run(context.Background(), database.Feed{URL: "someone"}, nil)
	if err == nil {
		t.Fatal("Expected error for malformed response")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError, got %T: %v", err, err)
	}
}

func TestTwitterParser_EmptyUsername(t *testing.T) {
	parser := NewTwitterParser(http.DefaultClient, "test-agent", SystemClock())

	_, err := parser.Run(context.Background(), database.Feed{URL: "https://twitter.com/"}, nil)
	if err == nil {
		t.Fatal("Expected error for empty username")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected ParseError, got %T: %v", err, err)
	}
}
