package feed

import (
	"fmt"

	"github.com/craftwiki/feedticker/app/database"
)

// FetchError is a network or HTTP-level failure reaching a source. Fetches
// are not retried within a run; the next scheduled batch tries again.
type FetchError struct {
	URL        string
	StatusCode int    // 0 when the request never got a response
	Body       string // response body snippet for non-2xx responses
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed or structurally unexpected source document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError is an updater database failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError indicates a data-integrity problem, e.g. an unknown
// feed type reaching dispatch. It is not transient and should fail loudly.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Reason)
}

// RefreshError wraps any pipeline failure with identifying feed context so
// the batch runner can log which feed failed without inspecting the feed.
type RefreshError struct {
	FeedID    string
	FeedTitle string
	FeedType  database.FeedType
	Err       error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s feed %q (%s): %v", e.FeedType, e.FeedTitle, e.FeedID, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }
