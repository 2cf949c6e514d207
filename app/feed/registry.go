package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/craftwiki/feedticker/app/database"
)

// Parser normalizes a feed's raw content into items. Adapters that perform
// their own network calls receive a nil raw argument.
type Parser interface {
	Run(ctx context.Context, fd database.Feed, raw []byte) ([]Item, error)
}

// Updater persists a filtered item list with source-type-specific
// idempotency semantics.
type Updater interface {
	Run(ctx context.Context, fd database.Feed, items []Item) error
}

// Pipeline pairs the adapter and updater for one feed type. NeedsFetch marks
// types whose raw content the refresher must fetch before parsing.
type Pipeline struct {
	Parser     Parser
	Updater    Updater
	NeedsFetch bool
}

// Registry is the static dispatch table from feed type to pipeline.
// Supporting a new source type means adding a table entry here.
type Registry struct {
	pipelines map[database.FeedType]Pipeline
}

func NewRegistry(httpClient *http.Client, userAgent string, clock Clock,
	feedRepo database.FeedRepository, itemRepo database.ItemRepository) *Registry {
	return &Registry{
		pipelines: map[database.FeedType]Pipeline{
			database.FeedTypeGeneric: {
				Parser:     NewGenericParser(),
				Updater:    NewGenericUpdater(feedRepo, itemRepo, clock),
				NeedsFetch: true,
			},
			database.FeedTypeYouTube: {
				Parser:     NewYouTubeParser(),
				Updater:    NewYouTubeUpdater(itemRepo),
				NeedsFetch: true,
			},
			database.FeedTypeTwitter: {
				Parser:     NewTwitterParser(httpClient, userAgent, clock),
				Updater:    NewTwitterUpdater(itemRepo),
				NeedsFetch: false,
			},
		},
	}
}

// Lookup resolves a feed type to its pipeline. An unknown type is a
// data-integrity problem and fails loudly.
func (r *Registry) Lookup(t database.FeedType) (Pipeline, error) {
	pipeline, ok := r.pipelines[t]
	if !ok {
		return Pipeline{}, &ConfigurationError{Reason: fmt.Sprintf("unknown feed type %q", t)}
	}
	return pipeline, nil
}
