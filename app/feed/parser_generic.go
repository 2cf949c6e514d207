package feed

import (
	"bytes"
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/craftwiki/feedticker/app/database"
)

// GenericParser normalizes pre-fetched RSS/Atom documents.
type GenericParser struct {
	gofeedParser *gofeed.Parser
}

func NewGenericParser() *GenericParser {
	return &GenericParser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *GenericParser) Run(ctx context.Context, fd database.Feed, raw []byte) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Reason: "invalid feed document", Err: err}
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, normalizeGenericItem(entry))
	}

	return items, nil
}

func normalizeGenericItem(entry *gofeed.Item) Item {
	item := Item{
		Title:       entry.Title,
		Link:        entry.Link,
		Description: entry.Description,
	}

	if item.Description == "" {
		item.Description = entry.Content
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = *entry.UpdatedParsed
	}

	if len(entry.Authors) > 0 && entry.Authors[0] != nil {
		item.Author = entry.Authors[0].Name
	} else if entry.Author != nil {
		item.Author = entry.Author.Name
	}

	return item
}
