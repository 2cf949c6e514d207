package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filterer reduces an item list to items matching a feed's keyword set.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run retains only items whose title or description contains at least one
// keyword as a case-insensitive substring. An empty keyword list passes all
// items through unchanged. Pure and order-preserving.
func (f *Filterer) Run(items []Item, keywords []string) []Item {
	if len(keywords) == 0 {
		return items
	}

	// A Caser is stateful and must not be shared across goroutines.
	fold := cases.Fold()

	folded := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		folded = append(folded, fold.String(keyword))
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if matchesAny(fold.String(item.Title), fold.String(item.Description), folded) {
			kept = append(kept, item)
		}
	}

	return kept
}

func matchesAny(title, description string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}
