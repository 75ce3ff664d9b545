package portal

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/apiclient"
	"github.com/eliteadvisers/portal/internal/model"
	"github.com/eliteadvisers/portal/internal/ui"
)

// LibraryTags are the tag filters offered by the library view. "" means all.
var LibraryTags = []string{"GST", "Income Tax", "Compliance", "TDS", "PF", "ESI", "Companies Act"}

// LibraryAPI is the slice of the API the library view needs.
type LibraryAPI interface {
	SearchLibrary(ctx context.Context, q, tag string) ([]model.Article, error)
}

// Library searches the public compliance library. No session is needed.
type Library struct {
	api   LibraryAPI
	notes ui.Notifier
	log   zerolog.Logger

	mu    sync.RWMutex
	query string
	tag   string
	items []model.Article
}

// NewLibrary creates an empty library view.
func NewLibrary(api LibraryAPI, notes ui.Notifier, log zerolog.Logger) *Library {
	return &Library{
		api:   api,
		notes: notes,
		log:   log.With().Str("component", "library").Logger(),
		items: []model.Article{},
	}
}

// Search replaces the items with the results for q and tag. On failure the
// previous items stay.
func (l *Library) Search(ctx context.Context, q, tag string) error {
	l.mu.Lock()
	l.query, l.tag = q, tag
	l.mu.Unlock()

	items, err := l.api.SearchLibrary(ctx, q, tag)
	if err != nil {
		l.log.Warn().Err(err).Str("q", q).Str("tag", tag).Msg("Library search failed")
		if apiclient.IsFailure(err) {
			l.notes.Error("Unable to load library")
		} else {
			l.notes.Error("Server unavailable")
		}
		return fmt.Errorf("search library: %w", err)
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// Items returns the current results.
func (l *Library) Items() []model.Article {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.Article{}, l.items...)
}

// LibraryView is the rendered library.
type LibraryView struct {
	Query       string          `json:"q"`
	Tag         string          `json:"tag"`
	Tags        []string        `json:"tags"`
	Items       []model.Article `json:"items"`
	Placeholder string          `json:"placeholder,omitempty"`
}

// View renders the current results; an empty result shows the placeholder.
func (l *Library) View() LibraryView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v := LibraryView{
		Query: l.query,
		Tag:   l.tag,
		Tags:  LibraryTags,
		Items: append([]model.Article{}, l.items...),
	}
	if len(v.Items) == 0 {
		v.Placeholder = NoLibraryMatches
	}
	return v
}
