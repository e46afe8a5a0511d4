package search

import (
	"strings"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
)

// Stats summarizes one Results call.
type Stats struct {
	Total            int  `json:"total"`
	Matched          int  `json:"matched"`
	HasActiveFilters bool `json:"has_active_filters"`
	HasQuery         bool `json:"has_query"`
}

// Engine holds the current query and filters for a front end.
//
// Thread-safety: Engine is not safe for concurrent use. A front end owns one
// Engine and drives it from a single goroutine.
type Engine struct {
	query       string
	filters     Filters
	highlighter *Highlighter
}

// NewEngine creates an engine with an empty query, default filters and the
// given highlighter (nil means DefaultMarker).
func NewEngine(h *Highlighter) *Engine {
	if h == nil {
		h = NewHighlighter(DefaultMarker)
	}
	return &Engine{filters: DefaultFilters(), highlighter: h}
}

// Query returns the raw query as last set.
func (e *Engine) Query() string { return e.query }

// Filters returns the current filters.
func (e *Engine) Filters() Filters { return e.filters }

// SetQuery replaces the query. The raw text is kept; normalization happens
// at match time.
func (e *Engine) SetQuery(q string) { e.query = q }

// SetFilters replaces the filters.
func (e *Engine) SetFilters(f Filters) { e.filters = f }

// ClearSearch empties the query and keeps the filters.
func (e *Engine) ClearSearch() { e.query = "" }

// ResetFilters restores DefaultFilters and keeps the query.
func (e *Engine) ResetFilters() { e.filters = DefaultFilters() }

// ClearAll empties the query and restores DefaultFilters.
func (e *Engine) ClearAll() {
	e.ClearSearch()
	e.ResetFilters()
}

// HasQuery reports whether the query has any non-space text.
func (e *Engine) HasQuery() bool {
	return strings.TrimSpace(e.query) != ""
}

// Active reports whether search narrows the catalog at all, i.e. a query
// is set or a facet differs from its default.
func (e *Engine) Active() bool {
	return e.HasQuery() || e.filters.Active()
}

// Results filters cards with the current query and filters.
func (e *Engine) Results(cards []catalog.Card, table progress.Table, now time.Time) ([]catalog.Card, Stats) {
	matched := Filter(cards, table, e.query, e.filters, now)
	return matched, Stats{
		Total:            len(cards),
		Matched:          len(matched),
		HasActiveFilters: e.filters.Active(),
		HasQuery:         e.HasQuery(),
	}
}

// Highlight renders text with the engine's marker and current query.
func (e *Engine) Highlight(text string) string {
	return e.highlighter.Highlight(text, e.query)
}
