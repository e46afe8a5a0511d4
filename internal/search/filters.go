package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/flashdeck/internal/progress"
)

// Difficulty selects cards by box. Zero means all boxes.
type Difficulty int

// AllDifficulties disables the difficulty facet.
const AllDifficulties Difficulty = 0

// String returns "all" or "box<N>".
func (d Difficulty) String() string {
	if d == AllDifficulties {
		return "all"
	}
	return fmt.Sprintf("box%d", int(d))
}

// Recency selects cards by when they were last reviewed.
type Recency string

const (
	RecencyAll   Recency = "all"
	RecencyToday Recency = "today"
	RecencyWeek  Recency = "week"
	RecencyNever Recency = "never"
)

// Scope selects which card fields the query is matched against.
type Scope string

const (
	ScopeBoth        Scope = "both"
	ScopeTerms       Scope = "terms"
	ScopeDefinitions Scope = "definitions"
)

// Filters is the facet configuration applied on top of the text query.
// The zero value is not valid; use DefaultFilters.
type Filters struct {
	Difficulty Difficulty `json:"difficulty"`
	Recency    Recency    `json:"recentlyReviewed"`
	Scope      Scope      `json:"searchIn"`
}

// DefaultFilters matches every card in both fields.
func DefaultFilters() Filters {
	return Filters{
		Difficulty: AllDifficulties,
		Recency:    RecencyAll,
		Scope:      ScopeBoth,
	}
}

// Active reports whether any facet differs from its default.
// A narrowed scope counts as active even though it filters nothing alone.
func (f Filters) Active() bool {
	return f.Difficulty != AllDifficulties || f.recency() != RecencyAll || f.scope() != ScopeBoth
}

// recency and scope treat zero values as the defaults.
func (f Filters) recency() Recency {
	if f.Recency == "" {
		return RecencyAll
	}
	return f.Recency
}

func (f Filters) scope() Scope {
	if f.Scope == "" {
		return ScopeBoth
	}
	return f.Scope
}

// ParseDifficulty accepts "all" (or "") and "box1" through "box6".
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return AllDifficulties, nil
	}
	rest, ok := strings.CutPrefix(s, "box")
	if !ok {
		return 0, invalidFacet("difficulty", s)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < progress.MinBox || n > progress.GraduatedBox {
		return 0, invalidFacet("difficulty", s)
	}
	return Difficulty(n), nil
}

// ParseRecency accepts all, today, week and never ("" means all).
func ParseRecency(s string) (Recency, error) {
	switch r := Recency(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RecencyAll:
		return RecencyAll, nil
	case RecencyToday, RecencyWeek, RecencyNever:
		return r, nil
	default:
		return "", invalidFacet("recentlyReviewed", s)
	}
}

// ParseScope accepts both, terms and definitions ("" means both).
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "", ScopeBoth:
		return ScopeBoth, nil
	case ScopeTerms, ScopeDefinitions:
		return sc, nil
	default:
		return "", invalidFacet("searchIn", s)
	}
}

// ParseFilters parses all three facets, failing on the first bad selector.
func ParseFilters(difficulty, recency, scope string) (Filters, error) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		return Filters{}, err
	}
	r, err := ParseRecency(recency)
	if err != nil {
		return Filters{}, err
	}
	sc, err := ParseScope(scope)
	if err != nil {
		return Filters{}, err
	}
	return Filters{Difficulty: d, Recency: r, Scope: sc}, nil
}

func invalidFacet(facet, value string) error {
	return &progress.Error{
		Code:    progress.ErrCodeInvalidArgument,
		Message: fmt.Sprintf("unknown %s selector %q", facet, value),
	}
}
