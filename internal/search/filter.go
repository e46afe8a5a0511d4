package search

import (
	"strings"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
)

const weekMillis = 7 * progress.DayMillis

// Filter returns the cards matching query and filters, in catalog order.
//
// A blank query with default filters returns every card. The result is
// never nil.
func Filter(cards []catalog.Card, table progress.Table, query string, filters Filters, now time.Time) []catalog.Card {
	terms := Terms(query)
	nowMillis := now.UnixMilli()

	out := make([]catalog.Card, 0, len(cards))
	for _, c := range cards {
		if !matchesText(c, terms, filters.scope()) {
			continue
		}
		rec, ok := table[c.ID]
		if !matchesDifficulty(rec, ok, filters.Difficulty) {
			continue
		}
		if !matchesRecency(rec, ok, filters.recency(), nowMillis) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesText(c catalog.Card, terms []string, scope Scope) bool {
	if len(terms) == 0 {
		return true
	}

	var text string
	switch scope {
	case ScopeTerms:
		text = Normalize(c.Term)
	case ScopeDefinitions:
		text = Normalize(c.Definition)
	default:
		text = Normalize(c.Term) + " " + Normalize(c.Definition)
	}

	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func matchesDifficulty(rec progress.Record, ok bool, d Difficulty) bool {
	if d == AllDifficulties {
		return true
	}
	return ok && rec.Box == int(d)
}

func matchesRecency(rec progress.Record, ok bool, r Recency, nowMillis int64) bool {
	if r == RecencyAll {
		return true
	}
	if !ok {
		return r == RecencyNever
	}

	since := nowMillis - rec.LastReviewed
	switch r {
	case RecencyToday:
		return since <= progress.DayMillis
	case RecencyWeek:
		return since <= weekMillis
	case RecencyNever:
		return rec.LastReviewed == 0
	default:
		return true
	}
}
