package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func deck() []catalog.Card {
	return []catalog.Card{
		{ID: 1, Term: "Risk Appetite", Definition: "How much risk an organization accepts."},
		{ID: 2, Term: "Access Control", Definition: "Limiting who may use a resource."},
		{ID: 3, Term: "Threat Model", Definition: "A structured view of access paths an attacker could use."},
		{ID: 4, Term: "Residual Risk", Definition: "What remains after controls are applied."},
	}
}

func table() progress.Table {
	ms := now.UnixMilli()
	return progress.Table{
		1: {Box: 2, LastReviewed: ms - 2*60*60*1000},
		2: {Box: 1, LastReviewed: 0},
		3: {Box: 6, LastReviewed: ms - 3*progress.DayMillis},
	}
}

func ids(cards []catalog.Card) []int { return catalog.IDs(cards) }

func TestFilter_EmptyQueryReturnsCatalog(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(deck(), table(), q, DefaultFilters(), now)
		assert.Equal(t, []int{1, 2, 3, 4}, ids(got), "query %q", q)
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	got := Filter(deck(), table(), "RISK", DefaultFilters(), now)
	assert.Equal(t, []int{1, 4}, ids(got))
}

func TestFilter_AllTermsMustMatch(t *testing.T) {
	got := Filter(deck(), table(), "risk  appetite", DefaultFilters(), now)
	assert.Equal(t, []int{1}, ids(got))

	got = Filter(deck(), table(), "risk model", DefaultFilters(), now)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilter_Scope(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		want  []int
	}{
		{"both", ScopeBoth, []int{2, 3}},
		{"terms", ScopeTerms, []int{2}},
		{"definitions", ScopeDefinitions, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilters()
			f.Scope = tt.scope
			got := Filter(deck(), table(), "access", f, now)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_BothJoinsFieldsWithSpace(t *testing.T) {
	cards := []catalog.Card{{ID: 1, Term: "alpha", Definition: "beta"}}

	assert.Len(t, Filter(cards, nil, "alpha beta", DefaultFilters(), now), 1)
	assert.Empty(t, Filter(cards, nil, "alphabeta", DefaultFilters(), now))
}

func TestFilter_Difficulty(t *testing.T) {
	f := DefaultFilters()

	f.Difficulty = 2
	assert.Equal(t, []int{1}, ids(Filter(deck(), table(), "", f, now)))

	f.Difficulty = 6
	assert.Equal(t, []int{3}, ids(Filter(deck(), table(), "", f, now)))

	f.Difficulty = 1
	assert.Equal(t, []int{2}, ids(Filter(deck(), table(), "", f, now)), "card without a record fails every box")
}

func TestFilter_Recency(t *testing.T) {
	tests := []struct {
		recency Recency
		want    []int
	}{
		{RecencyAll, []int{1, 2, 3, 4}},
		{RecencyToday, []int{1}},
		{RecencyWeek, []int{1, 3}},
		{RecencyNever, []int{2, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.recency), func(t *testing.T) {
			f := DefaultFilters()
			f.Recency = tt.recency
			assert.Equal(t, tt.want, ids(Filter(deck(), table(), "", f, now)))
		})
	}
}

func TestFilter_RecencyBoundary(t *testing.T) {
	cards := []catalog.Card{{ID: 1, Term: "t", Definition: "d"}}
	f := DefaultFilters()
	f.Recency = RecencyToday

	exact := progress.Table{1: {Box: 1, LastReviewed: now.UnixMilli() - progress.DayMillis}}
	assert.Len(t, Filter(cards, exact, "", f, now), 1)

	over := progress.Table{1: {Box: 1, LastReviewed: now.UnixMilli() - progress.DayMillis - 1}}
	assert.Empty(t, Filter(cards, over, "", f, now))
}

func TestFilter_CombinesQueryAndFacets(t *testing.T) {
	f := DefaultFilters()
	f.Recency = RecencyNever
	assert.Equal(t, []int{4}, ids(Filter(deck(), table(), "risk", f, now)))
}

func TestFilter_UnicodeNormalization(t *testing.T) {
	cards := []catalog.Card{{ID: 1, Term: "Café Policy", Definition: "d"}}

	assert.Len(t, Filter(cards, nil, "CAFÉ", DefaultFilters(), now), 1)
}

func TestFilter_SingleCard(t *testing.T) {
	c := deck()[:1]
	assert.Len(t, Filter(c, table(), "appetite", DefaultFilters(), now), 1)
	assert.Empty(t, Filter(c, table(), "control", DefaultFilters(), now))
}

func TestNormalizeAndTerms(t *testing.T) {
	assert.Equal(t, "risk appetite", Normalize("  Risk \t APPETITE \n"))
	assert.Equal(t, []string{"risk", "appetite"}, Terms("Risk   Appetite"))
	assert.Nil(t, Terms("   "))
}

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters("box3", "week", "terms")
	require.NoError(t, err)
	assert.Equal(t, Filters{Difficulty: 3, Recency: RecencyWeek, Scope: ScopeTerms}, f)
	assert.True(t, f.Active())

	f, err = ParseFilters("", "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFilters(), f)
	assert.False(t, f.Active())
}

func TestParseFilters_Invalid(t *testing.T) {
	tests := []struct {
		name                      string
		difficulty, recency, scope string
	}{
		{"box zero", "box0", "", ""},
		{"box seven", "box7", "", ""},
		{"not a box", "hard", "", ""},
		{"recency", "", "yesterday", ""},
		{"scope", "", "", "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilters(tt.difficulty, tt.recency, tt.scope)
			require.Error(t, err)
			assert.True(t, progress.IsInvalidArgument(err))
		})
	}
}

func TestDifficulty_String(t *testing.T) {
	assert.Equal(t, "all", AllDifficulties.String())
	assert.Equal(t, "box4", Difficulty(4).String())
}

func TestFilters_ScopeAloneIsActive(t *testing.T) {
	f := DefaultFilters()
	f.Scope = ScopeDefinitions
	assert.True(t, f.Active())
}
