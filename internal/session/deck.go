package session

import (
	"math/rand/v2"

	"github.com/roach88/flashdeck/internal/catalog"
)

// Rotate returns source reordered to start at selected and wrap around.
// If selected is not in source it is put first, followed by source.
func Rotate(source []catalog.Card, selected catalog.Card) []catalog.Card {
	for i, c := range source {
		if c.ID == selected.ID {
			out := make([]catalog.Card, 0, len(source))
			out = append(out, source[i:]...)
			return append(out, source[:i]...)
		}
	}

	out := make([]catalog.Card, 0, len(source)+1)
	out = append(out, selected)
	return append(out, source...)
}

// Intersect keeps the cards of a whose id also appears in b, in a's order.
func Intersect(a, b []catalog.Card) []catalog.Card {
	keep := make(map[int]bool, len(b))
	for _, c := range b {
		keep[c.ID] = true
	}
	out := make([]catalog.Card, 0, len(a))
	for _, c := range a {
		if keep[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// shuffle permutes cards in place. A nil r uses the global source.
func shuffle(r *rand.Rand, cards []catalog.Card) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if r == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	r.Shuffle(len(cards), swap)
}

func without(cards []catalog.Card, id int) []catalog.Card {
	out := make([]catalog.Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
