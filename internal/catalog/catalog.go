package catalog

import (
	"errors"
	"fmt"
)

// Card is a single flashcard. Cards are never mutated after loading.
type Card struct {
	ID         int    `json:"id" yaml:"id"`
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
}

// ErrEmpty is returned when a catalog contains no cards.
var ErrEmpty = errors.New("catalog is empty")

// ValidationError describes why a catalog cannot be used.
//
// Index is the zero-based position of the offending card, or -1 when the
// problem is not tied to a single card.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("card[%d].%s: %s", e.Index, e.Field, e.Message)
	case e.Index >= 0:
		return fmt.Sprintf("card[%d]: %s", e.Index, e.Message)
	default:
		return e.Message
	}
}

// Validate checks that cards form a usable catalog: non-empty, every card
// satisfies the schema, and ids are unique.
func Validate(cards []Card) error {
	if len(cards) == 0 {
		return ErrEmpty
	}

	if err := validateSchema(cards); err != nil {
		return err
	}

	seen := make(map[int]int, len(cards))
	for i, c := range cards {
		if first, ok := seen[c.ID]; ok {
			return &ValidationError{
				Index:   i,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id %d (first seen at card[%d])", c.ID, first),
			}
		}
		seen[c.ID] = i
	}

	return nil
}

// Index maps card ids to their catalog position.
// Callers must pass a validated catalog.
func Index(cards []Card) map[int]int {
	idx := make(map[int]int, len(cards))
	for i, c := range cards {
		idx[c.ID] = i
	}
	return idx
}

// IDs returns the card ids in catalog order.
func IDs(cards []Card) []int {
	ids := make([]int, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

// Lookup returns the card with the given id.
func Lookup(cards []Card, id int) (Card, bool) {
	for _, c := range cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}
