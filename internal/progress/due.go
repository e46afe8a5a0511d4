package progress

import (
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
)

// DueCards returns the cards due for review at now, in catalog order.
//
// A card is due when its box is in [MinBox, MaxBox] and
// now >= lastReviewed + interval(box). Never-reviewed cards are always due.
// Graduated cards, cards without a record and cards with an invalid box are
// skipped. The result is never nil.
func DueCards(cards []catalog.Card, table Table, now time.Time) []catalog.Card {
	nowMillis := now.UnixMilli()
	due := make([]catalog.Card, 0)
	for _, c := range cards {
		rec, ok := table[c.ID]
		if !ok {
			continue
		}
		if rec.DueAt(nowMillis) {
			due = append(due, c)
		}
	}
	return due
}

// Summary aggregates a table for display.
type Summary struct {
	Total         int         `json:"total"`
	ByBox         map[int]int `json:"by_box"`
	Due           int         `json:"due"`
	Mastered      int         `json:"mastered"`
	NeverReviewed int         `json:"never_reviewed"`
}

// Summarize counts catalog cards per box along with due, mastered and
// never-reviewed totals. Cards without a record count as box 1, never reviewed.
func Summarize(cards []catalog.Card, table Table, now time.Time) Summary {
	s := Summary{
		Total: len(cards),
		ByBox: make(map[int]int, GraduatedBox),
	}
	for box := MinBox; box <= GraduatedBox; box++ {
		s.ByBox[box] = 0
	}

	nowMillis := now.UnixMilli()
	for _, c := range cards {
		rec, ok := table[c.ID]
		if !ok {
			rec = DefaultRecord()
		}
		s.ByBox[rec.Box]++
		if rec.Graduated() {
			s.Mastered++
		}
		if !rec.Reviewed() {
			s.NeverReviewed++
		}
		if rec.DueAt(nowMillis) {
			s.Due++
		}
	}
	return s
}
