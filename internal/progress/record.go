package progress

import "time"

const (
	// MinBox is the box every new or failed card starts in.
	MinBox = 1

	// MaxBox is the last scheduled box.
	MaxBox = 5

	// GraduatedBox holds mastered cards. They are never due.
	GraduatedBox = MaxBox + 1

	// DayMillis is one day in milliseconds.
	DayMillis int64 = 24 * 60 * 60 * 1000
)

// intervalDays is the review interval per scheduled box.
var intervalDays = map[int]int64{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

// Record is the mastery state of one card.
// LastReviewed is milliseconds since the epoch; 0 means never reviewed.
type Record struct {
	Box          int   `json:"box"`
	LastReviewed int64 `json:"lastReviewed"`
}

// DefaultRecord is the state of a card that has never been reviewed.
func DefaultRecord() Record {
	return Record{Box: MinBox, LastReviewed: 0}
}

// Table maps card ids to their records.
type Table map[int]Record

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for id, rec := range t {
		out[id] = rec
	}
	return out
}

// Valid reports whether r satisfies the record invariants.
func (r Record) Valid() bool {
	return r.Box >= MinBox && r.Box <= GraduatedBox && r.LastReviewed >= 0
}

// Reviewed reports whether the card has ever been reviewed.
func (r Record) Reviewed() bool {
	return r.LastReviewed != 0
}

// Graduated reports whether the card has left the schedule.
func (r Record) Graduated() bool {
	return r.Box == GraduatedBox
}

// Apply returns the record after one answer at time now.
// Easy moves the card up one box, capped at GraduatedBox.
// Hard sends it back to MinBox from any box, including GraduatedBox.
func (r Record) Apply(easy bool, now time.Time) Record {
	next := MinBox
	if easy {
		next = min(r.Box+1, GraduatedBox)
		if next < MinBox {
			next = MinBox
		}
	}
	return Record{Box: next, LastReviewed: now.UnixMilli()}
}

// IntervalMillis returns the review interval for a scheduled box.
// It returns false for boxes outside [MinBox, MaxBox].
func IntervalMillis(box int) (int64, bool) {
	days, ok := intervalDays[box]
	if !ok {
		return 0, false
	}
	return days * DayMillis, true
}

// Interval is IntervalMillis as a time.Duration.
func Interval(box int) (time.Duration, bool) {
	ms, ok := IntervalMillis(box)
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// NextDue returns when the card becomes due, in milliseconds.
// A never-reviewed card is due at 0. Graduated or invalid boxes return false.
func (r Record) NextDue() (int64, bool) {
	interval, ok := IntervalMillis(r.Box)
	if !ok {
		return 0, false
	}
	if r.LastReviewed == 0 {
		return 0, true
	}
	return r.LastReviewed + interval, true
}

// DueAt reports whether the card is due at nowMillis.
// The boundary is inclusive: a box-3 card reviewed exactly seven days ago is due.
func (r Record) DueAt(nowMillis int64) bool {
	due, ok := r.NextDue()
	if !ok {
		return false
	}
	return nowMillis >= due
}
