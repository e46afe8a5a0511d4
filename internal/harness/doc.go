// Package harness runs study scenarios against the real progress store.
//
// A scenario seeds a catalog (and optionally a persisted snapshot), drives
// the store, the search engine and a review session through a list of steps
// on a manual clock, and then checks assertions on the final state.
//
// # Scenario Format
//
//	name: leitner_round_trip
//	description: "Easy, easy, hard sends a card back to box 1"
//	start: "2024-01-01T09:00:00Z"
//	cards:
//	  - { id: 1, term: "Risk Appetite", definition: "..." }
//	snapshot: '{"1":{"box":3,"lastReviewed":0}}'
//	steps:
//	  - action: feedback
//	    card: 1
//	    easy: true
//	  - action: advance
//	    days: 3
//	  - action: search
//	    query: risk
//	    filters: { difficulty: box2, recency: week, scope: terms }
//	  - action: feedback
//	    card: 0
//	    expect_error: INVALID_ARGUMENT
//	assertions:
//	  - type: box
//	    card: 1
//	    box: 2
//	  - type: last_reviewed
//	    card: 1
//	    offset: 0s
//	  - type: due_count
//	    count: 0
//
// Step actions are feedback, advance, reset, due, search, select, start and
// flush. Assertion types are box, last_reviewed, due_count, due_contains,
// search_count, trace_contains, trace_count and warnings.
//
// # Deterministic Testing
//
// Every scenario runs on a fresh in-memory SQLite database, a
// testutil.ManualClock that only moves on advance steps, a fixed session id
// and a seeded shuffle. The rendered trace is therefore byte-identical
// across runs and is compared against testdata/golden/<name>.golden.
package harness
