package harness

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/search"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Action, event.Detail)
	}

	return buf.String()
}

func assertBox(result *Result, a Assertion) error {
	rec, ok := result.Final[a.Card]
	if !ok {
		return &AssertionError{
			Type:     AssertBox,
			Expected: fmt.Sprintf("card %d in box %d", a.Card, a.Box),
			Actual:   "no record",
			Trace:    result.Trace,
		}
	}
	if rec.Box != a.Box {
		return &AssertionError{
			Type:     AssertBox,
			Expected: fmt.Sprintf("card %d in box %d", a.Card, a.Box),
			Actual:   fmt.Sprintf("box %d", rec.Box),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertLastReviewed(result *Result, a Assertion) error {
	want := int64(0)
	if a.Offset != "never" {
		d, err := time.ParseDuration(a.Offset)
		if err != nil {
			return err
		}
		want = result.Start + d.Milliseconds()
	}

	rec, ok := result.Final[a.Card]
	if !ok || rec.LastReviewed != want {
		actual := "no record"
		if ok {
			actual = fmt.Sprintf("lastReviewed=%d", rec.LastReviewed)
		}
		return &AssertionError{
			Type:     AssertLastReviewed,
			Expected: fmt.Sprintf("card %d lastReviewed=%d (%s)", a.Card, want, a.Offset),
			Actual:   actual,
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertCount(kind string, want, got int, trace []TraceEvent) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d", want),
		Actual:   fmt.Sprintf("%d", got),
		Trace:    trace,
	}
}

func assertDueContains(result *Result, due []catalog.Card, a Assertion) error {
	ids := catalog.IDs(due)
	var missing []int
	for _, id := range a.Cards {
		if !slices.Contains(ids, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertDueContains,
		Expected: fmt.Sprintf("due cards include %v", a.Cards),
		Actual:   fmt.Sprintf("due=%v missing=%v", ids, missing),
		Trace:    result.Trace,
	}
}

// matchingEvents returns the trace events for action whose detail contains
// substr.
func matchingEvents(trace []TraceEvent, action, substr string) int {
	n := 0
	for _, event := range trace {
		if event.Action == action && strings.Contains(event.Detail, substr) {
			n++
		}
	}
	return n
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// Due and search assertions are evaluated at the harness clock's final time.
func EvaluateAssertions(result *Result, assertions []Assertion, h *Harness) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertBox:
			err = assertBox(result, assertion)
		case AssertLastReviewed:
			err = assertLastReviewed(result, assertion)
		case AssertDueCount:
			err = assertCount(AssertDueCount, assertion.Count, len(h.progress.DueCards()), result.Trace)
		case AssertDueContains:
			err = assertDueContains(result, h.progress.DueCards(), assertion)
		case AssertSearchCount:
			var filters search.Filters
			filters, err = assertion.Filters.Parse()
			if err == nil {
				matched := search.Filter(h.progress.Cards(), result.Final, assertion.Query, filters, h.clock.Now())
				err = assertCount(AssertSearchCount, assertion.Count, len(matched), result.Trace)
			}
		case AssertTraceContains:
			if matchingEvents(result.Trace, assertion.Action, assertion.Contains) == 0 {
				err = &AssertionError{
					Type:     AssertTraceContains,
					Expected: fmt.Sprintf("%s event containing %q", assertion.Action, assertion.Contains),
					Actual:   "not found in trace",
					Trace:    result.Trace,
				}
			}
		case AssertTraceCount:
			got := matchingEvents(result.Trace, assertion.Action, assertion.Contains)
			err = assertCount(AssertTraceCount, assertion.Count, got, result.Trace)
		case AssertWarnings:
			err = assertCount(AssertWarnings, assertion.Count, len(result.Warnings), result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
