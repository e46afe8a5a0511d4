package harness

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/flashdeck/internal/progress"
)

// Render formats a result as the plain-text trace stored in golden files.
// The output depends only on the scenario, never on wall-clock time.
func Render(name string, result *Result) []byte {
	start := time.UnixMilli(result.Start).UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "start: %s\n", start.Format(time.RFC3339))

	b.WriteString("trace:\n")
	for _, ev := range result.Trace {
		fmt.Fprintf(&b, "  [%d] %s %s %s\n", ev.Seq, formatOffset(time.Duration(ev.At)*time.Millisecond), ev.Action, ev.Detail)
	}

	b.WriteString("final:\n")
	ids := make([]int, 0, len(result.Final))
	for id := range result.Final {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		rec := result.Final[id]
		fmt.Fprintf(&b, "  card %d: box=%d last=%s\n", id, rec.Box, renderLast(start, rec))
	}

	return []byte(b.String())
}

func renderLast(start time.Time, rec progress.Record) string {
	if !rec.Reviewed() {
		return "never"
	}
	return formatOffset(time.UnixMilli(rec.LastReviewed).Sub(start))
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Render(scenarioName, result))
}
