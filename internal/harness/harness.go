package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/progress"
	"github.com/roach88/flashdeck/internal/search"
	"github.com/roach88/flashdeck/internal/session"
	"github.com/roach88/flashdeck/internal/store"
	"github.com/roach88/flashdeck/internal/testutil"
)

// Harness executes one scenario.
// It owns a throwaway SQLite database, a manual clock and a session with a
// fixed id and seeded shuffle.
type Harness struct {
	store    *store.Store
	progress *progress.Store
	session  *session.Session
	clock    *testutil.ManualClock
	start    time.Time
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database, seeded with the snapshot if any
// 2. Initialize the progress store against the scenario catalog
// 3. Execute steps, recording one trace event each
// 4. Evaluate assertions against the final state
//
// A catalog the progress store rejects is returned as an error.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	start, err := scenario.StartTime()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	key := scenario.StorageKey
	if key == "" {
		key = progress.DefaultKey
	}
	if scenario.Snapshot != "" {
		if err := st.Write(ctx, key, []byte(scenario.Snapshot)); err != nil {
			return nil, fmt.Errorf("failed to seed snapshot: %w", err)
		}
	}

	clock := testutil.NewManualClock(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	ps := progress.New(st,
		progress.WithKey(key),
		progress.WithClock(clock),
		progress.WithLogger(logger),
	)

	h := &Harness{
		store:    st,
		progress: ps,
		clock:    clock,
		start:    start,
		logger:   logger,
		session: session.New(ps,
			session.WithRand(rand.New(rand.NewPCG(1, 1))),
			session.WithIDGenerator(testutil.NewFixedIDGenerator("scenario-"+scenario.Name)),
			session.WithLogger(logger),
		),
	}

	result := NewResult()
	result.Start = start.UnixMilli()

	report, err := ps.Init(ctx, scenario.Cards)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progress: %w", err)
	}
	for _, w := range report.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}
	result.AddTrace("init", 0, fmt.Sprintf("found=%t dirty=%t cards=%d warnings=%d",
		report.Found, report.Dirty, report.Cards, len(report.Warnings)))

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}

	result.Final = ps.Snapshot()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h) {
		result.AddError(msg)
	}

	if err := ps.Close(ctx); err != nil && !progress.IsRecoverable(err) {
		return nil, fmt.Errorf("failed to close progress: %w", err)
	}

	return result, nil
}

// executeStep runs one step and appends its trace event.
//
// Store errors are part of the trace rather than failures of the run. A
// step whose error code differs from ExpectError marks the result failed.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	var detail string
	var stepErr error

	switch step.Action {
	case StepFeedback:
		rec, err := h.progress.Feedback(ctx, step.Card, step.Easy)
		stepErr = err
		detail = fmt.Sprintf("card=%d easy=%t", step.Card, step.Easy)
		if err == nil || progress.IsRecoverable(err) {
			detail += fmt.Sprintf(" box=%d last=%s", rec.Box, h.formatLast(rec.LastReviewed))
		}

	case StepAdvance:
		var d time.Duration
		if step.Advance != "" {
			parsed, err := time.ParseDuration(step.Advance)
			if err != nil {
				return err
			}
			d = parsed
		}
		d += time.Duration(step.Days) * 24 * time.Hour
		now := h.clock.Advance(d)
		detail = "now=" + formatOffset(now.Sub(h.start))

	case StepReset:
		stepErr = h.progress.ResetAll(ctx)
		detail = fmt.Sprintf("cards=%d", len(h.progress.Snapshot()))

	case StepDue:
		detail = fmt.Sprintf("cards=%v", catalog.IDs(h.progress.DueCards()))

	case StepSearch:
		filters, err := step.Filters.Parse()
		if err != nil {
			stepErr = err
			detail = fmt.Sprintf("query=%q", step.Query)
			break
		}
		matched := search.Filter(h.progress.Cards(), h.progress.Snapshot(), step.Query, filters, h.clock.Now())
		detail = fmt.Sprintf("query=%q filters=%s/%s/%s matched=%d/%d cards=%v",
			step.Query, filters.Difficulty, filters.Recency, filters.Scope,
			len(matched), len(h.progress.Cards()), catalog.IDs(matched))

	case StepSelect:
		if err := h.applySearch(step); err != nil {
			stepErr = err
			break
		}
		stepErr = h.session.SelectCard(step.Card)
		detail = fmt.Sprintf("card=%d deck=%v", step.Card, catalog.IDs(h.session.Deck()))

	case StepStart:
		if err := h.applySearch(step); err != nil {
			stepErr = err
			break
		}
		mode, err := session.ParseMode(step.Mode)
		if err != nil {
			return err
		}
		stepErr = h.session.Start(mode)
		_, total := h.session.Position()
		detail = fmt.Sprintf("mode=%s cards=%d message=%q", mode, total, h.session.Message())

	case StepFlush:
		stepErr = h.progress.Flush(ctx)
		detail = fmt.Sprintf("dirty=%t", h.progress.Dirty())

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	code := string(progress.CodeOf(stepErr))
	switch {
	case stepErr == nil && step.ExpectError != "":
		result.AddError(fmt.Sprintf("steps[%d]: expected %s error, got none", i, step.ExpectError))
	case stepErr != nil && code != step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d]: unexpected error: %v", i, stepErr))
	}
	if stepErr != nil {
		if progress.IsRecoverable(stepErr) {
			result.Warnings = append(result.Warnings, stepErr.Error())
		}
		detail = strings.TrimSpace(detail + " error=" + errorLabel(stepErr))
	}

	h.logger.Debug("step executed", "step", i, "action", step.Action, "detail", detail)
	result.AddTrace(step.Action, h.clock.Now().Sub(h.start).Milliseconds(), detail)
	return nil
}

// applySearch points the session's search engine at the step's query.
func (h *Harness) applySearch(step Step) error {
	filters, err := step.Filters.Parse()
	if err != nil {
		return err
	}
	e := h.session.Engine()
	e.SetQuery(step.Query)
	e.SetFilters(filters)
	return nil
}

// formatLast renders a lastReviewed value relative to the scenario start.
func (h *Harness) formatLast(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return formatOffset(time.UnixMilli(ms).Sub(h.start))
}

// formatOffset renders d as +<days>d<hh>h<mm>m.
func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	return fmt.Sprintf("%s%dd%02dh%02dm", sign, days, hours, minutes)
}

func errorLabel(err error) string {
	if code := progress.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}
