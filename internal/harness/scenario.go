package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/search"
	"github.com/roach88/flashdeck/internal/session"
)

// DefaultStart is the scenario clock origin when a scenario sets none.
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Scenario defines a study scenario.
// It seeds a catalog (and optionally a persisted snapshot), runs a sequence
// of steps against a manual clock, and asserts on the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the RFC 3339 time the scenario clock starts at.
	// Empty means DefaultStart.
	Start string `yaml:"start,omitempty"`

	// StorageKey overrides progress.DefaultKey.
	StorageKey string `yaml:"storage_key,omitempty"`

	// Cards is the catalog.
	Cards []catalog.Card `yaml:"cards"`

	// Snapshot is a raw persisted blob written before init.
	// It is untrusted and may be malformed on purpose.
	Snapshot string `yaml:"snapshot,omitempty"`

	// Steps run in order after init.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action against the store, the search engine or a session.
type Step struct {
	// Action is one of the Step* constants.
	Action string `yaml:"action"`

	// Card is the card id (feedback, select).
	Card int `yaml:"card,omitempty"`

	// Easy is the answer (feedback).
	Easy bool `yaml:"easy,omitempty"`

	// Advance is a time.ParseDuration string, plus Days whole days (advance).
	Advance string `yaml:"by,omitempty"`
	Days    int    `yaml:"days,omitempty"`

	// Query and Filters drive search, and select/start when set.
	Query   string       `yaml:"query,omitempty"`
	Filters FilterClause `yaml:"filters,omitempty"`

	// Mode is the review mode (start).
	Mode string `yaml:"mode,omitempty"`

	// ExpectError is the progress error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// FilterClause is the YAML form of search.Filters.
type FilterClause struct {
	Difficulty string `yaml:"difficulty,omitempty"`
	Recency    string `yaml:"recency,omitempty"`
	Scope      string `yaml:"scope,omitempty"`
}

// Parse converts the clause to search.Filters.
func (f FilterClause) Parse() (search.Filters, error) {
	return search.ParseFilters(f.Difficulty, f.Recency, f.Scope)
}

// Step actions.
const (
	StepFeedback = "feedback"
	StepAdvance  = "advance"
	StepReset    = "reset"
	StepDue      = "due"
	StepSearch   = "search"
	StepSelect   = "select"
	StepStart    = "start"
	StepFlush    = "flush"
)

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type (Assert* constants).
	Type string `yaml:"type"`

	// Card is the card id (box, last_reviewed).
	Card int `yaml:"card,omitempty"`

	// Box is the expected box (box).
	Box int `yaml:"box,omitempty"`

	// Offset is the expected lastReviewed as a duration after the scenario
	// start, or "never" (last_reviewed).
	Offset string `yaml:"offset,omitempty"`

	// Count is the expected number of matches (due_count, search_count,
	// trace_count, warnings).
	Count int `yaml:"count"`

	// Cards are ids expected in the result (due_contains).
	Cards []int `yaml:"cards,omitempty"`

	// Query and Filters select the cards counted by search_count.
	Query   string       `yaml:"query,omitempty"`
	Filters FilterClause `yaml:"filters,omitempty"`

	// Action and Contains match trace events (trace_contains, trace_count).
	Action   string `yaml:"action,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertBox           = "box"
	AssertLastReviewed  = "last_reviewed"
	AssertDueCount      = "due_count"
	AssertDueContains   = "due_contains"
	AssertSearchCount   = "search_count"
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertWarnings      = "warnings"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// StartTime returns the parsed scenario start.
func (s *Scenario) StartTime() (time.Time, error) {
	if s.Start == "" {
		return DefaultStart, nil
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("start: %w", err)
	}
	return t.UTC(), nil
}

// validateScenario checks that required fields are present and valid.
// Catalog contents are left to progress.Init so a bad catalog can be
// observed as a CATALOG error.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := s.StartTime(); err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Action {
	case StepFeedback:
		if st.Card == 0 && st.ExpectError == "" {
			return fmt.Errorf("steps[%d]: card is required for feedback", index)
		}
	case StepAdvance:
		if st.Advance == "" && st.Days == 0 {
			return fmt.Errorf("steps[%d]: by or days is required for advance", index)
		}
		if st.Advance != "" {
			if _, err := time.ParseDuration(st.Advance); err != nil {
				return fmt.Errorf("steps[%d]: by: %w", index, err)
			}
		}
	case StepSelect:
		if st.Card == 0 {
			return fmt.Errorf("steps[%d]: card is required for select", index)
		}
	case StepStart:
		if _, err := session.ParseMode(st.Mode); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case StepReset, StepDue, StepSearch, StepFlush:
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBox:
		if a.Card == 0 || a.Box == 0 {
			return fmt.Errorf("assertions[%d]: card and box are required for box", index)
		}
	case AssertLastReviewed:
		if a.Card == 0 || a.Offset == "" {
			return fmt.Errorf("assertions[%d]: card and offset are required for last_reviewed", index)
		}
		if a.Offset != "never" {
			if _, err := time.ParseDuration(a.Offset); err != nil {
				return fmt.Errorf("assertions[%d]: offset: %w", index, err)
			}
		}
	case AssertDueCount, AssertSearchCount, AssertWarnings:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertDueContains:
		if len(a.Cards) == 0 {
			return fmt.Errorf("assertions[%d]: cards list is required for due_contains", index)
		}
	case AssertTraceContains, AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
