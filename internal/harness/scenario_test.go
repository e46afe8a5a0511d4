package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "leitner_round_trip.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "leitner_round_trip", s.Name)
	assert.Len(t, s.Cards, 3)
	assert.Equal(t, StepFeedback, s.Steps[0].Action)
	assert.True(t, s.Steps[0].Easy)
	assert.Equal(t, 3, s.Steps[1].Days)
	assert.Equal(t, "5m", s.Steps[3].Advance)

	start, err := s.StartTime()
	require.NoError(t, err)
	assert.Equal(t, int64(1704099600000), start.UnixMilli())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	data := `
name: disk
description: loaded from disk
cards:
  - {id: 1, term: a, definition: b}
steps:
  - action: due
assertions:
  - type: due_count
    count: 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	start, err := s.StartTime()
	require.NoError(t, err)
	assert.Equal(t, DefaultStart, start)
}

func TestParseScenario_Invalid(t *testing.T) {
	base := "name: x\ndescription: y\ncards: [{id: 1, term: a, definition: b}]\n"
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", base + "stepz: []\n", "failed to parse YAML"},
		{"no name", "description: y\nsteps: [{action: due}]\nassertions: [{type: warnings}]\n", "name is required"},
		{"no steps", base + "assertions: [{type: warnings}]\n", "steps list is required"},
		{"no assertions", base + "steps: [{action: due}]\n", "assertions list is required"},
		{"unknown action", base + "steps: [{action: dance}]\nassertions: [{type: warnings}]\n", `unknown action "dance"`},
		{"bad duration", base + "steps: [{action: advance, by: soon}]\nassertions: [{type: warnings}]\n", "by:"},
		{"bad mode", base + "steps: [{action: start, mode: cram}]\nassertions: [{type: warnings}]\n", "unknown review mode"},
		{"unknown assertion", base + "steps: [{action: due}]\nassertions: [{type: vibes}]\n", `unknown assertion type "vibes"`},
		{"box without card", base + "steps: [{action: due}]\nassertions: [{type: box, box: 2}]\n", "card and box are required"},
		{"bad start", base + "start: tomorrow\nsteps: [{action: due}]\nassertions: [{type: warnings}]\n", "start:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
