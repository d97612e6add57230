package wire_test

import (
	"strings"
	"testing"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Encoded lines must round-trip through ParseLine: the producer and the
// consumer disagree on nothing.
func TestEncoder_RoundTrip(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	enc := wire.NewEncoder(&sb)

	final := "# Rule\n"
	require.NoError(t, enc.Meta(wire.MetaPayload{
		ID:            "r1",
		RuleType:      string(rulecraft.RuleTypeProject),
		TechStack:     []string{"go"},
		Filename:      "go-style.mdc",
		SchemaVersion: wire.SchemaVersion,
	}))
	require.NoError(t, enc.Chunk("# Rule\n"))
	require.NoError(t, enc.PhaseEnd(string(rulecraft.PhaseRuleGeneration), &final))
	require.NoError(t, enc.PhaseStart(string(rulecraft.PhaseFollowUp)))
	require.NoError(t, enc.Chunk("All set."))
	require.NoError(t, enc.Done(wire.DonePayload{
		Filename:  "go-style.mdc",
		SHA256:    "abc",
		CreatedBy: "rulecraft",
		Version:   "1.0.0",
	}))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 6)

	var events []rulecraft.Event
	for _, line := range lines {
		evt, ok := wire.ParseLine(line)
		require.True(t, ok, "line did not parse: %s", line)
		events = append(events, evt)
	}

	assert.IsType(t, rulecraft.EventPhaseStart{}, events[0])
	assert.Equal(t, rulecraft.EventChunk{Content: "# Rule\n"}, events[1])
	assert.IsType(t, rulecraft.EventPhaseEnd{}, events[2])
	assert.Equal(t, rulecraft.EventPhaseStart{Phase: rulecraft.PhaseFollowUp}, events[3])
	assert.Equal(t, rulecraft.EventChunk{Content: "All set."}, events[4])
	assert.IsType(t, rulecraft.EventDone{}, events[5])
}

func TestEncoder_ErrorAndClarifyRoundTrip(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	enc := wire.NewEncoder(&sb)

	require.NoError(t, enc.Error("boom", "internal"))
	require.NoError(t, enc.Clarify("Which framework?", []string{"tech_stack"}))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	evt, ok := wire.ParseLine(lines[0])
	require.True(t, ok)
	assert.Equal(t, rulecraft.EventError{Message: "boom", Code: "internal"}, evt)

	evt, ok = wire.ParseLine(lines[1])
	require.True(t, ok)
	assert.Equal(t, rulecraft.EventClarify{
		Message:        "Which framework?",
		RequiredFields: []string{"tech_stack"},
	}, evt)
}

func TestEncoder_OneLinePerEvent(t *testing.T) {
	t.Parallel()
	var sb strings.Builder
	enc := wire.NewEncoder(&sb)

	// Content with embedded newlines must stay on a single wire line.
	require.NoError(t, enc.Chunk("line one\nline two\n"))

	out := sb.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasSuffix(out, "\n"))

	evt, ok := wire.ParseLine(strings.TrimSuffix(out, "\n"))
	require.True(t, ok)
	assert.Equal(t, rulecraft.EventChunk{Content: "line one\nline two\n"}, evt)
}
