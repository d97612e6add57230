package server_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/server"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

func testMeta() wire.MetaPayload {
	return wire.MetaPayload{
		ID:            "rule_test",
		RuleType:      string(rulecraft.RuleTypeProject),
		TechStack:     []string{"go"},
		Filename:      ".cursor/rules/test.mdc",
		SchemaVersion: wire.SchemaVersion,
	}
}

func parseLines(t *testing.T, buf *bytes.Buffer) []rulecraft.Event {
	t.Helper()
	var events []rulecraft.Event
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" {
			continue
		}
		evt, ok := wire.ParseLine(line)
		require.True(t, ok, "unparsable line: %s", line)
		events = append(events, evt)
	}
	return events
}

func TestEmitterFullSequence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	em := server.NewEmitter(wire.NewEncoder(&buf))

	finalRule := "# Rule"
	finalFollow := "All set."
	require.NoError(t, em.StartRule(testMeta()))
	require.NoError(t, em.RuleDelta("# Ru"))
	require.NoError(t, em.RuleDelta("le"))
	require.NoError(t, em.StartFollowUp(&finalRule))
	require.NoError(t, em.FollowUpDelta("All set."))
	require.NoError(t, em.Complete(&finalFollow, wire.DonePayload{
		Filename: ".cursor/rules/test.mdc", SHA256: "aa", CreatedBy: "rulecraft", Version: "dev",
	}))

	state := rulecraft.NewSessionState()
	for _, evt := range parseLines(t, &buf) {
		state = rulecraft.Reduce(state, evt)
	}
	assert.Equal(t, rulecraft.SessionCompleted, state.Phase)
	assert.Equal(t, "# Rule", state.RuleContent)
	assert.Equal(t, "All set.", state.FollowUpContent)
	assert.False(t, state.IsGenerating)
}

func TestEmitterRejectsOutOfOrderTransitions(t *testing.T) {
	t.Parallel()

	t.Run("content before start", func(t *testing.T) {
		t.Parallel()
		em := server.NewEmitter(wire.NewEncoder(&bytes.Buffer{}))
		assert.Error(t, em.RuleDelta("x"))
		assert.Error(t, em.FollowUpDelta("x"))
	})

	t.Run("complete before follow-up", func(t *testing.T) {
		t.Parallel()
		em := server.NewEmitter(wire.NewEncoder(&bytes.Buffer{}))
		require.NoError(t, em.StartRule(testMeta()))
		assert.Error(t, em.Complete(nil, wire.DonePayload{}))
	})

	t.Run("double start", func(t *testing.T) {
		t.Parallel()
		em := server.NewEmitter(wire.NewEncoder(&bytes.Buffer{}))
		require.NoError(t, em.StartRule(testMeta()))
		assert.Error(t, em.StartRule(testMeta()))
	})

	t.Run("clarify after start", func(t *testing.T) {
		t.Parallel()
		em := server.NewEmitter(wire.NewEncoder(&bytes.Buffer{}))
		require.NoError(t, em.StartRule(testMeta()))
		assert.Error(t, em.Clarify("more detail please", nil))
	})
}

func TestEmitterDropsEmptyDeltas(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	em := server.NewEmitter(wire.NewEncoder(&buf))
	require.NoError(t, em.StartRule(testMeta()))
	before := buf.Len()
	require.NoError(t, em.RuleDelta(""))
	assert.Equal(t, before, buf.Len())
}

func TestEmitterFailAbsorbs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	em := server.NewEmitter(wire.NewEncoder(&buf))
	require.NoError(t, em.StartRule(testMeta()))
	require.NoError(t, em.Fail("backend gone", "backend_error"))

	// Further emission is rejected and repeated failure is silent.
	assert.Error(t, em.RuleDelta("late"))
	before := buf.Len()
	require.NoError(t, em.Fail("again", "backend_error"))
	assert.Equal(t, before, buf.Len())

	events := parseLines(t, &buf)
	last, ok := events[len(events)-1].(rulecraft.EventError)
	require.True(t, ok)
	assert.Equal(t, "backend gone", last.Message)
}
