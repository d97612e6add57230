package server_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/mock"
	"github.com/PhongLee1210/cursor-rules-craft/server"
)

func scriptedService(t *testing.T, deltas []string, streamErr error) *server.Service {
	t.Helper()
	provider := &mock.Provider{
		GenerateFn: func(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error) {
			return &mock.TextStream{Deltas: deltas, Err: streamErr}, nil
		},
	}
	return server.NewService(
		map[string]rulecraft.ModelProvider{"anthropic": provider},
		server.WithDefaultProvider("anthropic"),
		server.WithVersion("test"),
	)
}

func generate(t *testing.T, svc *server.Service, req rulecraft.GenerateRequest) (rulecraft.SessionState, []rulecraft.Event, error) {
	t.Helper()
	var buf bytes.Buffer
	err := svc.Generate(context.Background(), req, &buf)
	events := parseLines(t, &buf)
	state := rulecraft.NewSessionState()
	for _, evt := range events {
		state = rulecraft.Reduce(state, evt)
	}
	return state, events, err
}

func TestServiceGenerateCompletes(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, []string{
		"# Go errors\n", "wrap with %w\n", "<<<FOLLOW_UP>>>\n", "Saved and ready.",
	}, nil)

	state, events, err := generate(t, svc, rulecraft.GenerateRequest{
		Message:      "create a rule for Go error wrapping",
		RuleType:     rulecraft.RuleTypeProject,
		ProjectFiles: []string{"go.mod", "main.go"},
	})
	require.NoError(t, err)

	assert.Equal(t, rulecraft.SessionCompleted, state.Phase)
	assert.Equal(t, "# Go errors\nwrap with %w", state.RuleContent)
	assert.Equal(t, "Saved and ready.", state.FollowUpContent)
	require.NotNil(t, state.Metadata)
	assert.Equal(t, rulecraft.RuleTypeProject, state.Metadata.RuleType)
	assert.Equal(t, []string{"go"}, state.Metadata.TechStack)

	// The first event opens the rule phase with metadata attached.
	first, ok := events[0].(rulecraft.EventPhaseStart)
	require.True(t, ok)
	assert.Equal(t, rulecraft.PhaseRuleGeneration, first.Phase)
	require.NotNil(t, first.Metadata)

	// The done checksum covers the resolved rule content.
	var done rulecraft.EventDone
	found := false
	for _, evt := range events {
		if d, ok := evt.(rulecraft.EventDone); ok {
			done, found = d, true
		}
	}
	require.True(t, found)
	sum := sha256.Sum256([]byte(state.RuleContent))
	assert.Equal(t, hex.EncodeToString(sum[:]), done.SHA256)
	assert.Equal(t, "test", done.Version)
	assert.Equal(t, "rulecraft", done.CreatedBy)
}

func TestServiceGenerateWithoutMarker(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, []string{"# Just a rule body"}, nil)

	state, _, err := generate(t, svc, rulecraft.GenerateRequest{
		Message:  "create a rule about naming conventions",
		RuleType: rulecraft.RuleTypeProject,
	})
	require.NoError(t, err)

	assert.Equal(t, rulecraft.SessionCompleted, state.Phase)
	assert.Equal(t, "# Just a rule body", state.RuleContent)
	assert.Contains(t, state.FollowUpContent, "Your rule is ready")
}

func TestServiceClarifiesTerseRequests(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, nil, nil)

	state, events, err := generate(t, svc, rulecraft.GenerateRequest{Message: "help"})
	require.NoError(t, err)

	require.Len(t, events, 1)
	clarify, ok := events[0].(rulecraft.EventClarify)
	require.True(t, ok)
	assert.Contains(t, clarify.RequiredFields, "rule_type")
	assert.Equal(t, rulecraft.SessionIdle, state.Phase)
	assert.False(t, state.IsGenerating)
}

func TestServiceExplicitRuleTypeSkipsClarification(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, []string{"body\n<<<FOLLOW_UP>>>\nok"}, nil)

	state, _, err := generate(t, svc, rulecraft.GenerateRequest{
		Message:  "help",
		RuleType: rulecraft.RuleTypeCommand,
	})
	require.NoError(t, err)
	assert.Equal(t, rulecraft.SessionCompleted, state.Phase)
}

func TestServiceUnknownProviderWritesNothing(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, nil, nil)

	var buf bytes.Buffer
	err := svc.Generate(context.Background(), rulecraft.GenerateRequest{
		Message:  "create a rule for tests",
		Provider: "nonsense",
	}, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, server.ErrUnknownProvider)
	assert.ErrorIs(t, err, rulecraft.ErrValidation)
	assert.Zero(t, buf.Len())
}

func TestServiceInvalidRequestWritesNothing(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, nil, nil)

	var buf bytes.Buffer
	err := svc.Generate(context.Background(), rulecraft.GenerateRequest{}, &buf)
	assert.ErrorIs(t, err, rulecraft.ErrValidation)
	assert.Zero(t, buf.Len())
}

func TestServiceBackendFailureBeforeStream(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		GenerateFn: func(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := server.NewService(map[string]rulecraft.ModelProvider{"anthropic": provider})

	state, events, err := generate(t, svc, rulecraft.GenerateRequest{
		Message:  "create a rule for testing style",
		RuleType: rulecraft.RuleTypeProject,
	})
	require.Error(t, err)

	require.Len(t, events, 1)
	evt, ok := events[0].(rulecraft.EventError)
	require.True(t, ok)
	assert.Equal(t, server.CodeBackendError, evt.Code)
	assert.NotEmpty(t, state.Err)
}

func TestServiceBackendFailureMidStream(t *testing.T) {
	t.Parallel()

	svc := scriptedService(t, []string{"partial rule "}, errors.New("stream reset"))

	state, events, err := generate(t, svc, rulecraft.GenerateRequest{
		Message:  "create a rule for logging practices",
		RuleType: rulecraft.RuleTypeProject,
	})
	require.Error(t, err)

	// The turn ends with an in-band error, not a done event.
	last, ok := events[len(events)-1].(rulecraft.EventError)
	require.True(t, ok)
	assert.Equal(t, server.CodeBackendError, last.Code)
	assert.NotEmpty(t, state.Err)
	for _, evt := range events {
		_, isDone := evt.(rulecraft.EventDone)
		assert.False(t, isDone)
	}
}

func TestServicePassesConversationToProvider(t *testing.T) {
	t.Parallel()

	var captured rulecraft.ModelRequest
	provider := &mock.Provider{
		GenerateFn: func(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error) {
			captured = req
			return &mock.TextStream{Deltas: []string{"r\n<<<FOLLOW_UP>>>\nok"}}, nil
		},
	}
	svc := server.NewService(
		map[string]rulecraft.ModelProvider{"anthropic": provider},
		server.WithDefaultModel("claude-sonnet-4-5"),
	)

	msgs := []rulecraft.ChatMessage{
		{Role: rulecraft.RoleUser, Content: "create a rule for SQL migrations"},
		{Role: rulecraft.RoleAssistant, Content: "What database do you use?"},
		{Role: rulecraft.RoleUser, Content: "postgres, rule for SQL migrations"},
	}
	_, _, err := generate(t, svc, rulecraft.GenerateRequest{
		Messages: msgs,
		RuleType: rulecraft.RuleTypeProject,
	})
	require.NoError(t, err)

	assert.Equal(t, msgs, captured.Messages)
	assert.Equal(t, "claude-sonnet-4-5", captured.Model)
	assert.Contains(t, captured.SystemPrompt, "<<<FOLLOW_UP>>>")
}
