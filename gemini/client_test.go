package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/gemini"
)

func TestConvertMessages_Roles(t *testing.T) {
	t.Parallel()
	msgs := []rulecraft.ChatMessage{
		{Role: rulecraft.RoleUser, Content: "Hello"},
		{Role: rulecraft.RoleAssistant, Content: "Let me help."},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 2)

	assert.Equal(t, "user", got[0].Role)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hello", got[0].Parts[0].Text)

	assert.Equal(t, "model", got[1].Role)
	require.Len(t, got[1].Parts, 1)
	assert.Equal(t, "Let me help.", got[1].Parts[0].Text)
}

func TestConvertMessages_SkipsSystemTurns(t *testing.T) {
	t.Parallel()
	msgs := []rulecraft.ChatMessage{
		{Role: rulecraft.RoleSystem, Content: "not forwarded"},
		{Role: rulecraft.RoleUser, Content: "Hi"},
	}
	got := gemini.ConvertMessages(msgs)
	require.Len(t, got, 1)
	assert.Equal(t, "user", got[0].Role)
}

func TestConvertMessages_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, gemini.ConvertMessages(nil))
}
