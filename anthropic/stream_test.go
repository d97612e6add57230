package anthropic_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/anthropic"
)

// sseResponse is a helper to build SSE responses for tests.
type sseResponse struct {
	events []sseEvent
}

type sseEvent struct {
	event string
	data  string
}

func (s sseResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, evt := range s.events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.event, evt.data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// textStreamResponse returns a simple text streaming SSE response.
func textStreamResponse() sseResponse {
	return sseResponse{events: []sseEvent{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-20250514","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"# Rule"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" body"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}
}

func streamFromSSE(t *testing.T, resp sseResponse) rulecraft.ModelStream {
	t.Helper()
	srv := httptest.NewServer(resp.handler())
	t.Cleanup(srv.Close)
	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	stream, err := client.Generate(context.Background(), rulecraft.ModelRequest{
		Messages: []rulecraft.ChatMessage{
			{Role: rulecraft.RoleUser, Content: "Hi"},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func collectDeltas(t *testing.T, s rulecraft.ModelStream) []string {
	t.Helper()
	var deltas []string
	for {
		d, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		deltas = append(deltas, d)
	}
	return deltas
}

func TestStream_TextResponse(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())

	deltas := collectDeltas(t, s)

	assert.Equal(t, []string{"# Rule", " body"}, deltas)
	assert.Equal(t, 10, s.Usage().InputTokens)
	assert.Equal(t, 5, s.Usage().OutputTokens)
}

func TestStream_NextAfterEOF(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())

	collectDeltas(t, s)

	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStream_ErrorEvent(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":3,"output_tokens":0}}}`},
		{"error", `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`},
	}}
	s := streamFromSSE(t, resp)

	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded_error")
	assert.Contains(t, err.Error(), "Overloaded")

	// The error is sticky.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_UnexpectedEnd(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":3,"output_tokens":0}}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`},
	}}
	s := streamFromSSE(t, resp)

	d, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "partial", d)

	_, err = s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of stream")
}

func TestStream_CloseBeforeDone(t *testing.T) {
	t.Parallel()
	s := streamFromSSE(t, textStreamResponse())

	require.NoError(t, s.Close())

	_, err := s.Next()
	assert.ErrorIs(t, err, rulecraft.ErrStreamClosed)
}

func TestStream_MalformedDelta(t *testing.T) {
	t.Parallel()
	resp := sseResponse{events: []sseEvent{
		{"content_block_delta", `not json`},
	}}
	s := streamFromSSE(t, resp)

	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_block_delta")
}
