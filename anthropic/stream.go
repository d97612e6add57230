package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// stream implements [rulecraft.ModelStream] by parsing SSE events from
// an HTTP response body and yielding text deltas.
type stream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	ctx      context.Context
	usage    rulecraft.Usage
	err      error // terminal error, if any
	complete bool
	closed   bool
}

// Interface compliance check.
var _ rulecraft.ModelStream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
	}
}

// Next reads SSE events until the next text delta. Returns io.EOF when
// the message completes normally.
func (s *stream) Next() (string, error) {
	switch {
	case s.complete:
		return "", io.EOF
	case s.err != nil:
		return "", s.err
	case s.closed:
		return "", rulecraft.ErrStreamClosed
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			s.terminate(err)
			return "", s.err
		}

		delta, err := s.processEvent(eventType, data)
		if err != nil {
			s.terminate(err)
			return "", s.err
		}
		if s.complete {
			return "", io.EOF
		}
		if delta != "" {
			return delta, nil
		}
		// Non-text event (ping, message_start, etc.), keep reading.
	}
}

// Usage returns the token counts reported so far.
func (s *stream) Usage() rulecraft.Usage {
	return s.usage
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if !s.complete && s.err == nil {
		s.closed = true
	}
	return s.body.Close()
}

func (s *stream) terminate(err error) {
	if err == io.EOF {
		// Normal completion arrives as message_stop; a raw EOF means
		// the connection dropped mid-message.
		s.err = fmt.Errorf("anthropic: unexpected end of stream")
		return
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = ctxErr
		return
	}
	s.err = err
}

// readSSEEvent reads lines until a complete SSE event is assembled.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

// processEvent maps an SSE event to a text delta. Non-text events
// return an empty delta.
func (s *stream) processEvent(eventType, data string) (string, error) {
	switch eventType {
	case "message_start":
		return "", s.handleMessageStart(data)
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return "", s.handleMessageDelta(data)
	case "message_stop":
		s.complete = true
		return "", nil
	case "error":
		return "", s.handleError(data)
	default:
		// ping, content_block_start/stop, and unknown event types.
		return "", nil
	}
}

func (s *stream) handleMessageStart(data string) error {
	var evt sseMessageStart
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_start: %w", err)
	}
	s.usage.InputTokens = evt.Message.Usage.InputTokens
	return nil
}

func (s *stream) handleContentBlockDelta(data string) (string, error) {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return "", fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if evt.Delta.Type != "text_delta" {
		return "", nil
	}
	return evt.Delta.Text, nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}
	s.usage.OutputTokens = evt.Usage.OutputTokens
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}
