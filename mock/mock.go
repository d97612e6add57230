// Package mock provides test doubles for rulecraft interfaces using
// function fields, plus scripted streams for event and text sequences.
package mock

import (
	"context"
	"io"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Interface compliance checks.
var (
	_ rulecraft.ModelProvider = (*Provider)(nil)
	_ rulecraft.ModelStream   = (*TextStream)(nil)
	_ rulecraft.Stream        = (*EventStream)(nil)
)

// Provider is a test double for rulecraft.ModelProvider.
// Set GenerateFn before calling Generate.
type Provider struct {
	GenerateFn func(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error)
}

// Generate delegates to GenerateFn.
func (p *Provider) Generate(ctx context.Context, req rulecraft.ModelRequest) (rulecraft.ModelStream, error) {
	return p.GenerateFn(ctx, req)
}

// TextStream is a scripted rulecraft.ModelStream. It yields Deltas in
// order and then Err (io.EOF when Err is nil).
type TextStream struct {
	Deltas []string
	Err    error
	Tokens rulecraft.Usage

	pos    int
	closed bool
}

// Next returns the next scripted delta.
func (s *TextStream) Next() (string, error) {
	if s.closed {
		return "", rulecraft.ErrStreamClosed
	}
	if s.pos < len(s.Deltas) {
		d := s.Deltas[s.pos]
		s.pos++
		return d, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Usage returns the scripted token counts.
func (s *TextStream) Usage() rulecraft.Usage {
	return s.Tokens
}

// Close marks the stream closed.
func (s *TextStream) Close() error {
	s.closed = true
	return nil
}

// EventStream is a scripted rulecraft.Stream. It yields Events in order
// and then Err (io.EOF when Err is nil).
type EventStream struct {
	Events []rulecraft.Event
	Err    error

	pos    int
	state  rulecraft.StreamState
	Closed bool
}

// Next returns the next scripted event.
func (s *EventStream) Next() (rulecraft.Event, error) {
	if s.pos < len(s.Events) {
		s.state = rulecraft.StreamStateStreaming
		evt := s.Events[s.pos]
		s.pos++
		return evt, nil
	}
	if s.Err != nil {
		s.state = rulecraft.StreamStateError
		return nil, s.Err
	}
	s.state = rulecraft.StreamStateComplete
	return nil, io.EOF
}

// State returns the current stream state.
func (s *EventStream) State() rulecraft.StreamState {
	return s.state
}

// Close marks the stream closed. The scripted position is preserved.
func (s *EventStream) Close() error {
	s.Closed = true
	return nil
}

// Streamer is a test double for session.Streamer.
// Set StreamFn before calling Stream.
type Streamer struct {
	StreamFn func(ctx context.Context, req rulecraft.GenerateRequest) (rulecraft.Stream, error)
}

// Stream delegates to StreamFn.
func (m *Streamer) Stream(ctx context.Context, req rulecraft.GenerateRequest) (rulecraft.Stream, error) {
	return m.StreamFn(ctx, req)
}
