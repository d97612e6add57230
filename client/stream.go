package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

// stream implements [rulecraft.Stream] by decoding line-delimited events
// from an HTTP response body. Reads are issued one at a time; a fragment
// is fully decoded into lines and those lines fully parsed before the
// next read, so events surface in strict arrival order.
type stream struct {
	body io.ReadCloser
	ctx  context.Context
	log  *slog.Logger

	buf     wire.LineBuffer
	rd      []byte
	pending []rulecraft.Event

	state       rulecraft.StreamState
	err         error
	readErr     error
	sawTerminal bool
}

// Interface compliance check.
var _ rulecraft.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, log *slog.Logger) *stream {
	return &stream{
		body:  body,
		ctx:   ctx,
		log:   log,
		rd:    make([]byte, 4096),
		state: rulecraft.StreamStateNew,
	}
}

// Next returns the next decoded event. It returns io.EOF when the body
// ends after a session terminal, and ErrUnexpectedEnd when the body ends
// without one.
func (s *stream) Next() (rulecraft.Event, error) {
	switch s.state {
	case rulecraft.StreamStateComplete:
		return nil, io.EOF
	case rulecraft.StreamStateError:
		return nil, s.err
	case rulecraft.StreamStateClosed:
		return nil, fmt.Errorf("client: %w", rulecraft.ErrStreamClosed)
	}

	for {
		if len(s.pending) > 0 {
			evt := s.pending[0]
			s.pending = s.pending[1:]
			if wire.SessionTerminal(evt) {
				s.sawTerminal = true
			}
			return evt, nil
		}

		if s.readErr != nil {
			s.terminate(s.readErr)
			if s.state == rulecraft.StreamStateComplete {
				return nil, io.EOF
			}
			return nil, s.err
		}

		n, err := s.body.Read(s.rd)
		if n > 0 {
			s.state = rulecraft.StreamStateStreaming
			for _, line := range s.buf.Write(s.rd[:n]) {
				evt, ok := wire.ParseLine(line)
				if !ok {
					if line != "" {
						s.log.Debug("dropped undecodable line", "line", line)
					}
					continue
				}
				s.pending = append(s.pending, evt)
			}
		}
		// A read may deliver data and its error together. Queue the
		// error and keep looping so the decoded events drain first.
		if err != nil {
			s.readErr = err
		}
	}
}

// terminate resolves the end of the body into a terminal stream state.
func (s *stream) terminate(err error) {
	if err == io.EOF {
		if rest := s.buf.Rest(); rest != "" {
			// An unterminated trailing line cannot be validated as a
			// complete event and is dropped.
			s.log.Debug("dropped unterminated trailing line", "line", rest)
		}
		if s.sawTerminal {
			s.state = rulecraft.StreamStateComplete
			return
		}
		s.state = rulecraft.StreamStateError
		s.err = fmt.Errorf("client: %w", rulecraft.ErrUnexpectedEnd)
		return
	}
	s.state = rulecraft.StreamStateError
	if s.ctx.Err() != nil {
		s.err = s.ctx.Err()
		return
	}
	s.err = fmt.Errorf("client: %w", err)
}

// State returns the current stream state.
func (s *stream) State() rulecraft.StreamState {
	return s.state
}

// Close closes the underlying response body.
func (s *stream) Close() error {
	if s.state != rulecraft.StreamStateComplete && s.state != rulecraft.StreamStateError {
		s.state = rulecraft.StreamStateClosed
	}
	return s.body.Close()
}
