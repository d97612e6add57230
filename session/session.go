// Package session drives a generation request end to end on the client
// side: it opens the event stream, folds events into the observable
// session state through the pure reducer, and settles into a final
// result or failure. It also hosts the completion gate and dedup guard
// for deployments that carry the protocol inside chat-transport
// messages.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

// Streamer opens an event stream for a generation request. Implemented
// by client.Client; tests substitute scripted streams.
type Streamer interface {
	Stream(ctx context.Context, req rulecraft.GenerateRequest) (rulecraft.Stream, error)
}

// Session owns one logical generation session: its observable state, its
// dedup tracking, and the orchestration of generate calls. A Session is
// owned by a single caller; concurrent GenerateRule calls on one Session
// are the caller's responsibility to serialize.
type Session struct {
	streamer Streamer
	observer func(rulecraft.Event)
	log      *slog.Logger

	state   rulecraft.SessionState
	tracker *tracker
}

// Option configures a [Session].
type Option func(*Session)

// WithObserver sets a callback invoked with every validated event before
// it is reduced, for callers that need raw-event visibility independent
// of accumulated state.
func WithObserver(fn func(rulecraft.Event)) Option {
	return func(s *Session) { s.observer = fn }
}

// WithLogger sets the tracing logger. Discarded by default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a Session that opens streams through streamer.
func New(streamer Streamer, opts ...Option) *Session {
	s := &Session{
		streamer: streamer,
		log:      slog.New(slog.DiscardHandler),
		state:    rulecraft.NewSessionState(),
		tracker:  newTracker(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns a snapshot of the observable session state.
func (s *Session) State() rulecraft.SessionState {
	return s.state
}

// Reset restores the idle state and clears dedup tracking.
func (s *Session) Reset() {
	s.state = rulecraft.NewSessionState()
	s.tracker.reset()
}

// GenerateRule runs one generation request to completion. It resolves
// with the accumulated result once the follow-up phase settles, and
// fails on transport errors, on streams that end without a terminal
// event, or on an in-band error event (whose text becomes the failure
// reason). A clarify outcome resolves successfully with Clarification
// set.
func (s *Session) GenerateRule(ctx context.Context, req rulecraft.GenerateRequest) (rulecraft.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return rulecraft.GenerationResult{}, err
	}

	// A new request owns the whole session state.
	s.state = rulecraft.NewSessionState()
	s.state.IsGenerating = true

	stream, err := s.streamer.Stream(ctx, req)
	if err != nil {
		s.state = rulecraft.NewSessionState()
		return rulecraft.GenerationResult{}, err
	}
	defer stream.Close()

	var (
		done    *rulecraft.EventDone
		clarify *rulecraft.EventClarify
	)
	for {
		evt, nextErr := stream.Next()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			s.state.IsGenerating = false
			return rulecraft.GenerationResult{}, nextErr
		}

		s.apply(evt)
		switch ev := evt.(type) {
		case rulecraft.EventDone:
			done = &ev
		case rulecraft.EventClarify:
			clarify = &ev
		}
	}

	if s.state.Err != "" {
		return rulecraft.GenerationResult{}, errors.New(s.state.Err)
	}

	if clarify != nil {
		return rulecraft.GenerationResult{
			Provider:    req.Provider,
			Model:       req.Model,
			GeneratedAt: time.Now(),
			Clarification: &rulecraft.Clarification{
				Message:        clarify.Message,
				RequiredFields: clarify.RequiredFields,
			},
		}, nil
	}

	if s.state.Phase != rulecraft.SessionCompleted {
		return rulecraft.GenerationResult{}, fmt.Errorf("session: %w", rulecraft.ErrUnexpectedEnd)
	}

	result := rulecraft.GenerationResult{
		RuleContent:     s.state.RuleContent,
		FollowUpMessage: s.state.FollowUpContent,
		Model:           req.Model,
		Provider:        req.Provider,
		GeneratedAt:     time.Now(),
	}
	if meta := s.state.Metadata; meta != nil {
		result.RuleType = meta.RuleType
		result.FileName = meta.FileName
	}
	if done != nil {
		result.FileName = done.Filename
		result.SHA256 = done.SHA256
		if done.SHA256 != "" {
			sum := sha256.Sum256([]byte(result.RuleContent))
			if got := hex.EncodeToString(sum[:]); got != done.SHA256 {
				s.log.Warn("rule checksum mismatch", "reported", done.SHA256, "computed", got)
			}
		}
	}
	return result, nil
}

// ApplyMessage routes one chat-transport message through the completion
// gate, the dedup guard, and the line parser into the reducer. It
// returns whether the message was applied. Re-evaluating the same
// message as parts arrive is safe: nothing is applied until the message
// settles, and a settled message is applied exactly once.
func (s *Session) ApplyMessage(msg Message) bool {
	if !msg.Settled() {
		return false
	}
	if !s.tracker.shouldProcess(msg.ID) {
		return false
	}

	for _, line := range strings.Split(msg.Text(), "\n") {
		evt, ok := wire.ParseLine(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				s.log.Debug("dropped undecodable line", "message_id", msg.ID, "line", line)
			}
			continue
		}
		s.apply(evt)
	}
	return true
}

// apply runs the observer and the reducer for one event, in that order.
func (s *Session) apply(evt rulecraft.Event) {
	if s.observer != nil {
		s.observer(evt)
	}
	s.state = rulecraft.Reduce(s.state, evt)
}
