package server

import (
	"fmt"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

// emitterState is the producer's position in the phase sequence.
type emitterState int

const (
	emitterIdle emitterState = iota
	emitterRuleGeneration
	emitterFollowUp
	emitterCompleted
	emitterErrored
)

func (s emitterState) String() string {
	switch s {
	case emitterIdle:
		return "idle"
	case emitterRuleGeneration:
		return "rule-generation"
	case emitterFollowUp:
		return "follow-up"
	case emitterCompleted:
		return "completed"
	case emitterErrored:
		return "errored"
	}
	return "unknown"
}

// Emitter sequences the producer side of the protocol: phase-start,
// content chunks, phase-end for the rule-generation and follow-up
// phases, with an absorbing errored state reachable from any
// non-terminal state. Transitions that violate the sequence fail instead
// of emitting out-of-order events.
type Emitter struct {
	enc   *wire.Encoder
	state emitterState
}

// NewEmitter creates an Emitter writing through enc.
func NewEmitter(enc *wire.Encoder) *Emitter {
	return &Emitter{enc: enc, state: emitterIdle}
}

func (e *Emitter) invalid(op string) error {
	return fmt.Errorf("server: %s in state %s", op, e.state)
}

// StartRule opens the rule-generation phase by emitting the meta event.
func (e *Emitter) StartRule(meta wire.MetaPayload) error {
	if e.state != emitterIdle {
		return e.invalid("start rule")
	}
	if err := e.enc.Meta(meta); err != nil {
		return err
	}
	e.state = emitterRuleGeneration
	return nil
}

// RuleDelta emits one increment of rule text. Empty increments are
// dropped.
func (e *Emitter) RuleDelta(content string) error {
	if e.state != emitterRuleGeneration {
		return e.invalid("rule delta")
	}
	if content == "" {
		return nil
	}
	return e.enc.Chunk(content)
}

// StartFollowUp settles the rule phase, optionally overriding the
// client's accumulator with finalRule, and opens the follow-up phase.
func (e *Emitter) StartFollowUp(finalRule *string) error {
	if e.state != emitterRuleGeneration {
		return e.invalid("start follow-up")
	}
	if err := e.enc.PhaseEnd(string(rulecraft.PhaseRuleGeneration), finalRule); err != nil {
		return err
	}
	if err := e.enc.PhaseStart(string(rulecraft.PhaseFollowUp)); err != nil {
		return err
	}
	e.state = emitterFollowUp
	return nil
}

// FollowUpDelta emits one increment of follow-up text.
func (e *Emitter) FollowUpDelta(content string) error {
	if e.state != emitterFollowUp {
		return e.invalid("follow-up delta")
	}
	if content == "" {
		return nil
	}
	return e.enc.Chunk(content)
}

// Complete settles the follow-up phase and terminates the session with
// the done event.
func (e *Emitter) Complete(finalFollowUp *string, done wire.DonePayload) error {
	if e.state != emitterFollowUp {
		return e.invalid("complete")
	}
	if err := e.enc.PhaseEnd(string(rulecraft.PhaseFollowUp), finalFollowUp); err != nil {
		return err
	}
	if err := e.enc.Done(done); err != nil {
		return err
	}
	e.state = emitterCompleted
	return nil
}

// Clarify terminates the turn with a clarification request. Valid only
// before generation starts.
func (e *Emitter) Clarify(message string, requiredFields []string) error {
	if e.state != emitterIdle {
		return e.invalid("clarify")
	}
	if err := e.enc.Clarify(message, requiredFields); err != nil {
		return err
	}
	e.state = emitterCompleted
	return nil
}

// Fail emits an in-band error and absorbs the emitter: no further events
// follow for this request. Failing an already-terminal emitter is a
// no-op so error paths can call it unconditionally.
func (e *Emitter) Fail(message, code string) error {
	if e.state == emitterCompleted || e.state == emitterErrored {
		return nil
	}
	e.state = emitterErrored
	return e.enc.Error(message, code)
}
