package session

import (
	"strings"

	"github.com/PhongLee1210/cursor-rules-craft/wire"
)

// PartState is the delivery state of one message part.
type PartState string

const (
	PartStreaming PartState = "streaming"
	PartDone      PartState = "done"
)

// PartText marks a textual message part. Other part types are opaque to
// the protocol and ignored by the completion gate.
const PartText = "text"

// MessagePart is one ordered part of an inbound transport message.
type MessagePart struct {
	Type  string
	Text  string
	State PartState
}

// Message is an inbound message on the chat transport. The protocol
// rides inside its textual parts.
type Message struct {
	ID    string
	Parts []MessagePart
}

// Settled reports whether every textual part has finished arriving.
// Only a settled message's text may be handed to the line parser;
// anything earlier risks parsing a JSON object whose closing brace has
// not arrived yet. Evaluation is side-effect-free and may be repeated as
// parts arrive.
func (m Message) Settled() bool {
	for _, p := range m.Parts {
		if p.Type == PartText && p.State != PartDone {
			return false
		}
	}
	return true
}

// Text concatenates the message's textual parts in order.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// EventOnly reports whether a settled message consists entirely of
// protocol events and therefore should not be rendered as conversational
// text. Unsettled messages are never event-only.
func (m Message) EventOnly() bool {
	if !m.Settled() {
		return false
	}
	sawEvent := false
	for _, line := range strings.Split(m.Text(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if _, ok := wire.ParseLine(line); !ok {
			return false
		}
		sawEvent = true
	}
	return sawEvent
}
