package wire

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Encoder writes envelope-shaped protocol lines to a writer. When the
// writer implements http.Flusher each line is flushed immediately so
// events reach the client as they happen.
//
// An Encoder is owned by one response; it is not safe for concurrent use.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder creates an Encoder for w.
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

func (e *Encoder) encode(event string, payload any) error {
	body, err := json.Marshal(envelope{Event: event, Payload: mustRaw(payload)})
	if err != nil {
		return fmt.Errorf("wire: encode %s: %w", event, err)
	}
	if _, err := e.w.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("wire: write %s: %w", event, err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// mustRaw marshals a payload struct to raw JSON. Payload types contain
// only marshalable fields, so failure is a programming error.
func mustRaw(payload any) json.RawMessage {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("wire: unmarshalable payload %T: %v", payload, err))
	}
	return raw
}

// Meta writes the meta event that opens the rule-generation phase.
func (e *Encoder) Meta(p MetaPayload) error {
	return e.encode(EventMeta, p)
}

// Chunk writes a content delta.
func (e *Encoder) Chunk(content string) error {
	return e.encode(EventChunk, ChunkPayload{Content: &content})
}

// PhaseStart writes the progress line that opens a phase.
func (e *Encoder) PhaseStart(phase string) error {
	return e.encode(EventProgress, ProgressPayload{Phase: phase, Status: StatusStart})
}

// PhaseEnd writes the progress line that settles a phase. A non-nil
// finalContent overrides the client's accumulator.
func (e *Encoder) PhaseEnd(phase string, finalContent *string) error {
	return e.encode(EventProgress, ProgressPayload{Phase: phase, Status: StatusEnd, FinalContent: finalContent})
}

// Progress writes an informational progress event.
func (e *Encoder) Progress(stage string) error {
	return e.encode(EventProgress, ProgressPayload{Stage: stage})
}

// Done writes the session terminal.
func (e *Encoder) Done(p DonePayload) error {
	return e.encode(EventDone, p)
}

// Clarify writes a clarification request.
func (e *Encoder) Clarify(message string, requiredFields []string) error {
	if requiredFields == nil {
		requiredFields = []string{}
	}
	return e.encode(EventClarify, ClarifyPayload{Message: message, RequiredFields: requiredFields})
}

// Error writes an in-band error event.
func (e *Encoder) Error(message, code string) error {
	return e.encode(EventError, ErrorPayload{Message: message, Code: code})
}

// File writes a reserved file event.
func (e *Encoder) File(name, content string) error {
	return e.encode(EventFile, FilePayload{Name: name, Content: content})
}
