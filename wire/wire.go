// Package wire implements the line-delimited event protocol: the chunk
// decoder that reassembles lines split across network reads, the
// tolerant per-line event parser, and the producer-side encoder.
//
// Each line is one JSON object in one of two envelope shapes. The
// canonical shape tags an event name with a payload object:
//
//	{"event":"chunk","payload":{"content":"..."}}
//
// optionally prefixed with "data: " in prefix-tagged deployments. The
// alternate shape tags the phase vocabulary inline:
//
//	{"type":"rule-content","content":"..."}
//
// Both decode to the same semantic rulecraft.Event union.
package wire

import "encoding/json"

// Envelope event vocabulary. Fixed; lines naming any other event are
// discarded by the parser.
const (
	EventMeta     = "meta"
	EventChunk    = "chunk"
	EventDone     = "done"
	EventClarify  = "clarify"
	EventError    = "error"
	EventProgress = "progress"
	EventFile     = "file"
)

// SchemaVersion is the protocol version stamped into meta payloads.
const SchemaVersion = "1"

// DataPrefix tags lines in prefix-tagged deployments.
const DataPrefix = "data: "

// envelope is the canonical wire shape.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MetaPayload opens the rule-generation phase.
type MetaPayload struct {
	ID            string   `json:"id"`
	RuleType      string   `json:"rule_type"`
	TechStack     []string `json:"tech_stack"`
	Filename      string   `json:"filename"`
	SchemaVersion string   `json:"schema_version"`
}

// ChunkPayload is a content delta. Content is a pointer so a missing
// field can be told apart from a present-but-empty delta.
type ChunkPayload struct {
	Content *string `json:"content"`
}

// DonePayload terminates the session and identifies the final artifact.
type DonePayload struct {
	Filename  string `json:"filename"`
	SHA256    string `json:"sha256"`
	CreatedBy string `json:"created_by"`
	Version   string `json:"version"`
}

// ClarifyPayload halts the turn and requests more input.
type ClarifyPayload struct {
	Message        string   `json:"message"`
	RequiredFields []string `json:"required_fields"`
}

// ErrorPayload is an in-band server failure.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ProgressPayload is informational. The producer additionally uses it to
// carry phase transitions: Status "start"/"end" with a Phase marks the
// boundary between the rule and follow-up phases, and an end may carry
// the phase's deterministic final content.
type ProgressPayload struct {
	Stage        string  `json:"stage,omitempty"`
	Phase        string  `json:"phase,omitempty"`
	Status       string  `json:"status,omitempty"`
	FinalContent *string `json:"final_content,omitempty"`
}

// Progress status values for phase transitions.
const (
	StatusStart = "start"
	StatusEnd   = "end"
)

// FilePayload is reserved. No required fields are enforced.
type FilePayload struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
}

// phaseLine is the type-tagged alternate wire shape.
type phaseLine struct {
	Type         string          `json:"type"`
	Phase        string          `json:"phase,omitempty"`
	Content      string          `json:"content,omitempty"`
	FinalContent *string         `json:"finalContent,omitempty"`
	ErrorText    string          `json:"errorText,omitempty"`
	Metadata     *phaseLineMeta  `json:"metadata,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

type phaseLineMeta struct {
	ID            string   `json:"id,omitempty"`
	RuleType      string   `json:"ruleType,omitempty"`
	TechStack     []string `json:"techStack,omitempty"`
	FileName      string   `json:"fileName,omitempty"`
	SchemaVersion string   `json:"schemaVersion,omitempty"`
}
