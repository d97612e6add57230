package wire

import (
	"encoding/json"
	"strings"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// ParseLine decodes one complete line into a semantic event. It never
// fails: blank lines, malformed JSON, unknown event names, and payloads
// missing required fields all return (nil, false) and the line is
// dropped. Callers that want visibility into dropped lines log them at
// debug level.
func ParseLine(line string) (rulecraft.Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	line = strings.TrimPrefix(line, DataPrefix)
	line = strings.TrimPrefix(line, "data:")

	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return nil, false
	}
	if env.Event != "" {
		return parseEnvelope(env)
	}

	var pl phaseLine
	if err := json.Unmarshal([]byte(line), &pl); err != nil {
		return nil, false
	}
	if pl.Type != "" {
		return parsePhaseLine(pl)
	}
	return nil, false
}

func parseEnvelope(env envelope) (rulecraft.Event, bool) {
	switch env.Event {
	case EventMeta:
		var p MetaPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		if p.ID == "" || p.Filename == "" || p.SchemaVersion == "" || p.TechStack == nil {
			return nil, false
		}
		rt := rulecraft.RuleType(p.RuleType)
		if !rt.Valid() {
			return nil, false
		}
		return rulecraft.EventPhaseStart{
			Phase: rulecraft.PhaseRuleGeneration,
			Metadata: &rulecraft.Metadata{
				ID:            p.ID,
				RuleType:      rt,
				TechStack:     p.TechStack,
				FileName:      p.Filename,
				SchemaVersion: p.SchemaVersion,
			},
		}, true

	case EventChunk:
		var p ChunkPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		if p.Content == nil {
			return nil, false
		}
		return rulecraft.EventChunk{Content: *p.Content}, true

	case EventDone:
		var p DonePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		if p.Filename == "" || p.SHA256 == "" || p.CreatedBy == "" || p.Version == "" {
			return nil, false
		}
		return rulecraft.EventDone{
			Filename:  p.Filename,
			SHA256:    p.SHA256,
			CreatedBy: p.CreatedBy,
			Version:   p.Version,
		}, true

	case EventClarify:
		var p ClarifyPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		if p.Message == "" || p.RequiredFields == nil {
			return nil, false
		}
		return rulecraft.EventClarify{Message: p.Message, RequiredFields: p.RequiredFields}, true

	case EventError:
		var p ErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		if p.Message == "" || p.Code == "" {
			return nil, false
		}
		return rulecraft.EventError{Message: p.Message, Code: p.Code}, true

	case EventProgress:
		var p ProgressPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		// A progress with a phase and status is a phase transition; a
		// bare progress is informational.
		if p.Phase != "" && p.Status != "" {
			phase := rulecraft.Phase(p.Phase)
			if !phase.Valid() {
				return nil, false
			}
			switch p.Status {
			case StatusStart:
				return rulecraft.EventPhaseStart{Phase: phase}, true
			case StatusEnd:
				return rulecraft.EventPhaseEnd{Phase: phase, FinalContent: p.FinalContent}, true
			default:
				return nil, false
			}
		}
		return rulecraft.EventProgress{Stage: p.Stage}, true

	case EventFile:
		var p FilePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, false
		}
		return rulecraft.EventFile{Name: p.Name, Content: p.Content}, true

	default:
		return nil, false
	}
}

func parsePhaseLine(pl phaseLine) (rulecraft.Event, bool) {
	switch pl.Type {
	case "phase-start":
		phase := rulecraft.Phase(pl.Phase)
		if !phase.Valid() {
			return nil, false
		}
		evt := rulecraft.EventPhaseStart{Phase: phase}
		if pl.Metadata != nil {
			evt.Metadata = &rulecraft.Metadata{
				ID:            pl.Metadata.ID,
				RuleType:      rulecraft.RuleType(pl.Metadata.RuleType),
				TechStack:     pl.Metadata.TechStack,
				FileName:      pl.Metadata.FileName,
				SchemaVersion: pl.Metadata.SchemaVersion,
			}
		}
		return evt, true

	case "rule-content":
		return rulecraft.EventRuleContent{Content: pl.Content}, true

	case "follow-up-content":
		return rulecraft.EventFollowUpContent{Content: pl.Content}, true

	case "phase-end":
		phase := rulecraft.Phase(pl.Phase)
		if !phase.Valid() {
			return nil, false
		}
		return rulecraft.EventPhaseEnd{Phase: phase, FinalContent: pl.FinalContent}, true

	case "error":
		if pl.ErrorText == "" {
			return nil, false
		}
		return rulecraft.EventError{Message: pl.ErrorText}, true

	default:
		return nil, false
	}
}

// Terminal reports whether an event ends a phase or the whole session.
func Terminal(e rulecraft.Event) bool {
	switch e.(type) {
	case rulecraft.EventPhaseEnd, rulecraft.EventDone, rulecraft.EventClarify, rulecraft.EventError:
		return true
	}
	return false
}

// SessionTerminal reports whether an event ends the whole session: no
// further events follow it on a well-formed stream.
func SessionTerminal(e rulecraft.Event) bool {
	switch ev := e.(type) {
	case rulecraft.EventDone, rulecraft.EventClarify, rulecraft.EventError:
		return true
	case rulecraft.EventPhaseEnd:
		return ev.Phase == rulecraft.PhaseFollowUp
	}
	return false
}
