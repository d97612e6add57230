package rulecraft

// Event is a sealed interface representing a decoded protocol event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventPhaseStart signals the start of a generation phase. Metadata is
// present only for the rule-generation phase.
type EventPhaseStart struct {
	Phase    Phase
	Metadata *Metadata
}

func (EventPhaseStart) event() {}

// EventRuleContent is a rule text delta, explicitly addressed to the
// rule accumulator by the type-tagged wire shape.
type EventRuleContent struct {
	Content string
}

func (EventRuleContent) event() {}

// EventFollowUpContent is a follow-up message text delta, explicitly
// addressed to the follow-up accumulator by the type-tagged wire shape.
type EventFollowUpContent struct {
	Content string
}

func (EventFollowUpContent) event() {}

// EventChunk is a content delta from the envelope wire vocabulary, which
// does not distinguish phases. The reducer routes it to whichever
// accumulator is currently streaming.
type EventChunk struct {
	Content string
}

func (EventChunk) event() {}

// EventPhaseEnd settles a phase. A non-nil FinalContent deterministically
// replaces the phase's accumulated content.
type EventPhaseEnd struct {
	Phase        Phase
	FinalContent *string
}

func (EventPhaseEnd) event() {}

// EventDone is the session terminal in the envelope wire vocabulary. It
// settles all streaming and carries the final artifact identity.
type EventDone struct {
	Filename  string
	SHA256    string
	CreatedBy string
	Version   string
}

func (EventDone) event() {}

// EventClarify halts generation for this turn and requests more input.
// It is a normal outcome, not a failure.
type EventClarify struct {
	Message        string
	RequiredFields []string
}

func (EventClarify) event() {}

// EventError is an in-band server error. It terminates the generating
// state immediately.
type EventError struct {
	Message string
	Code    string
}

func (EventError) event() {}

// EventProgress is informational. It has no reducer effect and is only
// surfaced to observers.
type EventProgress struct {
	Stage string
}

func (EventProgress) event() {}

// EventFile carries a generated auxiliary file. Reserved; observer-only.
type EventFile struct {
	Name    string
	Content string
}

func (EventFile) event() {}

// Interface compliance checks.
var (
	_ Event = EventPhaseStart{}
	_ Event = EventRuleContent{}
	_ Event = EventFollowUpContent{}
	_ Event = EventChunk{}
	_ Event = EventPhaseEnd{}
	_ Event = EventDone{}
	_ Event = EventClarify{}
	_ Event = EventError{}
	_ Event = EventProgress{}
	_ Event = EventFile{}
)
