package rulecraft

// SessionPhase is the externally observed lifecycle stage of a session.
type SessionPhase string

const (
	SessionIdle           SessionPhase = "idle"
	SessionRuleGeneration SessionPhase = "rule-generation"
	SessionFollowUp       SessionPhase = "follow-up-message"
	SessionCompleted      SessionPhase = "completed"
)

// SessionState is the externally observed state of a generation session.
// It is mutated exclusively through Reduce, one event at a time, in
// arrival order.
type SessionState struct {
	Phase               SessionPhase
	IsGenerating        bool
	IsStreamingRule     bool
	IsStreamingFollowUp bool
	RuleContent         string
	FollowUpContent     string
	Err                 string
	Metadata            *Metadata
}

// NewSessionState returns the idle state literal.
func NewSessionState() SessionState {
	return SessionState{Phase: SessionIdle}
}

// Reduce applies one event to a session state and returns the new state.
// It is pure: the input state is not modified. The switch is exhaustive
// over the sealed Event union.
func Reduce(s SessionState, e Event) SessionState {
	switch ev := e.(type) {
	case EventPhaseStart:
		switch ev.Phase {
		case PhaseRuleGeneration:
			s.Phase = SessionRuleGeneration
			s.IsGenerating = true
			s.IsStreamingRule = true
			s.IsStreamingFollowUp = false
			s.RuleContent = ""
			s.FollowUpContent = ""
			s.Err = ""
			s.Metadata = ev.Metadata
		case PhaseFollowUp:
			s.Phase = SessionFollowUp
			s.IsStreamingRule = false
			s.IsStreamingFollowUp = true
		}
		return s

	case EventRuleContent:
		s.RuleContent += ev.Content
		return s

	case EventFollowUpContent:
		s.FollowUpContent += ev.Content
		return s

	case EventChunk:
		// The envelope vocabulary does not tag content with a phase; the
		// currently streaming accumulator receives it. A chunk before any
		// phase-start belongs to the rule by the protocol's ordering
		// invariant.
		if ev.Content == "" {
			return s
		}
		if s.IsStreamingFollowUp {
			s.FollowUpContent += ev.Content
		} else {
			s.RuleContent += ev.Content
		}
		return s

	case EventPhaseEnd:
		switch ev.Phase {
		case PhaseRuleGeneration:
			if ev.FinalContent != nil {
				s.RuleContent = *ev.FinalContent
			}
			s.IsStreamingRule = false
		case PhaseFollowUp:
			if ev.FinalContent != nil {
				s.FollowUpContent = *ev.FinalContent
			}
			s.IsStreamingFollowUp = false
			s.Phase = SessionCompleted
			s.IsGenerating = false
		}
		return s

	case EventDone:
		s.IsStreamingRule = false
		s.IsStreamingFollowUp = false
		s.Phase = SessionCompleted
		s.IsGenerating = false
		if s.Metadata != nil && ev.Filename != "" {
			meta := *s.Metadata
			meta.FileName = ev.Filename
			s.Metadata = &meta
		}
		return s

	case EventClarify:
		s.IsStreamingRule = false
		s.IsStreamingFollowUp = false
		s.IsGenerating = false
		s.Phase = SessionIdle
		return s

	case EventError:
		s.Err = ev.Message
		s.IsGenerating = false
		s.IsStreamingRule = false
		s.IsStreamingFollowUp = false
		s.Phase = SessionIdle
		return s

	case EventProgress, EventFile:
		// Observer-only events.
		return s

	default:
		return s
	}
}
