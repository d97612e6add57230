package rulecraft

// Phase is a named stage of generation with its own start/content/end
// event triple.
type Phase string

const (
	PhaseRuleGeneration Phase = "rule-generation"
	PhaseFollowUp       Phase = "follow-up-message"
)

// Valid reports whether p is one of the two generation phases.
func (p Phase) Valid() bool {
	return p == PhaseRuleGeneration || p == PhaseFollowUp
}

// RuleType classifies the kind of cursor rule being generated.
type RuleType string

const (
	RuleTypeProject RuleType = "PROJECT_RULE"
	RuleTypeCommand RuleType = "COMMAND"
	RuleTypeUser    RuleType = "USER_RULE"
)

// Valid reports whether t is a known rule type.
func (t RuleType) Valid() bool {
	switch t {
	case RuleTypeProject, RuleTypeCommand, RuleTypeUser:
		return true
	}
	return false
}

// Metadata identifies the rule being generated. It arrives with the
// rule-generation phase start.
type Metadata struct {
	ID            string
	RuleType      RuleType
	TechStack     []string
	FileName      string
	SchemaVersion string
}
