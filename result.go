package rulecraft

import "time"

// Clarification is the outcome of a turn that halted to request more
// input. It is a normal result, not a failure.
type Clarification struct {
	Message        string
	RequiredFields []string
}

// GenerationResult is the settled outcome of a GenerateRule call.
type GenerationResult struct {
	RuleContent     string
	FollowUpMessage string
	RuleType        RuleType
	FileName        string
	SHA256          string
	Model           string
	Provider        string
	GeneratedAt     time.Time

	// Clarification is non-nil when the server asked for more input
	// instead of generating. All other content fields are then empty.
	Clarification *Clarification
}
