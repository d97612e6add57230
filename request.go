package rulecraft

import "fmt"

// GenerateRequest describes one rule-generation call. Either Message or
// Messages must be set; when both are present Messages wins and Message
// is ignored.
type GenerateRequest struct {
	Message  string
	Messages []ChatMessage

	Model        string   // model ID, provider-specific; empty = provider default
	Provider     string   // provider tag; empty = deployment default
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
	RuleType     RuleType // empty = inferred from the message
	ProjectFiles []string // optional file list for tech-stack detection
}

// Validate checks universal constraints on GenerateRequest.
func (r GenerateRequest) Validate() error {
	if r.Message == "" && len(r.Messages) == 0 {
		return fmt.Errorf("message or messages required: %w", ErrValidation)
	}
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	if r.RuleType != "" && !r.RuleType.Valid() {
		return fmt.Errorf("unknown rule type %q: %w", r.RuleType, ErrValidation)
	}
	return nil
}

// UserText returns the text of the request's last user turn.
func (r GenerateRequest) UserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return r.Message
}
