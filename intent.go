package rulecraft

import "strings"

// Keyword tables for intent classification. Matching is case-insensitive
// substring containment on the whole message.
var (
	commandKeywords = []string{
		"slash command", "command", "shortcut", "/generate", "workflow step",
		"run when i type", "invoke",
	}
	userRuleKeywords = []string{
		"user rule", "global rule", "all projects", "every project",
		"all my projects", "always apply", "personal preference", "globally",
	}
	projectRuleKeywords = []string{
		"project rule", "this project", "this repo", "this repository",
		"codebase", "our code", "cursor rule",
	}
)

// DetectIntent classifies a user message into a rule type with a
// confidence in [0, 1]. It is a pure keyword heuristic and deliberately
// not part of the streaming core; callers that know the rule type should
// set it on the request instead.
func DetectIntent(message string) (RuleType, float64) {
	lower := strings.ToLower(message)

	command := countMatches(lower, commandKeywords)
	user := countMatches(lower, userRuleKeywords)
	project := countMatches(lower, projectRuleKeywords)

	best, hits := RuleTypeProject, project
	if command > hits {
		best, hits = RuleTypeCommand, command
	}
	if user > hits {
		best, hits = RuleTypeUser, user
	}

	if hits == 0 {
		// Nothing matched: default to a project rule with low confidence.
		return RuleTypeProject, 0.3
	}
	confidence := 0.5 + 0.2*float64(hits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return best, confidence
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
