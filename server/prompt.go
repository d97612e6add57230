package server

import (
	"fmt"
	"strings"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// maxSlugWords bounds filename slugs derived from free-form requests.
const maxSlugWords = 5

// slugStopWords are filler words skipped when deriving a slug.
var slugStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "to": true,
	"of": true, "in": true, "on": true, "with": true, "and": true,
	"me": true, "my": true, "our": true, "please": true,
	"create": true, "make": true, "write": true, "generate": true,
	"add": true, "rule": true, "rules": true, "command": true,
}

func slugify(message string) string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		var b strings.Builder
		for _, r := range w {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		w = b.String()
		if w == "" || slugStopWords[w] {
			continue
		}
		words = append(words, w)
		if len(words) == maxSlugWords {
			break
		}
	}
	if len(words) == 0 {
		return "untitled"
	}
	return strings.Join(words, "-")
}

// DeriveFileName maps a request to the path the generated rule should
// be saved under. Project rules live in .cursor/rules with the .mdc
// extension, commands in .cursor/commands, and user rules are plain
// markdown at the workspace root.
func DeriveFileName(ruleType rulecraft.RuleType, message string) string {
	slug := slugify(message)
	switch ruleType {
	case rulecraft.RuleTypeCommand:
		return fmt.Sprintf(".cursor/commands/%s.md", slug)
	case rulecraft.RuleTypeUser:
		return fmt.Sprintf("user-rules/%s.md", slug)
	default:
		return fmt.Sprintf(".cursor/rules/%s.mdc", slug)
	}
}

var ruleTypeInstructions = map[rulecraft.RuleType]string{
	rulecraft.RuleTypeProject: "Write a Cursor project rule in MDC format. Start with YAML frontmatter containing a one-line description and, when the rule applies only to certain files, a globs field. Follow the frontmatter with clear, imperative guidance the assistant should apply when editing matching files.",
	rulecraft.RuleTypeCommand: "Write a Cursor command in markdown. The command body is a reusable prompt the user triggers by name, so write it as direct instructions for a task, including any steps and output format.",
	rulecraft.RuleTypeUser:    "Write a Cursor user rule in plain markdown. User rules apply to every conversation, so keep the guidance concise and universally applicable, with no frontmatter.",
}

// SystemPrompt builds the instruction block for the model. The model is
// told to emit the rule file content first, then the follow-up marker
// on its own line, then a short message for the user.
func SystemPrompt(ruleType rulecraft.RuleType, techStack []string) string {
	var b strings.Builder
	b.WriteString("You are an expert at writing rules for the Cursor editor.\n\n")
	b.WriteString(ruleTypeInstructions[ruleType])
	b.WriteString("\n\n")
	if len(techStack) > 0 {
		fmt.Fprintf(&b, "The user's project uses: %s. Tailor the rule to this stack.\n\n", strings.Join(techStack, ", "))
	}
	b.WriteString("Output the complete file content first. Then, on a line by itself, output exactly:\n")
	b.WriteString(followUpMarker)
	b.WriteString("\nAfter the marker, write one or two friendly sentences telling the user what the rule does and where to save it. Do not wrap the file content in code fences.")
	return b.String()
}
