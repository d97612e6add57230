// Package markdown renders markdown text to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
//
// Rule files in MDC format open with a YAML frontmatter block delimited
// by --- lines. The frontmatter is not markdown, so it is split off and
// rendered verbatim in a muted style before the body is parsed.
package markdown

import (
	"strings"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
)

// Render parses markdown source and returns ANSI-styled terminal
// output. Paragraphs and list items are word-wrapped to width. Code
// blocks and frontmatter are rendered at full width without reflow.
func Render(source string, width int, theme rulecraft.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)

	front, body := splitFrontmatter(source)
	var out strings.Builder
	if front != "" {
		out.WriteString(r.renderFrontmatter(front))
		if body != "" {
			out.WriteString("\n\n")
		}
	}
	out.WriteString(r.render([]byte(body), width))
	return out.String()
}

// splitFrontmatter peels a leading --- delimited YAML block off source.
// Returns the block without delimiters and the remaining body. Sources
// that do not open with --- come back unchanged.
func splitFrontmatter(source string) (front, body string) {
	rest, ok := strings.CutPrefix(source, "---\n")
	if !ok {
		return "", source
	}
	front, body, ok = strings.Cut(rest, "\n---")
	if !ok {
		return "", source
	}
	body = strings.TrimPrefix(body, "\n")
	return front, strings.TrimPrefix(body, "\n")
}
