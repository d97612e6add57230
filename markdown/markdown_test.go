package markdown_test

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	rulecraft "github.com/PhongLee1210/cursor-rules-craft"
	"github.com/PhongLee1210/cursor-rules-craft/markdown"
)

func stripANSI(s string) string {
	// Matches SGR, cursor movement, and other CSI sequences.
	re := regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	return re.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI color output so styled elements (headings, frontmatter)
	// produce visible escape codes that we can assert against.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := rulecraft.DefaultTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", markdown.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("hello world", 80, theme)
		assert.Contains(t, stripANSI(result), "hello world")
	})

	t.Run("heading renders content with distinct styling", func(t *testing.T) {
		t.Parallel()
		heading := markdown.Render("# Title", 80, theme)
		paragraph := markdown.Render("Title", 80, theme)
		assert.Contains(t, stripANSI(heading), "Title")
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("bold and italic text", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("**bold** and *italic*", 80, theme)
		assert.Contains(t, stripANSI(result), "bold")
		assert.Contains(t, stripANSI(result), "italic")
	})

	t.Run("fenced code block preserves content without reflow", func(t *testing.T) {
		t.Parallel()
		src := "```go\nfmt.Println(\"hello world\")\n```"
		result := markdown.Render(src, 20, theme)
		assert.Contains(t, stripANSI(result), `fmt.Println("hello world")`)
		assert.Contains(t, stripANSI(result), "go")
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		result := markdown.Render("one two three four five six seven eight nine ten", 20, theme)
		for _, line := range strings.Split(stripANSI(result), "\n") {
			assert.LessOrEqual(t, len(line), 20)
		}
	})

	t.Run("unordered list", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(markdown.Render("- first\n- second", 80, theme))
		assert.Contains(t, result, "- first")
		assert.Contains(t, result, "- second")
	})

	t.Run("ordered list", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(markdown.Render("1. first\n2. second", 80, theme))
		assert.Contains(t, result, "1. first")
		assert.Contains(t, result, "2. second")
	})
}

func TestRenderFrontmatter(t *testing.T) {
	t.Parallel()

	theme := rulecraft.DefaultTheme()

	t.Run("mdc frontmatter is preserved verbatim", func(t *testing.T) {
		t.Parallel()
		src := "---\ndescription: Error handling rule\nglobs: \"**/*.go\"\n---\n\n# Rule body"
		result := stripANSI(markdown.Render(src, 80, theme))

		assert.Contains(t, result, "description: Error handling rule")
		assert.Contains(t, result, `globs: "**/*.go"`)
		assert.Contains(t, result, "Rule body")
		// Delimiters survive so the output still reads as an MDC file.
		assert.True(t, strings.HasPrefix(result, "---\n"))
	})

	t.Run("frontmatter keys are not parsed as markdown", func(t *testing.T) {
		t.Parallel()
		src := "---\ndescription: uses *stars* literally\n---\nbody"
		result := stripANSI(markdown.Render(src, 80, theme))
		assert.Contains(t, result, "*stars*")
	})

	t.Run("no frontmatter without opening delimiter", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(markdown.Render("plain text\n---\nmore", 80, theme))
		assert.Contains(t, result, "plain text")
	})

	t.Run("unterminated delimiter treated as body", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(markdown.Render("---\ndescription: never closed", 80, theme))
		assert.Contains(t, result, "description: never closed")
	})
}
