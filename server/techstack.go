package server

import (
	"github.com/bmatcuk/doublestar/v4"
)

// techPattern maps a glob over project file paths to a technology tag.
// Patterns are checked in order and each tag is reported at most once.
var techPatterns = []struct {
	pattern string
	tech    string
}{
	{"**/go.mod", "go"},
	{"**/*.go", "go"},
	{"**/*.tsx", "react"},
	{"**/*.jsx", "react"},
	{"**/next.config.{js,mjs,ts}", "nextjs"},
	{"**/*.ts", "typescript"},
	{"**/package.json", "node"},
	{"**/*.py", "python"},
	{"**/requirements.txt", "python"},
	{"**/pyproject.toml", "python"},
	{"**/Cargo.toml", "rust"},
	{"**/*.rs", "rust"},
	{"**/pom.xml", "java"},
	{"**/build.gradle", "java"},
	{"**/*.rb", "ruby"},
	{"**/Gemfile", "ruby"},
	{"**/Dockerfile", "docker"},
	{"**/docker-compose.{yml,yaml}", "docker"},
	{"**/*.tf", "terraform"},
	{"**/*.swift", "swift"},
	{"**/*.kt", "kotlin"},
}

// DetectTechStack infers technology tags from project file paths. Tags
// appear in pattern order, each at most once. An empty or unrecognized
// file list yields an empty stack.
func DetectTechStack(files []string) []string {
	if len(files) == 0 {
		return []string{}
	}
	matched := make(map[string]bool)
	stack := []string{}
	for _, tp := range techPatterns {
		if matched[tp.tech] {
			continue
		}
		for _, f := range files {
			ok, err := doublestar.Match(tp.pattern, f)
			if err != nil {
				break
			}
			if ok {
				matched[tp.tech] = true
				stack = append(stack, tp.tech)
				break
			}
		}
	}
	return stack
}
