package registry

import (
	"os"
	"path/filepath"
	"strings"

	gitgitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher reads the .gitignore in dir, if any, and returns a
// predicate over file names in that directory.
func ignoreMatcher(dir string) func(name string) bool {
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return func(string) bool { return false }
	}
	var patterns []gitgitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitgitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return func(string) bool { return false }
	}
	m := gitgitignore.NewMatcher(patterns)
	return func(name string) bool {
		return m.Match([]string{name}, false)
	}
}
