// Package preview renders the change a command would make to a document as a
// unified diff, for --dry-run.
package preview

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Unified returns a unified diff from before to after, labelled with path.
// The result is empty when the two are equal.
func Unified(path string, before, after []string, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	u := difflib.UnifiedDiff{
		A:        withNewlines(before),
		B:        withNewlines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return s, nil
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
