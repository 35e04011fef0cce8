// Package document edits the managed regions of build-constraints.yaml.
//
// The document is treated as lines, not YAML. Three regions, delimited by
// fixed marker lines, are owned by the tool; everything else is hand-written
// and passes through byte for byte. A single pass drives an explicit state
// machine (see Step) and, independently, extracts two kinds of facts from
// every line: manually noted versions and packages disabled without a note.
package document

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Transform receives the buffered lines of a region and returns the lines
// that replace them.
type Transform func(r Region, lines []string) []string

// Result is the outcome of one pass over the document.
type Result struct {
	// Lines is the rewritten document.
	Lines []string
	// Noted are packages with a manually recorded version.
	Noted []pkgver.VersionedPackage
	// Disabled are packages disabled with "< 0" but no recorded version.
	Disabled []pkgver.Package
}

// Scanner holds the compiled line grammar.
type Scanner struct {
	notedDisabled *regexp.Regexp
	notedBounded  *regexp.Regexp
	disabled      *regexp.Regexp
	tried         *regexp.Regexp
}

// NewScanner compiles the line grammar.
func NewScanner() *Scanner {
	return &Scanner{
		notedDisabled: regexp.MustCompile(`- *([^ ]+) < *0 *# *(\d+(?:\.\d+)*)`),
		notedBounded:  regexp.MustCompile(`- *([^ ]+) *# *(\d+(?:\.\d+)*)`),
		disabled:      regexp.MustCompile(`- *([^ ]+) < *0 *# *\d*[^\d ]`),
		tried:         regexp.MustCompile(`- *([^ ]+) < *0 *# tried`),
	}
}

// Edit runs the region state machine over lines. f is called once per region
// with the region's buffered content.
func (s *Scanner) Edit(lines []string, f Transform) (*Result, error) {
	res := &Result{Lines: make([]string, 0, len(lines))}
	state := LookingForLibBounds
	var buf []string

	for i, line := range lines {
		noted, disabled, err := s.Facts(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if noted != nil {
			res.Noted = append(res.Noted, *noted)
		} else if disabled != "" {
			res.Disabled = append(res.Disabled, disabled)
		}

		next, action, err := Step(state, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		switch action {
		case Pass:
			res.Lines = append(res.Lines, line)
		case Buffer:
			buf = append(buf, line)
		case Drop:
		case Close:
			res.Lines = append(res.Lines, f(state.Region(), buf)...)
			res.Lines = append(res.Lines, line)
			buf = nil
		}
		state = next
	}

	if state != Done {
		return nil, fmt.Errorf("%w: reached end of document in state %s, expected %q", ErrMarker, state, state.expecting())
	}
	return res, nil
}

// Facts extracts the side-channel facts of a single line. At most one of the
// results is set; a noted version takes precedence.
func (s *Scanner) Facts(line string) (*pkgver.VersionedPackage, pkgver.Package, error) {
	for _, re := range []*regexp.Regexp{s.notedDisabled, s.notedBounded} {
		if m := re.FindStringSubmatch(line); m != nil {
			v, err := pkgver.ParseVersion(m[2])
			if err != nil {
				return nil, "", err
			}
			return &pkgver.VersionedPackage{Package: pkgver.Package(m[1]), Version: v}, "", nil
		}
	}
	if s.tried.MatchString(line) {
		return nil, "", nil
	}
	if m := s.disabled.FindStringSubmatch(line); m != nil {
		return nil, pkgver.Package(m[1]), nil
	}
	return nil, "", nil
}

// Identity returns regions unchanged, restoring the empty-region line the
// scanner drops from an empty lib region.
func Identity(r Region, lines []string) []string {
	if r == Lib && len(lines) == 0 {
		return []string{EmptyRegion}
	}
	return lines
}

// Clear empties every region.
func Clear(r Region, _ []string) []string {
	if r == Lib {
		return []string{EmptyRegion}
	}
	return nil
}

// Merge returns a Transform that adds lines to each region. The existing and
// new lines are de-duplicated and sorted so repeated runs are stable.
func Merge(lib, test, bench []string) Transform {
	add := map[Region][]string{Lib: lib, Test: test, Bench: bench}
	return func(r Region, lines []string) []string {
		seen := make(map[string]bool, len(lines)+len(add[r]))
		merged := make([]string, 0, len(lines)+len(add[r]))
		for _, l := range append(append([]string{}, lines...), add[r]...) {
			if seen[l] {
				continue
			}
			seen[l] = true
			merged = append(merged, l)
		}
		sort.Strings(merged)
		return Identity(r, merged)
	}
}

// Collect returns a Transform that records every region's lines into dst and
// leaves the document unchanged.
func Collect(dst map[Region][]string) Transform {
	return func(r Region, lines []string) []string {
		dst[r] = append(dst[r], lines...)
		return Identity(r, lines)
	}
}
