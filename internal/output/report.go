// Package output renders command reports for the terminal.
//
// Renderers return strings; commands decide where to print them. Color is
// applied through a Palette so tests can render without escape codes.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/commenter/internal/pkgver"
	"github.com/blackwell-systems/commenter/internal/snapshot"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Palette colors report fragments.
type Palette struct {
	warn, added, removed, changed, heading *color.Color
}

// NewPalette returns a Palette that colors only when enabled is true.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		warn:    color.New(color.FgYellow, color.Bold),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		changed: color.New(color.FgCyan),
		heading: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.warn, p.added, p.removed, p.changed, p.heading} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Plain is a Palette without color.
var Plain = NewPalette(false)

func (p *Palette) Warn(s string) string    { return p.warn.Sprint(s) }
func (p *Palette) Added(s string) string   { return p.added.Sprint(s) }
func (p *Palette) Removed(s string) string { return p.removed.Sprint(s) }
func (p *Palette) Changed(s string) string { return p.changed.Sprint(s) }
func (p *Palette) Heading(s string) string { return p.heading.Sprint(s) }

// RenderSections renders the annotation lines add is about to merge, under
// a heading per non-empty region.
func RenderSections(p *Palette, lib, test, bench []string) string {
	var sb strings.Builder
	for _, sec := range []struct {
		title string
		lines []string
	}{
		{"LIBS + EXES", lib},
		{"TESTS", test},
		{"BENCHMARKS", bench},
	} {
		if len(sec.lines) == 0 {
			continue
		}
		sb.WriteString("\n" + p.Heading(sec.title) + "\n\n")
		for _, l := range sec.lines {
			sb.WriteString(l + "\n")
		}
	}
	return sb.String()
}

// RenderAddSummary renders the closing line of add.
func RenderAddSummary(libs, tests, benches int, file string) string {
	return fmt.Sprintf("\nAdding %d libs, %d tests, %d benches to %s\n", libs, tests, benches, file)
}

// RenderSnapshotText renders a snapshot comparison one package per line:
// "- p-v" removed, "+ p-v" added, "^ p-a -> b" changed. Packages for which
// skip returns true are left out.
func RenderSnapshotText(p *Palette, c snapshot.Changes, skip func(pkgver.Package) bool) string {
	var sb strings.Builder
	for _, name := range c.Packages() {
		if skip != nil && skip(name) {
			continue
		}
		d := c[name]
		switch d.Side {
		case snapshot.Left:
			sb.WriteString(p.Removed(fmt.Sprintf("- %s-%s", name, d.Old)))
		case snapshot.Right:
			sb.WriteString(p.Added(fmt.Sprintf("+ %s-%s", name, d.New)))
		case snapshot.Both:
			sb.WriteString(p.Changed(fmt.Sprintf("^ %s-%s -> %s", name, d.Old, d.New)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

const cabalHeader = `cabal-version: 2.4
name: commenter
version: 0
library
  default-language: Haskell2010
  build-depends: base
`

// RenderCabal renders a cabal package description depending on every added
// or changed package at its new version, so the new versions can be built
// together. Ignored packages are kept as comments.
func RenderCabal(c snapshot.Changes, ignored func(pkgver.Package) bool) string {
	var sb strings.Builder
	sb.WriteString(cabalHeader)
	for _, name := range c.Packages() {
		d := c[name]
		if d.Side == snapshot.Left {
			continue
		}
		prefix := "      "
		if ignored != nil && ignored(name) {
			prefix += "-- "
		}
		fmt.Fprintf(&sb, "%s, %s == %s\n", prefix, name, d.New)
	}
	return sb.String()
}

// JoinLimited joins items with ", " keeping at most max of them and
// reporting the rest as "and N more".
func JoinLimited(items []string, max int) string {
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:max], ", "), len(items)-max)
}

// RenderMatchingLines renders the lines containing needle, prefixed with
// their 1-based line numbers.
func RenderMatchingLines(lines []string, needle string) string {
	var sb strings.Builder
	for i, l := range lines {
		if strings.Contains(l, needle) {
			fmt.Fprintf(&sb, "%d: %s\n", i+1, l)
		}
	}
	return sb.String()
}
