// Package annotate renders parsed diagnostics as build-constraints.yaml lines.
package annotate

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/commenter/internal/diagnostic"
)

const (
	libIndent  = "        "
	testIndent = "    "
)

// Lines are the rendered entries for each managed region, each slice sorted.
type Lines struct {
	Lib   []string
	Test  []string
	Bench []string
}

// Render turns a parse result into sorted document lines.
func Render(res *diagnostic.Result) Lines {
	return Lines{
		Lib:   renderBucket(&res.Lib, libIndent, true),
		Test:  renderBucket(&res.Test, testIndent, false),
		Bench: renderBucket(&res.Bench, testIndent, false),
	}
}

func renderBucket(b *diagnostic.Bucket, indent string, disable bool) []string {
	lines := make([]string, 0, b.Len())
	for _, g := range b.Groups {
		for _, d := range g.Details {
			lines = append(lines, Line(indent, disable, g.Header, d))
		}
	}
	sort.Strings(lines)
	return lines
}

// Line renders one entry. disable appends "< 0" to the package, which turns
// the whole package off rather than just one of its components.
func Line(indent string, disable bool, h diagnostic.Header, d diagnostic.Detail) string {
	lt0 := ""
	if disable {
		lt0 = " < 0"
	}
	return fmt.Sprintf("%s- %s%s # tried %s-%s, but its *%s* %s",
		indent, d.Package, lt0, d.Package, d.Version, d.Component, cause(h, d))
}

func cause(h diagnostic.Header, d diagnostic.Detail) string {
	if h.Kind == diagnostic.Versioned {
		return fmt.Sprintf("requires %s %s, but the snapshot contains %s", h.Package, d.Bound, h.VersionedPackage())
	}
	return fmt.Sprintf("requires the disabled package: %s", h.Package)
}
