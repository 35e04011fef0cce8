// Package constraints reads build-constraints.yaml as data: the GHC version
// and the package lists of every maintainer and maintenance category.
//
// The document is decoded into yaml.v3 nodes rather than structs so that the
// trailing "# <version>" comments people use to record the last working
// version of a disabled package are available.
package constraints

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// ErrFormat is returned when the document does not have the expected shape.
var ErrFormat = errors.New("invalid build constraints")

// OtherCategories are the section names under "packages" that are not
// maintainers.
var OtherCategories = []string{
	"Grandfathered dependencies",
	"Abandoned packages",
	"Unmaintained packages with compilation failures",
	"Removed packages",
	"GHC upper bounds",
	"Compilation failures",
	"Library and exe bounds failures",
	"Stackage upper bounds",
}

// Maintainer is the free-text name of a maintainer section, for example
// "Adam Bergmark <adam@bergmark.nl> @bergmark".
type Maintainer string

var handleRe = regexp.MustCompile(`^@[^ ]+$`)

// GithubUsers returns the "@handle" tokens of m.
func (m Maintainer) GithubUsers() []string {
	var users []string
	for _, tok := range strings.Fields(string(m)) {
		if handleRe.MatchString(tok) {
			users = append(users, tok)
		}
	}
	return users
}

// Maintenance is the owner of a section: a maintainer, or one of
// OtherCategories.
type Maintenance struct {
	Name  string
	Other bool
}

// NewMaintenance classifies a section name.
func NewMaintenance(name string) Maintenance {
	for _, o := range OtherCategories {
		if name == o {
			return Maintenance{Name: name, Other: true}
		}
	}
	return Maintenance{Name: name}
}

// Maintainer returns the maintainer, or false for a maintenance category.
func (m Maintenance) Maintainer() (Maintainer, bool) {
	if m.Other {
		return "", false
	}
	return Maintainer(m.Name), true
}

// Less orders maintainers before categories, then by name.
func (m Maintenance) Less(o Maintenance) bool {
	if m.Other != o.Other {
		return !m.Other
	}
	return m.Name < o.Name
}

func (m Maintenance) String() string {
	return m.Name
}

// BCPackage is one entry of a section, e.g. "alex < 3.2.7 || > 3.2.7".
type BCPackage struct {
	Package pkgver.Package
	// Bound is empty when the entry has no version bound.
	Bound string
	// NotedVersion is the version from a trailing "# 1.2.3" comment, if any.
	NotedVersion pkgver.Version
}

var bcPackageRe = regexp.MustCompile(`^([\da-zA-Z][\da-zA-Z-]*) *(.+?)? *$`)

// ParseBCPackage parses an entry scalar.
func ParseBCPackage(s string) (BCPackage, error) {
	m := bcPackageRe.FindStringSubmatch(s)
	if m == nil {
		return BCPackage{}, fmt.Errorf("%w: unexpected package entry %q", ErrFormat, s)
	}
	return BCPackage{Package: pkgver.Package(m[1]), Bound: m[2]}, nil
}

var notedRe = regexp.MustCompile(`^# *(\d+(?:\.\d+)*)`)

// Section is the package list of one maintainer or category.
type Section struct {
	Maintenance Maintenance
	Packages    []BCPackage
}

// Document is the decoded build-constraints.yaml.
type Document struct {
	GHCVersion string
	// Sections are sorted by Maintenance.
	Sections []Section
}

// Parse decodes the document.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrFormat)
	}

	doc := &Document{}
	top := root.Content[0]
	var packages *yaml.Node
	for i := 0; i+1 < len(top.Content); i += 2 {
		switch top.Content[i].Value {
		case "ghc-version":
			doc.GHCVersion = top.Content[i+1].Value
		case "packages":
			packages = top.Content[i+1]
		}
	}
	if doc.GHCVersion == "" {
		return nil, fmt.Errorf("%w: missing ghc-version", ErrFormat)
	}
	if packages == nil || packages.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: missing packages mapping", ErrFormat)
	}

	for i := 0; i+1 < len(packages.Content); i += 2 {
		key, list := packages.Content[i], packages.Content[i+1]
		sec := Section{Maintenance: NewMaintenance(key.Value)}
		if list.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: line %d: section %q is not a list", ErrFormat, key.Line, key.Value)
		}
		for _, item := range list.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: entry is not a string", ErrFormat, item.Line)
			}
			p, err := ParseBCPackage(item.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			if m := notedRe.FindStringSubmatch(item.LineComment); m != nil {
				v, err := pkgver.ParseVersion(m[1])
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", item.Line, err)
				}
				p.NotedVersion = v
			}
			sec.Packages = append(sec.Packages, p)
		}
		doc.Sections = append(doc.Sections, sec)
	}

	sort.SliceStable(doc.Sections, func(i, j int) bool {
		return doc.Sections[i].Maintenance.Less(doc.Sections[j].Maintenance)
	})
	return doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// Maintainers returns the maintainer sections in order, skipping categories.
func (d *Document) Maintainers() []Maintainer {
	var out []Maintainer
	for _, s := range d.Sections {
		if m, ok := s.Maintenance.Maintainer(); ok {
			out = append(out, m)
		}
	}
	return out
}

// PackageInfo is everything the document says about one package.
type PackageInfo struct {
	Bounds      []string
	Versions    []pkgver.Version
	Maintainers []Maintenance
}

// ByPackage indexes the document by package name.
type ByPackage map[pkgver.Package]*PackageInfo

// ByPackage inverts the sections into a per-package view. Maintainers are
// listed in section order.
func (d *Document) ByPackage() ByPackage {
	out := make(ByPackage)
	for _, s := range d.Sections {
		for _, p := range s.Packages {
			info, ok := out[p.Package]
			if !ok {
				info = &PackageInfo{}
				out[p.Package] = info
			}
			if p.Bound != "" {
				info.Bounds = append(info.Bounds, p.Bound)
			}
			if p.NotedVersion != nil {
				info.Versions = append(info.Versions, p.NotedVersion)
			}
			info.Maintainers = append(info.Maintainers, s.Maintenance)
		}
	}
	return out
}

// Packages returns the package names, sorted.
func (b ByPackage) Packages() []pkgver.Package {
	names := make([]pkgver.Package, 0, len(b))
	for p := range b {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Multiple returns the packages listed in two or more sections, sorted.
func (b ByPackage) Multiple() []pkgver.Package {
	var out []pkgver.Package
	for _, p := range b.Packages() {
		if len(b[p].Maintainers) >= 2 {
			out = append(out, p)
		}
	}
	return out
}
