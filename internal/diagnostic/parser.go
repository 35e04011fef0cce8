// Package diagnostic parses the free-form output of curator's snapshot
// checker into structured facts.
//
// The checker writes an arbitrary prologue, then the banner
//
//	curator: Snapshot dependency graph contains errors:
//
// followed by blocks of the form
//
//	aeson-2.0.3.0 (...) is out of bounds for:
//	- [ ] captcha-2captcha-0.1.0.0 (==0.1.*). Edward Yang @qwbarch. Used by: library
//
//	n2o-protocols (...) depended on by:
//	- [ ] n2o-nitro-0.11.2 (-any). Used by: library
//
// Every line after the banner must be understood; an unknown line aborts the
// parse because it means the checker's output format changed.
package diagnostic

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Banner is the line after which diagnostics are parsed.
const Banner = "curator: Snapshot dependency graph contains errors:"

var (
	// ErrNoHeader is returned for a detail line that appears before any header.
	ErrNoHeader = errors.New("detail line without a preceding header")

	// ErrUnknownComponent is returned for a component kind outside
	// library, executable, test-suite and benchmark.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownLine is returned for a line matching none of the known shapes.
	ErrUnknownLine = errors.New("unrecognized diagnostic line")
)

// LineError records which input line a parse error came from.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Kind distinguishes the two header shapes.
type Kind int

const (
	// Versioned headers name a package whose snapshot version is rejected by
	// a dependent's bound.
	Versioned Kind = iota
	// Missing headers name a package absent from (disabled in) the snapshot.
	Missing
)

// Header is the root cause that the following detail lines refer to.
type Header struct {
	Kind    Kind
	Package pkgver.Package
	// Version is only set for Versioned headers.
	Version pkgver.Version
}

// NewVersionedHeader returns a header for a package version that is out of
// bounds.
func NewVersionedHeader(vp pkgver.VersionedPackage) Header {
	return Header{Kind: Versioned, Package: vp.Package, Version: vp.Version}
}

// NewMissingHeader returns a header for a disabled package.
func NewMissingHeader(p pkgver.Package) Header {
	return Header{Kind: Missing, Package: p}
}

// VersionedPackage returns the header's package and version. Only meaningful
// for Versioned headers.
func (h Header) VersionedPackage() pkgver.VersionedPackage {
	return pkgver.VersionedPackage{Package: h.Package, Version: h.Version}
}

// Key returns a string uniquely identifying the header.
func (h Header) Key() string {
	if h.Kind == Versioned {
		return "v:" + h.VersionedPackage().String()
	}
	return "m:" + string(h.Package)
}

func (h Header) String() string {
	if h.Kind == Versioned {
		return h.VersionedPackage().String()
	}
	return string(h.Package)
}

// Detail is a package component that fails because of the current header.
type Detail struct {
	Package   pkgver.Package
	Version   pkgver.Version
	Bound     string
	Component string
}

// Group is a header together with the details collected under it.
type Group struct {
	Header  Header
	Details []Detail
}

// Bucket holds groups keyed by header, in first-seen order.
type Bucket struct {
	Groups []Group
	index  map[string]int
}

// Add appends d under h.
func (b *Bucket) Add(h Header, d Detail) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	i, ok := b.index[h.Key()]
	if !ok {
		i = len(b.Groups)
		b.index[h.Key()] = i
		b.Groups = append(b.Groups, Group{Header: h})
	}
	b.Groups[i].Details = append(b.Groups[i].Details, d)
}

// Len returns the number of details across all groups.
func (b *Bucket) Len() int {
	n := 0
	for _, g := range b.Groups {
		n += len(g.Details)
	}
	return n
}

// Result is the parsed diagnostic output split by component bucket.
type Result struct {
	Lib   Bucket
	Test  Bucket
	Bench Bucket
}

// Parser holds the compiled diagnostic grammar. Build one with NewParser and
// reuse it.
type Parser struct {
	blank     *regexp.Regexp
	detail    *regexp.Regexp
	versioned *regexp.Regexp
	missing   *regexp.Regexp

	// Prologue receives lines seen before the banner. May be nil.
	Prologue func(line string)
}

// NewParser compiles the diagnostic grammar.
func NewParser() *Parser {
	return &Parser{
		blank:     regexp.MustCompile(`^\s*$`),
		detail:    regexp.MustCompile(`^- \[ \] (?P<package>[\da-zA-Z][\da-zA-Z-]*?)-(?P<version>\d+(?:\.\d+)*) \((?P<bound>[^)]+)\).+?Used by: (?P<component>.+)$`),
		versioned: regexp.MustCompile(`^(?P<package>[\da-zA-Z][\da-zA-Z-]*?)-(?P<version>\d+(?:\.\d+)*) .*?is out of bounds for:$`),
		missing:   regexp.MustCompile(`^(?P<package>[\da-zA-Z][\da-zA-Z-]*?) .+?depended on by:$`),
	}
}

// Parse consumes lines and returns the detail facts bucketed by component.
func (p *Parser) Parse(lines []string) (*Result, error) {
	res := &Result{}
	var current *Header
	started := false

	for i, line := range lines {
		lineErr := func(err error) error {
			return &LineError{Line: i + 1, Text: line, Err: err}
		}

		switch {
		case p.blank.MatchString(line):
			continue
		case line == Banner:
			started = true
			continue
		case !started:
			if p.Prologue != nil {
				p.Prologue(line)
			}
			continue
		}

		if d, ok, err := p.ParseDetail(line); err != nil {
			return nil, lineErr(err)
		} else if ok {
			if current == nil {
				return nil, lineErr(ErrNoHeader)
			}
			switch d.Component {
			case "library", "executable":
				res.Lib.Add(*current, d)
			case "test-suite":
				res.Test.Add(*current, d)
			case "benchmark":
				d.Component = "benchmarks"
				res.Bench.Add(*current, d)
			default:
				return nil, lineErr(fmt.Errorf("%w: %q", ErrUnknownComponent, d.Component))
			}
			continue
		}

		if h, ok, err := p.ParseHeader(line); err != nil {
			return nil, lineErr(err)
		} else if ok {
			current = &h
			continue
		}

		return nil, lineErr(ErrUnknownLine)
	}

	return res, nil
}

// ParseDetail parses a "- [ ] <package>-<version> (<bound>)... Used by: <component>"
// line. ok is false when the line has a different shape.
func (p *Parser) ParseDetail(line string) (d Detail, ok bool, err error) {
	m := p.detail.FindStringSubmatch(line)
	if m == nil {
		return Detail{}, false, nil
	}
	v, err := pkgver.ParseVersion(m[p.detail.SubexpIndex("version")])
	if err != nil {
		return Detail{}, false, err
	}
	return Detail{
		Package:   pkgver.Package(m[p.detail.SubexpIndex("package")]),
		Version:   v,
		Bound:     m[p.detail.SubexpIndex("bound")],
		Component: m[p.detail.SubexpIndex("component")],
	}, true, nil
}

// ParseHeader parses either header shape. Versioned headers are tried first.
func (p *Parser) ParseHeader(line string) (h Header, ok bool, err error) {
	if m := p.versioned.FindStringSubmatch(line); m != nil {
		v, err := pkgver.ParseVersion(m[p.versioned.SubexpIndex("version")])
		if err != nil {
			return Header{}, false, err
		}
		pkg := pkgver.Package(m[p.versioned.SubexpIndex("package")])
		return NewVersionedHeader(pkgver.VersionedPackage{Package: pkg, Version: v}), true, nil
	}
	if m := p.missing.FindStringSubmatch(line); m != nil {
		return NewMissingHeader(pkgver.Package(m[p.missing.SubexpIndex("package")])), true, nil
	}
	return Header{}, false, nil
}
