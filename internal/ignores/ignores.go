// Package ignores reads the ignore file used by diff-snapshot and outdated.
//
// Each non-blank line is either "<package>-<version>", which ignores that
// exact version, or a bare package name, which ignores every version.
package ignores

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Ignores is a parsed ignore file. The zero value ignores nothing.
type Ignores struct {
	versioned   map[string]bool
	unversioned map[pkgver.Package]bool
}

// Load reads the ignore file at path. An empty path yields an empty set.
func Load(path string) (*Ignores, error) {
	if path == "" {
		return &Ignores{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer f.Close()

	ig, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}
	return ig, nil
}

// Read parses ignore entries from r.
func Read(r io.Reader) (*Ignores, error) {
	ig := &Ignores{
		versioned:   make(map[string]bool),
		unversioned: make(map[pkgver.Package]bool),
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if vp, err := pkgver.ParseVersionedPackage(line); err == nil {
			ig.versioned[vp.String()] = true
		} else {
			ig.unversioned[pkgver.Package(line)] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ig, nil
}

// ContainsPackage reports whether every version of p is ignored.
func (ig *Ignores) ContainsPackage(p pkgver.Package) bool {
	return ig.unversioned[p]
}

// ContainsVersioned reports whether vp is ignored, either exactly or through
// a bare entry for its package.
func (ig *Ignores) ContainsVersioned(vp pkgver.VersionedPackage) bool {
	return ig.versioned[vp.String()] || ig.ContainsPackage(vp.Package)
}

// Len returns the number of entries.
func (ig *Ignores) Len() int {
	return len(ig.versioned) + len(ig.unversioned)
}
