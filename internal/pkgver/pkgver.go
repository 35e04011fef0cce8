// Package pkgver defines package names, numeric versions and their ordering.
//
// Versions are compared component-wise on the shared prefix; when one version
// is a prefix of the other the shorter one sorts lower, so 1 < 1.0 < 1.0.0.
// This is not semantic versioning and must not be "fixed": the rest of the
// tool relies on it to decide which versions are up to date.
package pkgver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a version string has a segment that is
// not a non-negative integer literal.
var ErrInvalidVersion = errors.New("invalid version")

// Package is a case-sensitive package identifier.
type Package string

func (p Package) String() string {
	return string(p)
}

// Version is a non-empty sequence of non-negative integers.
type Version []int

// ParseVersion parses a dot-separated numeral string such as "1.2.0".
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidVersion)
	}
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
		}
		v = append(v, n)
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for
// tests and literals.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Compare returns -1, 0 or +1. The first differing component decides; if one
// version is a prefix of the other, the shorter one is less.
func Compare(a, b Version) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Equal reports whether a and b are the same version.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// Max returns the greatest version in vs, or nil when vs is empty.
func Max(vs []Version) Version {
	var best Version
	for _, v := range vs {
		if best == nil || Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

// VersionedPackage is a package pinned to one version.
type VersionedPackage struct {
	Package Package
	Version Version
}

// String returns the canonical "<package>-<version>" form.
func (vp VersionedPackage) String() string {
	return fmt.Sprintf("%s-%s", vp.Package, vp.Version)
}

var versionedPackageRe = regexp.MustCompile(`^(.+)-(\d+(?:\.\d+)*)$`)

// ParseVersionedPackage parses "<package>-<version>". The package part may
// itself contain dashes; the version is the trailing numeral.
func ParseVersionedPackage(s string) (VersionedPackage, error) {
	m := versionedPackageRe.FindStringSubmatch(s)
	if m == nil {
		return VersionedPackage{}, fmt.Errorf("%w: %q is not <package>-<version>", ErrInvalidVersion, s)
	}
	v, err := ParseVersion(m[2])
	if err != nil {
		return VersionedPackage{}, err
	}
	return VersionedPackage{Package: Package(m[1]), Version: v}, nil
}
