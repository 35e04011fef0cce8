// Package snapshot reads Stackage snapshot files and compares them.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// ErrFormat is returned for snapshot files that do not have the expected
// shape.
var ErrFormat = errors.New("invalid snapshot")

// Snapshot maps every package in a snapshot to its version.
type Snapshot map[pkgver.Package]pkgver.Version

type snapshotFile struct {
	Packages []struct {
		Hackage string `yaml:"hackage"`
	} `yaml:"packages"`
}

// zstd-0.1.3.0@sha256:4c0a372251068eb6086b8c3a0a9f347488f08b570a7705844ffeb2c720c97223,3723
var hackageRe = regexp.MustCompile(`^(.+?)-(\d+(?:\.\d+)*)@sha256:[\da-z]+,\d+$`)

// ParseHackage parses a "hackage:" entry of a snapshot.
func ParseHackage(s string) (pkgver.VersionedPackage, error) {
	m := hackageRe.FindStringSubmatch(s)
	if m == nil {
		return pkgver.VersionedPackage{}, fmt.Errorf("%w: unexpected package entry %q", ErrFormat, s)
	}
	v, err := pkgver.ParseVersion(m[2])
	if err != nil {
		return pkgver.VersionedPackage{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return pkgver.VersionedPackage{Package: pkgver.Package(m[1]), Version: v}, nil
}

// Parse decodes snapshot YAML.
func Parse(data []byte) (Snapshot, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	s := make(Snapshot, len(f.Packages))
	for _, p := range f.Packages {
		vp, err := ParseHackage(p.Hackage)
		if err != nil {
			return nil, err
		}
		if _, dup := s[vp.Package]; dup {
			return nil, fmt.Errorf("%w: %s is listed more than once", ErrFormat, vp.Package)
		}
		s[vp.Package] = vp.Version
	}
	return s, nil
}

// Load reads and parses the snapshot at path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return s, nil
}

// Packages returns the package names in s, sorted.
func (s Snapshot) Packages() []pkgver.Package {
	names := make([]pkgver.Package, 0, len(s))
	for p := range s {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
