package snapshot

import (
	"fmt"
	"sort"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Side says which of the two compared inputs a value was found in.
type Side int

const (
	// Left means only in the old input.
	Left Side = iota
	// Right means only in the new input.
	Right
	// Both means in both inputs, with different values.
	Both
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Both:
		return "both"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Diff is the comparison result for one key. Old is set for Left and Both,
// New for Right and Both.
type Diff[A any] struct {
	Side Side
	Old  A
	New  A
}

// Changes is the set of packages whose version differs between two
// snapshots.
type Changes map[pkgver.Package]Diff[pkgver.Version]

// Compare diffs two snapshots. Packages with the same version on both sides
// are not part of the result.
func Compare(old, cur Snapshot) Changes {
	c := make(Changes, len(old))
	for p, v := range old {
		c[p] = Diff[pkgver.Version]{Side: Left, Old: v}
	}
	for p, v := range cur {
		prev, ok := c[p]
		switch {
		case !ok:
			c[p] = Diff[pkgver.Version]{Side: Right, New: v}
		case prev.Old.Equal(v):
			delete(c, p)
		default:
			c[p] = Diff[pkgver.Version]{Side: Both, Old: prev.Old, New: v}
		}
	}
	return c
}

// Packages returns the changed package names, sorted.
func (c Changes) Packages() []pkgver.Package {
	names := make([]pkgver.Package, 0, len(c))
	for p := range c {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Removed returns the packages that are only in the old snapshot, sorted.
func (c Changes) Removed() []pkgver.VersionedPackage {
	var out []pkgver.VersionedPackage
	for _, p := range c.Packages() {
		if d := c[p]; d.Side == Left {
			out = append(out, pkgver.VersionedPackage{Package: p, Version: d.Old})
		}
	}
	return out
}
