// Package disabled counts, for every disabled package, how many packages are
// transitively disabled because of it.
//
// The edges come from the annotations the add command wrote into the lib
// region on earlier runs, e.g.
//
//	- Network-NineP < 0 # tried Network-NineP-0.4.7.1, but its *library* requires the disabled package: mstate
//
// which says Network-NineP is disabled because it requires mstate.
package disabled

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blackwell-systems/commenter/internal/pkgver"
)

// Edge records that Child is disabled because it requires Parent.
type Edge struct {
	Child  pkgver.VersionedPackage
	Parent pkgver.Package
}

var edgeRe = regexp.MustCompile(`- *([^ ]+) < *0 *# tried [^ ]+-(\d+(?:\.\d+)*), but its \*[^*]+\* requires the disabled package: ([^ ]+)`)

// ParseEdge parses an annotation line. ok is false for lines of any other
// shape, including versioned-bound annotations.
func ParseEdge(line string) (e Edge, ok bool, err error) {
	m := edgeRe.FindStringSubmatch(line)
	if m == nil {
		return Edge{}, false, nil
	}
	v, err := pkgver.ParseVersion(m[2])
	if err != nil {
		return Edge{}, false, err
	}
	return Edge{
		Child:  pkgver.VersionedPackage{Package: pkgver.Package(m[1]), Version: v},
		Parent: pkgver.Package(m[3]),
	}, true, nil
}

// ParseEdges collects the edges found in lines.
func ParseEdges(lines []string) ([]Edge, error) {
	var edges []Edge
	for _, line := range lines {
		e, ok, err := ParseEdge(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", line, err)
		}
		if ok {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// CycleError is returned when the dependency closure cannot be computed
// because some packages disable each other.
type CycleError struct {
	Packages []pkgver.Package
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Packages))
	for i, p := range e.Packages {
		names[i] = string(p)
	}
	return fmt.Sprintf("disablement cycle among %d packages: %s", len(names), strings.Join(names, ", "))
}

// Graph stores packages by index. children[i] lists one entry per edge whose
// parent is i, so a child disabled for two components counts twice.
type Graph struct {
	names    []pkgver.Package
	index    map[pkgver.Package]int
	children [][]int
}

// Build creates a graph with a node for every child and parent in edges.
func Build(edges []Edge) *Graph {
	g := &Graph{index: make(map[pkgver.Package]int)}
	for _, e := range edges {
		child := g.node(e.Child.Package)
		parent := g.node(e.Parent)
		g.children[parent] = append(g.children[parent], child)
	}
	return g
}

func (g *Graph) node(p pkgver.Package) int {
	if i, ok := g.index[p]; ok {
		return i
	}
	i := len(g.names)
	g.index[p] = i
	g.names = append(g.names, p)
	g.children = append(g.children, nil)
	return i
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.names)
}

// Count is a package and the number of packages disabled because of it.
type Count struct {
	Package    pkgver.Package
	Dependents int
}

// Counts resolves every node to sum(1 + count(child)) over its children,
// iterating in rounds until all nodes are resolved. A round that resolves
// nothing means the remaining nodes form or depend on a cycle.
func (g *Graph) Counts() ([]Count, error) {
	counts := make([]int, len(g.names))
	resolved := make([]bool, len(g.names))

	pending := make([]int, len(g.names))
	for i := range pending {
		pending[i] = i
	}

	for len(pending) > 0 {
		var deferred []int
		for _, n := range pending {
			total, ok := 0, true
			for _, c := range g.children[n] {
				if !resolved[c] {
					ok = false
					break
				}
				total += 1 + counts[c]
			}
			if !ok {
				deferred = append(deferred, n)
				continue
			}
			counts[n] = total
			resolved[n] = true
		}

		if len(deferred) == len(pending) {
			stuck := make([]pkgver.Package, len(deferred))
			for i, n := range deferred {
				stuck[i] = g.names[n]
			}
			sort.Slice(stuck, func(i, j int) bool { return stuck[i] < stuck[j] })
			return nil, &CycleError{Packages: stuck}
		}
		pending = deferred
	}

	out := make([]Count, len(g.names))
	for i, name := range g.names {
		out[i] = Count{Package: name, Dependents: counts[i]}
	}
	return out, nil
}

// Report returns the packages with at least one dependent, sorted by count
// and then by name.
func (g *Graph) Report() ([]Count, error) {
	all, err := g.Counts()
	if err != nil {
		return nil, err
	}
	var out []Count
	for _, c := range all {
		if c.Dependents > 0 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dependents != out[j].Dependents {
			return out[i].Dependents < out[j].Dependents
		}
		return out[i].Package < out[j].Package
	})
	return out, nil
}

func (c Count) String() string {
	return fmt.Sprintf("%s is disabled with %d dependents", c.Package, c.Dependents)
}

// Parents returns every package that has at least one child, sorted by name.
func (g *Graph) Parents() []pkgver.Package {
	var out []pkgver.Package
	for i, name := range g.names {
		if len(g.children[i]) > 0 {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
