package geom

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// TooClose is the distance below which two atoms are never considered
// bonded; anything that close is a broken structure, not a bond.
// DOI:10.1186/1758-2946-3-33
const TooClose = 0.63

// Bond joins atoms I < J.
type Bond struct {
	I, J int
}

// NewBond orders the pair.
func NewBond(i, j int) Bond {
	if i > j {
		i, j = j, i
	}
	return Bond{I: i, J: j}
}

func (b Bond) Has(i int) bool {
	return b.I == i || b.J == i
}

// Other returns the partner of atom i in b.
func (b Bond) Other(i int) int {
	if b.I == i {
		return b.J
	}
	return b.I
}

// Shared returns the atom b and o have in common, if any.
func (b Bond) Shared(o Bond) (int, bool) {
	switch {
	case o.Has(b.I):
		return b.I, true
	case o.Has(b.J):
		return b.J, true
	}
	return -1, false
}

// EquilibriumLength estimates a single-bond length from covalent radii.
func EquilibriumLength(a, b string) (float64, error) {
	ra, ok := CovalentRadius(a)
	if !ok {
		return 0, fmt.Errorf("no covalent radius for %s", a)
	}
	rb, ok := CovalentRadius(b)
	if !ok {
		return 0, fmt.Errorf("no covalent radius for %s", b)
	}
	return ra + rb, nil
}

// Bonds assigns bonds by distance: i and j are bonded when their
// distance is above TooClose and below the sum of their covalent radii
// plus tol.
func Bonds(g Geometry, tol float64) (bonds []Bond, err error) {
	for i := 0; i < len(g); i++ {
		ri, ok := CovalentRadius(g[i].Symbol)
		if !ok {
			return nil, fmt.Errorf("no covalent radius for %s (atom %d)", g[i].Symbol, i)
		}
		for j := i + 1; j < len(g); j++ {
			rj, ok := CovalentRadius(g[j].Symbol)
			if !ok {
				return nil, fmt.Errorf("no covalent radius for %s (atom %d)", g[j].Symbol, j)
			}
			d := g.Distance(i, j)
			if d < ri+rj+tol && d > TooClose {
				bonds = append(bonds, Bond{I: i, J: j})
			}
		}
	}
	return
}

// Graph returns the bond graph of g; node IDs are atom indexes.
func Graph(g Geometry, tol float64) (*simple.UndirectedGraph, error) {
	bonds, err := Bonds(g, tol)
	if err != nil {
		return nil, err
	}
	gr := simple.NewUndirectedGraph()
	for i := range g {
		gr.AddNode(simple.Node(i))
	}
	for _, b := range bonds {
		gr.SetEdge(simple.Edge{F: simple.Node(b.I), T: simple.Node(b.J)})
	}
	return gr, nil
}

// Fragments returns the atom indexes of each connected fragment, each
// list sorted, fragments ordered by their lowest index.
func Fragments(g Geometry, tol float64) (frags [][]int, err error) {
	gr, err := Graph(g, tol)
	if err != nil {
		return
	}
	for _, comp := range topo.ConnectedComponents(gr) {
		frags = append(frags, nodeIDs(comp))
	}
	sort.Slice(frags, func(i, j int) bool { return frags[i][0] < frags[j][0] })
	return
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	sort.Ints(ids)
	return ids
}

// Connected reports whether g is a single fragment.  An empty geometry
// is not connected.
func Connected(g Geometry, tol float64) (bool, error) {
	frags, err := Fragments(g, tol)
	if err != nil {
		return false, err
	}
	return len(frags) == 1, nil
}
