package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

type Atom struct {
	Symbol string
	Pos    r3.Vec
}

// Geometry is an ordered list of atoms.  Atom order is significant:
// two geometries are compared atom by atom.
type Geometry []Atom

func (g Geometry) Len() int {
	return len(g)
}

func (g Geometry) Symbols() []string {
	out := make([]string, len(g))
	for i, a := range g {
		out[i] = a.Symbol
	}
	return out
}

// SameSymbols reports whether g and o list the same elements in the
// same order.
func (g Geometry) SameSymbols(o Geometry) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if g[i].Symbol != o[i].Symbol {
			return false
		}
	}
	return true
}

func (g Geometry) Clone() Geometry {
	out := make(Geometry, len(g))
	copy(out, g)
	return out
}

// Coords returns the positions as the rows of an n x 3 matrix.
func (g Geometry) Coords() *mat.Dense {
	m := mat.NewDense(len(g), 3, nil)
	for i, a := range g {
		m.SetRow(i, []float64{a.Pos.X, a.Pos.Y, a.Pos.Z})
	}
	return m
}

// WithCoords returns a copy of g with positions taken from the rows of m.
func (g Geometry) WithCoords(m mat.Matrix) Geometry {
	out := g.Clone()
	for i := range out {
		out[i].Pos = r3.Vec{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}
	}
	return out
}

// Centroid is the unweighted mean position.
func (g Geometry) Centroid() (c r3.Vec) {
	if len(g) == 0 {
		return
	}
	for _, a := range g {
		c = r3.Add(c, a.Pos)
	}
	return r3.Scale(1/float64(len(g)), c)
}

func (g Geometry) Translate(v r3.Vec) Geometry {
	out := g.Clone()
	for i := range out {
		out[i].Pos = r3.Add(out[i].Pos, v)
	}
	return out
}

// Distance between atoms i and j.
func (g Geometry) Distance(i, j int) float64 {
	return r3.Norm(r3.Sub(g[i].Pos, g[j].Pos))
}

// Angle is the angle i-j-k at the central atom j, in radians.
func (g Geometry) Angle(i, j, k int) float64 {
	u := r3.Sub(g[i].Pos, g[j].Pos)
	v := r3.Sub(g[k].Pos, g[j].Pos)
	c := r3.Cos(u, v)
	// rounding can push |c| past 1 for collinear atoms
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Closest returns the atom nearest to atom i, excluding i itself.
func (g Geometry) Closest(i int) (j int, d float64) {
	j, d = -1, math.Inf(1)
	for k := range g {
		if k == i {
			continue
		}
		dk := g.Distance(i, k)
		if dk < d {
			j, d = k, dk
		}
	}
	return
}

func (g Geometry) checkIndex(idx ...int) error {
	for _, i := range idx {
		if i < 0 || i >= len(g) {
			return fmt.Errorf("atom index %d out of range for %d atoms", i, len(g))
		}
	}
	return nil
}

// AlmostEqual reports whether g and o have the same symbols and no
// coordinate differs by more than tol.  No superposition is done.
func (g Geometry) AlmostEqual(o Geometry, tol float64) bool {
	if !g.SameSymbols(o) {
		return false
	}
	for i := range g {
		d := r3.Sub(g[i].Pos, o[i].Pos)
		if math.Abs(d.X) > tol || math.Abs(d.Y) > tol || math.Abs(d.Z) > tol {
			return false
		}
	}
	return true
}
