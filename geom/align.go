package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Superpose rotates and translates test onto templ, minimizing the
// RMSD over paired atoms (Kabsch).  Only proper rotations are used, so
// mirror images are not superposed onto each other.
func Superpose(test, templ Geometry) (out Geometry, err error) {
	if len(test) != len(templ) {
		return nil, fmt.Errorf("superpose: %d atoms vs %d", len(test), len(templ))
	}
	if len(test) == 0 {
		return Geometry{}, nil
	}
	tc := test.Centroid()
	mc := templ.Centroid()
	p := test.Translate(r3.Scale(-1, tc)).Coords()
	q := templ.Translate(r3.Scale(-1, mc)).Coords()

	var h mat.Dense
	h.Mul(p.T(), q)

	var svd mat.SVD
	if !svd.Factorize(&h, mat.SVDFull) {
		return nil, fmt.Errorf("superpose: SVD failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var vut mat.Dense
	vut.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vut) < 0 {
		d = -1
	}
	fix := mat.NewDiagDense(3, []float64{1, 1, d})
	var rot, tmp mat.Dense
	tmp.Mul(&v, fix)
	rot.Mul(&tmp, u.T())

	// rows are positions, so apply the rotation from the right
	var moved mat.Dense
	moved.Mul(p, rot.T())
	return test.WithCoords(&moved).Translate(mc), nil
}

// MaxDisplacement superposes a onto b and returns the largest distance
// between paired atoms.  The geometries must list the same elements in
// the same order.
func MaxDisplacement(a, b Geometry) (dmax float64, err error) {
	if !a.SameSymbols(b) {
		return 0, fmt.Errorf("geometries differ in composition or atom order")
	}
	moved, err := Superpose(a, b)
	if err != nil {
		return
	}
	for i := range moved {
		d := r3.Norm(r3.Sub(moved[i].Pos, b[i].Pos))
		dmax = math.Max(dmax, d)
	}
	return
}

// RMSD after superposition.
func RMSD(a, b Geometry) (rmsd float64, err error) {
	if !a.SameSymbols(b) {
		return 0, fmt.Errorf("geometries differ in composition or atom order")
	}
	moved, err := Superpose(a, b)
	if err != nil {
		return
	}
	if len(moved) == 0 {
		return
	}
	var sum float64
	for i := range moved {
		d := r3.Sub(moved[i].Pos, b[i].Pos)
		sum += r3.Dot(d, d)
	}
	return math.Sqrt(sum / float64(len(moved))), nil
}
