package geom

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CoulombMatrix builds the Coulomb matrix of g: 0.5 Z^2.4 on the
// diagonal and Zi Zj / |Ri - Rj| off it.
func CoulombMatrix(g Geometry) (*mat.SymDense, error) {
	n := len(g)
	z := make([]float64, n)
	for i, a := range g {
		zi, ok := AtomicNumber(a.Symbol)
		if !ok {
			return nil, fmt.Errorf("no atomic number for %s (atom %d)", a.Symbol, i)
		}
		z[i] = float64(zi)
	}
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 0.5*math.Pow(z[i], 2.4))
		for j := i + 1; j < n; j++ {
			d := g.Distance(i, j)
			if d == 0 {
				return nil, fmt.Errorf("atoms %d and %d coincide", i, j)
			}
			m.SetSym(i, j, z[i]*z[j]/d)
		}
	}
	return m, nil
}

// CoulombSpectrum returns the eigenvalues of the Coulomb matrix in
// descending order.  The spectrum does not change under rotation,
// translation, or permutation of like atoms.
func CoulombSpectrum(g Geometry) ([]float64, error) {
	m, err := CoulombMatrix(g)
	if err != nil {
		return nil, err
	}
	if len(g) == 0 {
		return []float64{}, nil
	}
	var es mat.EigenSym
	if !es.Factorize(m, false) {
		return nil, fmt.Errorf("coulomb spectrum: eigendecomposition failed")
	}
	vals := es.Values(nil)
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	return vals, nil
}

// SameComposition reports whether a and b contain the same multiset of
// elements, in any order.
func SameComposition(a, b Geometry) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[string]int)
	for i := range a {
		count[a[i].Symbol]++
		count[b[i].Symbol]--
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}

// SymmetryEquivalent reports whether a and b have the same composition
// and Coulomb spectra equal within tol, relative or absolute.
func SymmetryEquivalent(a, b Geometry, tol float64) (bool, error) {
	if !SameComposition(a, b) {
		return false, nil
	}
	sa, err := CoulombSpectrum(a)
	if err != nil {
		return false, err
	}
	sb, err := CoulombSpectrum(b)
	if err != nil {
		return false, err
	}
	return floats.EqualApprox(sa, sb, tol), nil
}
