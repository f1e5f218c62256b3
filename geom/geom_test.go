package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func water() Geometry {
	return Geometry{
		{"O", r3.Vec{X: 0, Y: 0, Z: 0.1173}},
		{"H", r3.Vec{X: 0, Y: 0.7572, Z: -0.4692}},
		{"H", r3.Vec{X: 0, Y: -0.7572, Z: -0.4692}},
	}
}

// hydroperoxymethyl-like test structure, in bohr
func refGeo() Geometry {
	return Geometry{
		{"C", r3.Vec{X: 0.066541036329, Y: -0.86543409422, Z: -0.56994517889}},
		{"O", r3.Vec{X: 0.066541036329, Y: -0.86543409422, Z: 2.13152981129}},
		{"O", r3.Vec{X: 0.066541036329, Y: 1.6165813318, Z: -1.63686376233}},
		{"H", r3.Vec{X: -1.52331011945, Y: -1.99731957213, Z: -1.31521725797}},
		{"H", r3.Vec{X: 1.84099386813, Y: -1.76479255185, Z: -1.16213243427}},
		{"H", r3.Vec{X: -1.61114836922, Y: -0.17751142359, Z: 2.6046492029}},
		{"H", r3.Vec{X: -1.61092727126, Y: 2.32295906780, Z: -1.19178601663}},
	}
}

// rotate about an arbitrary axis through the origin, then shift
func moved(g Geometry, theta float64, shift r3.Vec) Geometry {
	rot := r3.NewRotation(theta, r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}))
	out := g.Clone()
	for i := range out {
		out[i].Pos = r3.Add(rot.Rotate(out[i].Pos), shift)
	}
	return out
}

func TestXYZRoundTrip(t *testing.T) {
	ref := refGeo()
	text := ref.XYZ("energy: -187.38518070487598")
	got, comment, err := ParseXYZ(text)
	require.NoError(t, err)
	assert.Equal(t, "energy: -187.38518070487598", comment)
	assert.True(t, got.AlmostEqual(ref, XYZTolerance), "got %v", got)

	frames, comments, err := ParseXYZFrames(text + water().XYZ("two"))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, []string{"energy: -187.38518070487598", "two"}, comments)
	assert.True(t, frames[1].AlmostEqual(water(), XYZTolerance))

	_, _, err = ParseXYZ(text + water().XYZ("two"))
	assert.Error(t, err)
	_, _, err = ParseXYZ("3\ncomment\nO 0 0 0\n")
	assert.Error(t, err)
	_, _, err = ParseXYZ("1\n\nO 0 0 x\n")
	assert.Error(t, err)
}

func TestGeometryMeasures(t *testing.T) {
	w := water()
	assert.InDelta(t, 0.9578, w.Distance(0, 1), 1e-4)
	assert.InDelta(t, 104.48, w.Angle(1, 0, 2)*180/math.Pi, 1e-2)
	j, d := w.Closest(1)
	assert.Equal(t, 0, j)
	assert.InDelta(t, w.Distance(0, 1), d, 1e-12)
	c := w.Centroid()
	assert.InDelta(t, 0, c.Y, 1e-12)
}

func TestSuperpose(t *testing.T) {
	ref := refGeo()
	test := moved(ref, 1.234, r3.Vec{X: 3, Y: -2, Z: 10})
	assert.False(t, test.AlmostEqual(ref, 0.1))

	dmax, err := MaxDisplacement(test, ref)
	require.NoError(t, err)
	assert.InDelta(t, 0, dmax, 1e-8)
	rmsd, err := RMSD(test, ref)
	require.NoError(t, err)
	assert.InDelta(t, 0, rmsd, 1e-8)

	// push one hydrogen well away
	bent := test.Clone()
	bent[6].Pos = r3.Add(bent[6].Pos, r3.Vec{X: 0.8})
	dmax, err = MaxDisplacement(bent, ref)
	require.NoError(t, err)
	assert.Greater(t, dmax, 0.3)

	_, err = MaxDisplacement(water(), ref)
	assert.Error(t, err)
}

func TestBonds(t *testing.T) {
	bonds, err := Bonds(water(), 0.45)
	require.NoError(t, err)
	assert.Equal(t, []Bond{{0, 1}, {0, 2}}, bonds)

	ok, err := Connected(water(), 0.45)
	require.NoError(t, err)
	assert.True(t, ok)

	dimer := append(water(), water().Translate(r3.Vec{X: 5})...)
	frags, err := Fragments(dimer, 0.45)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}}, frags)
	ok, err = Connected(dimer, 0.45)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Bonds(Geometry{{"Xx", r3.Vec{}}, {"H", r3.Vec{X: 1}}}, 0.45)
	assert.Error(t, err)

	b := NewBond(3, 1)
	assert.Equal(t, Bond{1, 3}, b)
	shared, ok := b.Shared(NewBond(3, 7))
	assert.True(t, ok)
	assert.Equal(t, 3, shared)
	assert.Equal(t, 1, b.Other(3))
}

func TestSymmetryEquivalent(t *testing.T) {
	w := water()
	swapped := Geometry{w[0], w[2], w[1]}
	swapped = moved(swapped, 0.7, r3.Vec{Z: 1})
	ok, err := SymmetryEquivalent(w, swapped, 1e-2)
	require.NoError(t, err)
	assert.True(t, ok)

	stretched := w.Clone()
	for i := 1; i < 3; i++ {
		stretched[i].Pos = r3.Add(w[0].Pos, r3.Scale(1.3, r3.Sub(w[i].Pos, w[0].Pos)))
	}
	ok, err = SymmetryEquivalent(w, stretched, 1e-2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = SymmetryEquivalent(w, refGeo(), 1e-2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func refVMatrix() VMatrix {
	return VMatrix{
		{"C", [3]int{-1, -1, -1}, [3]string{}},
		{"O", [3]int{0, -1, -1}, [3]string{"r1"}},
		{"O", [3]int{0, 1, -1}, [3]string{"r2", "a1"}},
		{"H", [3]int{0, 1, 2}, [3]string{"r3", "a2", "d1"}},
		{"H", [3]int{0, 1, 2}, [3]string{"r4", "a3", "d2"}},
		{"H", [3]int{1, 0, 2}, [3]string{"r5", "a4", "d3"}},
		{"H", [3]int{2, 0, 1}, [3]string{"r6", "a5", "d4"}},
	}
}

func TestVMatrix(t *testing.T) {
	vma := refVMatrix()
	require.NoError(t, vma.Validate())
	got, err := ParseVMatrix(vma.String())
	require.NoError(t, err)
	assert.True(t, got.Equal(vma))
	assert.Equal(t, 15, len(vma.Names()))

	bad := refVMatrix()
	bad[3].Keys[2] = 3
	assert.Error(t, bad.Validate())
	bad = refVMatrix()
	bad[1].Names[0] = ""
	assert.Error(t, bad.Validate())
	bad = refVMatrix()
	bad[0].Keys[0] = 0
	assert.Error(t, bad.Validate())
}

func TestZMatrix(t *testing.T) {
	zma := ZMatrix{
		VMatrix: refVMatrix(),
		Values: map[string]float64{
			"r1": 2.65933,
			"r2": 2.65933, "a1": 1.90743,
			"r3": 2.06844, "a2": 1.93366, "d1": 4.1477,
			"r4": 2.06548, "a3": 1.89469, "d2": 2.06369,
			"r5": 1.83126, "a4": 1.86751, "d3": 1.44253,
			"r6": 1.83126, "a5": 1.86751, "d4": 4.84065,
		},
	}
	require.NoError(t, zma.Validate())
	got, err := ParseZMatrix(zma.String())
	require.NoError(t, err)
	assert.True(t, got.AlmostEqual(zma, XYZTolerance))

	delete(zma.Values, "d4")
	assert.Error(t, zma.Validate())
	_, err = ParseZMatrix("C\nO 1 r1\n")
	assert.Error(t, err)
}
