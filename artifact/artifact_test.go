package artifact

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hlubek/readercomp"
	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
)

func setup(t *testing.T) (dir string) {
	var err error
	if os.Getenv("DEBUG") == "1" {
		dir, err = ioutil.TempDir("", "autofile-artifact")
		Ck(err)
		fmt.Println(dir)
	} else {
		dir = t.TempDir()
	}
	return
}

func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func refGeo() geom.Geometry {
	return geom.Geometry{
		{Symbol: "C", Pos: r3.Vec{X: 0.066541036329, Y: -0.86543409422, Z: -0.56994517889}},
		{Symbol: "O", Pos: r3.Vec{X: 0.066541036329, Y: -0.86543409422, Z: 2.13152981129}},
		{Symbol: "O", Pos: r3.Vec{X: 0.066541036329, Y: 1.6165813318, Z: -1.63686376233}},
		{Symbol: "H", Pos: r3.Vec{X: -1.52331011945, Y: -1.99731957213, Z: -1.31521725797}},
		{Symbol: "H", Pos: r3.Vec{X: 1.84099386813, Y: -1.76479255185, Z: -1.16213243427}},
		{Symbol: "H", Pos: r3.Vec{X: -1.61114836922, Y: -0.17751142359, Z: 2.6046492029}},
		{Symbol: "H", Pos: r3.Vec{X: -1.61092727126, Y: 2.32295906780, Z: -1.19178601663}},
	}
}

func TestInput(t *testing.T) {
	dir := setup(t)
	ref := "<input file contents>\n  with indentation\n"
	tassert(t, !GeometryInput.Exists(dir), "exists before write")
	err := GeometryInput.Write(dir, ref)
	tassert(t, err == nil, "%v", err)
	tassert(t, GeometryInput.Exists(dir), "missing after write")
	got, err := GeometryInput.Read(dir)
	tassert(t, err == nil && got == ref, "got %q %v", got, err)
}

func TestEnergy(t *testing.T) {
	dir := setup(t)
	for _, ref := range []float64{-187.38518070487598, 0, 1e-300, -0.1} {
		err := EnergyFile.Write(dir, ref)
		tassert(t, err == nil, "%v", err)
		got, err := EnergyFile.Read(dir)
		tassert(t, err == nil, "%v", err)
		tassert(t, got == ref, "expected %v got %v", ref, got)
	}
}

func TestLennardJones(t *testing.T) {
	dir := setup(t)
	eps := LennardJonesEpsilon("lj", "Ar")
	sig := LennardJonesSigma("lj", "Ar")
	tassert(t, !eps.Exists(dir) && !sig.Exists(dir), "exists before write")
	Ck(eps.Write(dir, 247.880866746988))
	Ck(sig.Write(dir, 3.55018590361446))
	tassert(t, eps.Path(dir) == filepath.Join(dir, "Ar", "lj.eps"), "path %s", eps.Path(dir))
	e, err := eps.Read(dir)
	tassert(t, err == nil && e == 247.880866746988, "eps %v %v", e, err)
	s, err := sig.Read(dir)
	tassert(t, err == nil && s == 3.55018590361446, "sig %v %v", s, err)
}

func TestGeometry(t *testing.T) {
	dir := setup(t)
	ref := refGeo()
	tassert(t, !GeometryFile.Exists(dir), "exists before write")
	Ck(GeometryFile.Write(dir, ref))
	got, err := GeometryFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.AlmostEqual(ref, geom.XYZTolerance), "got %v", got)
}

func TestGradient(t *testing.T) {
	dir := setup(t)
	ref := mat.NewDense(7, 3, []float64{
		0.00004103632, 0.00003409422, 0.00004517889,
		0.00004103632, 0.00003409422, 0.00002981129,
		0.00004103632, 0.00008133180, 0.00006376233,
		0.00001011945, 0.00001957213, 0.00001725797,
		0.00009386813, 0.00009255185, 0.00003243427,
		0.00004836922, 0.00001142359, 0.00004920290,
		0.00002727126, 0.00005906780, 0.00008601663,
	})
	Ck(GradientFile.Write(dir, ref))
	got, err := GradientFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, mat.Equal(got, ref), "got %v", mat.Formatted(got))

	// a shape that wouldn't read back is refused, and the old file stays
	err = GradientFile.Write(dir, mat.NewDense(2, 4, nil))
	tassert(t, err != nil, "wrote a 2x4 gradient")
	got, err = GradientFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, mat.Equal(got, ref), "got %v", mat.Formatted(got))
}

func TestHessian(t *testing.T) {
	dir := setup(t)
	ref := mat.NewDense(3, 3, []float64{
		-0.21406, 0., 0.,
		0., 2.05336, 0.12105,
		0., 0.12105, 0.19177,
	})
	Ck(HessianFile.Write(dir, ref))
	got, err := HessianFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, mat.Equal(got, ref), "got %v", mat.Formatted(got))

	err = HessianFile.Write(dir, mat.NewDense(2, 2, nil))
	tassert(t, err != nil, "wrote a 2x2 hessian")
	err = HessianFile.Write(dir, mat.NewDense(3, 6, nil))
	tassert(t, err != nil, "wrote a 3x6 hessian")

	// a gradient is not a hessian
	Ck(ioutil.WriteFile(HessianFile.Path(dir), []byte("1 2 3\n4 5 6\n"), 0644))
	_, err = HessianFile.Read(dir)
	_, ok := err.(*db.CorruptArtifactError)
	tassert(t, ok, "expected CorruptArtifactError, got %v", err)
}

func refVMatrix() geom.VMatrix {
	return geom.VMatrix{
		{Symbol: "C", Keys: [3]int{-1, -1, -1}},
		{Symbol: "O", Keys: [3]int{0, -1, -1}, Names: [3]string{"r1"}},
		{Symbol: "O", Keys: [3]int{0, 1, -1}, Names: [3]string{"r2", "a1"}},
		{Symbol: "H", Keys: [3]int{0, 1, 2}, Names: [3]string{"r3", "a2", "d1"}},
	}
}

func TestZMatrix(t *testing.T) {
	dir := setup(t)
	ref := geom.ZMatrix{
		VMatrix: refVMatrix(),
		Values: map[string]float64{
			"r1": 2.65933, "r2": 2.65933, "a1": 1.90743,
			"r3": 2.06844, "a2": 1.93366, "d1": 4.1477,
		},
	}
	Ck(ZMatrixFile.Write(dir, ref))
	got, err := ZMatrixFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.AlmostEqual(ref, geom.XYZTolerance), "got %v", got)

	// invalid values are refused before anything is written
	delete(ref.Values, "d1")
	Ck(os.Remove(ZMatrixFile.Path(dir)))
	err = ZMatrixFile.Write(dir, ref)
	tassert(t, err != nil, "wrote incomplete z-matrix")
	tassert(t, !ZMatrixFile.Exists(dir), "partial file left behind")
}

func TestVMatrix(t *testing.T) {
	dir := setup(t)
	ref := refVMatrix()
	Ck(VMatrixFile.Write(dir, ref))
	got, err := VMatrixFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.Equal(ref), "got %v", got)
}

func TestInfo(t *testing.T) {
	dir := setup(t)
	start := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := RunInfo{
		Job:      "optimization",
		Prog:     "psi4",
		Method:   "b3lyp",
		Basis:    "6-31g*",
		Status:   StatusRunning,
		UTCStart: start,
	}
	Ck(GeometryInfo.Write(dir, ref))
	got, err := GeometryInfo.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.Job == ref.Job && got.Prog == ref.Prog && got.Status == ref.Status, "got %#v", got)
	tassert(t, got.UTCStart.Equal(start), "start %v", got.UTCStart)

	alias := AliasInfo{Canonical: db.L("abcdefghijkl"), Energy: -1.5}
	Ck(AliasInfoFile.Write(dir, alias))
	gotAlias, err := AliasInfoFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, gotAlias.Canonical.Equal(alias.Canonical), "canonical %v", gotAlias.Canonical)

	trunk := ConformerTrunkInfo{NSamp: 12, TorsRanges: map[string][]float64{"D5": {-3.14, 3.14}}}
	Ck(ConfInfoFile.Write(dir, trunk))
	gotTrunk, err := ConfInfoFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, gotTrunk.NSamp == 12, "nsamp %d", gotTrunk.NSamp)
	tassert(t, len(gotTrunk.TorsRanges["D5"]) == 2 && gotTrunk.TorsRanges["D5"][1] == 3.14, "ranges %v", gotTrunk.TorsRanges)

	Ck(TauInfoFile.Write(dir, SampleTrunkInfo{NSamp: 40}))
	gotTau, err := TauInfoFile.Read(dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, gotTau.NSamp == 40, "nsamp %d", gotTau.NSamp)

	// kind is checked
	wrong := DataFile[ConformerTrunkInfo]{
		Name:   GeometryInfo.Name,
		Encode: ConfInfoFile.Encode,
		Decode: ConfInfoFile.Decode,
	}
	_, err = wrong.Read(dir)
	_, ok := err.(*db.CorruptArtifactError)
	tassert(t, ok, "expected CorruptArtifactError, got %v", err)

	// so is the version
	buf, err := ioutil.ReadFile(GeometryInfo.Path(dir))
	Ck(err)
	newer := strings.Replace(string(buf), "version: 1", "version: 99", 1)
	Ck(ioutil.WriteFile(GeometryInfo.Path(dir), []byte(newer), 0644))
	_, err = GeometryInfo.Read(dir)
	_, ok = err.(*db.CorruptArtifactError)
	tassert(t, ok, "expected CorruptArtifactError, got %v", err)
}

func TestReadErrors(t *testing.T) {
	dir := setup(t)
	_, err := EnergyFile.Read(dir)
	_, ok := err.(*db.NotFoundError)
	tassert(t, ok, "expected NotFoundError, got %v", err)

	Ck(ioutil.WriteFile(EnergyFile.Path(dir), []byte("not a number\n"), 0644))
	_, err = EnergyFile.Read(dir)
	_, ok = err.(*db.CorruptArtifactError)
	tassert(t, ok, "expected CorruptArtifactError, got %v", err)

	err = EnergyFile.Write(filepath.Join(dir, "missing"), 1.0)
	_, ok = err.(*db.NotFoundError)
	tassert(t, ok, "expected NotFoundError, got %v", err)
}

func TestTrajectory(t *testing.T) {
	dir := setup(t)
	g1 := refGeo()
	g2 := refGeo().Translate(r3.Vec{Z: 0.5})
	frames := []Frame{
		{Comment: "energy: -187.3894105487809", Geometry: g1},
		{Comment: "energy: -187.3850624381528", Geometry: g2},
	}
	tassert(t, !TrajFile.Exists(dir), "exists before write")
	Ck(TrajFile.Write(dir, frames))
	tassert(t, TrajFile.Exists(dir), "missing after write")

	expect := strings.NewReader(g1.XYZ(frames[0].Comment) + g2.XYZ(frames[1].Comment))
	fh, err := os.Open(TrajFile.Path(dir))
	Ck(err)
	defer fh.Close()
	ok, err := readercomp.Equal(expect, fh, 4096)
	tassert(t, err == nil, "readercomp.Equal: %v", err)
	tassert(t, ok, "trajectory differs")
}

func TestArtifactBound(t *testing.T) {
	root := setup(t)
	trunk := db.Trunk("trunk", "TRUNK", nil)
	ene := Bind(trunk, EnergyFile)

	err := ene.Write(root, db.Locs{}, -1.0)
	_, ok := err.(*db.NotFoundError)
	tassert(t, ok, "expected NotFoundError before create, got %v", err)

	Ck(trunk.Create(root, db.Locs{}))
	ok, err = ene.Exists(root, db.Locs{})
	tassert(t, err == nil && !ok, "exists %v %v", ok, err)
	Ck(ene.Write(root, db.Locs{}, -1.0))
	got, err := ene.Read(root, db.Locs{})
	tassert(t, err == nil && got == -1.0, "got %v %v", got, err)
	path, err := ene.Path(root, db.Locs{})
	tassert(t, err == nil && path == filepath.Join(root, "TRUNK", "geom.ene"), "path %s %v", path, err)

	_, err = ene.Read(root, db.L(1))
	_, ok = err.(*db.InvalidLocatorError)
	tassert(t, ok, "expected InvalidLocatorError, got %v", err)
}
