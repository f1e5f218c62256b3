package pack

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	. "github.com/stevegt/goadapt"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
	"github.com/t7a/autofile/layout"
)

func setup(t *testing.T) (root string) {
	if os.Getenv("DEBUG") == "1" {
		dir, err := ioutil.TempDir("", "pack")
		Ck(err)
		fmt.Println(dir)
		return dir
	}
	return t.TempDir()
}

func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(txt, args...)
	}
}

var trunkLocs = db.L("InChI=1S/CH4/h1H4", 0, 1, "b3lyp", "6-31g*", "R")

func methane(stretch float64) geom.Geometry {
	d := 0.629 + stretch
	return geom.Geometry{
		{Symbol: "C"},
		{Symbol: "H", Pos: r3.Vec{X: d, Y: d, Z: d}},
		{Symbol: "H", Pos: r3.Vec{X: d, Y: -d, Z: -d}},
		{Symbol: "H", Pos: r3.Vec{X: -d, Y: d, Z: -d}},
		{Symbol: "H", Pos: r3.Vec{X: -d, Y: -d, Z: d}},
	}
}

func putSample(t *testing.T, p *Pack, root, id string, g geom.Geometry, ene float64, withGrad bool) db.Locs {
	set := p.Set
	locs := trunkLocs.Join(db.Text(id))
	Ck(set.Leaf.Create(root, locs))
	Ck(set.Geometry.Write(root, locs, g))
	if withGrad {
		grad := mat.NewDense(g.Len(), 3, nil)
		grad.Set(1, 2, -2.5e-3)
		Ck(set.Gradient.Write(root, locs, grad))
	}
	Ck(set.Energy.Write(root, locs, ene))
	return locs
}

func TestPackRoundTrip(t *testing.T) {
	root := setup(t)
	p := New(layout.SpeciesTheory(nil))

	putSample(t, p, root, "BBBBBBBBBBBB", methane(0.01), -40.51, true)
	putSample(t, p, root, "AAAAAAAAAAAA", methane(0), -40.52, false)
	// incomplete: no energy
	incomplete := trunkLocs.Join(db.Text("CCCCCCCCCCCC"))
	Ck(p.Set.Leaf.Create(root, incomplete))
	Ck(p.Set.Geometry.Write(root, incomplete, methane(0.02)))

	n, err := p.Write(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, n == 2, "packed %d", n)

	ids, err := p.Existing(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, len(ids) == 2 && ids[0] == "AAAAAAAAAAAA" && ids[1] == "BBBBBBBBBBBB", "%v", ids)

	archive, err := p.Read(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	s, ok := archive.Sample("BBBBBBBBBBBB")
	tassert(t, ok, "sample missing")
	tassert(t, s.Energy == -40.51, "energy %v", s.Energy)
	tassert(t, s.Geometry().AlmostEqual(methane(0.01), geom.XYZTolerance), "geometry %v", s.Geometry())
	tassert(t, len(s.Gradient) == 15 && s.Gradient[5] == -2.5e-3, "gradient %v", s.Gradient)
	s, ok = archive.Sample("AAAAAAAAAAAA")
	tassert(t, ok, "sample missing")
	tassert(t, s.Gradient == nil, "gradient %v", s.Gradient)
	_, ok = archive.Sample("CCCCCCCCCCCC")
	tassert(t, !ok, "incomplete sample packed")
}

func TestPackRecordsCount(t *testing.T) {
	root := setup(t)
	p := New(layout.SpeciesTheory(nil))
	putSample(t, p, root, "AAAAAAAAAAAA", methane(0), -40.52, false)
	putSample(t, p, root, "BBBBBBBBBBBB", methane(0.01), -40.51, false)

	_, err := p.Write(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	info, err := p.Set.TrunkInfo.Read(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, info.NSamp == 2, "nsamp %d", info.NSamp)

	// a count kept by the sampler is not lowered, and its ranges stay
	info.NSamp = 5
	info.TorsRanges = map[string][]float64{"D5": {0, 2}}
	Ck(p.Set.TrunkInfo.Write(root, trunkLocs, info))
	_, err = p.Write(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	info, err = p.Set.TrunkInfo.Read(root, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, info.NSamp == 5, "nsamp %d", info.NSamp)
	tassert(t, len(info.TorsRanges["D5"]) == 2, "ranges %v", info.TorsRanges)
}

func TestUnpack(t *testing.T) {
	src := setup(t)
	p := New(layout.SpeciesTheory(nil))
	putSample(t, p, src, "AAAAAAAAAAAA", methane(0), -40.52, true)
	putSample(t, p, src, "BBBBBBBBBBBB", methane(0.01), -40.51, false)
	_, err := p.Write(src, trunkLocs)
	tassert(t, err == nil, "%v", err)

	// carry the archive alone to a fresh store
	path, err := p.Path(src, trunkLocs)
	Ck(err)
	buf, err := ioutil.ReadFile(path)
	Ck(err)
	dst := setup(t)
	Ck(p.Set.Trunk.Create(dst, trunkLocs))
	dpath, err := p.Path(dst, trunkLocs)
	Ck(err)
	Ck(db.WriteFile(dpath, buf))

	n, err := p.Unpack(dst, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, n == 2, "unpacked %d", n)
	locs := trunkLocs.Join(db.Text("AAAAAAAAAAAA"))
	ene, err := p.Set.Energy.Read(dst, locs)
	tassert(t, err == nil && ene == -40.52, "%v %v", ene, err)
	grad, err := p.Set.Gradient.Read(dst, locs)
	tassert(t, err == nil, "%v", err)
	tassert(t, grad.At(1, 2) == -2.5e-3, "gradient %v", mat.Formatted(grad))
	ok, err := p.Set.Hessian.Exists(dst, locs)
	tassert(t, err == nil && !ok, "hessian %v %v", ok, err)

	// a second unpack finds everything in place
	n, err = p.Unpack(dst, trunkLocs)
	tassert(t, err == nil, "%v", err)
	tassert(t, n == 0, "unpacked %d", n)
}

func TestReadErrors(t *testing.T) {
	root := setup(t)
	p := New(layout.SpeciesTheory(nil))

	_, err := p.Read(root, trunkLocs)
	_, ok := err.(*db.NotFoundError)
	tassert(t, ok, "%T %v", err, err)

	Ck(p.Set.Trunk.Create(root, trunkLocs))
	path, err := p.Path(root, trunkLocs)
	Ck(err)
	Ck(db.WriteFile(path, []byte("\xc1garbage")))
	_, err = p.Read(root, trunkLocs)
	_, ok = err.(*db.CorruptArtifactError)
	tassert(t, ok, "%T %v", err, err)

	_, err = p.Read(root, db.L("InChI=1S/CH4/h1H4", 0, 1))
	_, ok = err.(*db.InvalidLocatorError)
	tassert(t, ok, "%T %v", err, err)
}
