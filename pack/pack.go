// Package pack keeps a whole set of tau samples in one msgpack file
// next to the tau leaves, for stores that hold many thousands of
// samples.
package pack

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/vmihailenco/msgpack"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/t7a/autofile/artifact"
	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
	"github.com/t7a/autofile/layout"
)

// FileName is the archive's name in the tau trunk directory.
const FileName = "tau.pack"

// Version is written into every archive.
const Version = 1

// Sample is one tau leaf.  Coordinates and matrices are stored
// row-major.
type Sample struct {
	ID       string    `msgpack:"id"`
	Symbols  []string  `msgpack:"symbols"`
	Coords   []float64 `msgpack:"coords"`
	Energy   float64   `msgpack:"energy"`
	Gradient []float64 `msgpack:"gradient,omitempty"`
	Hessian  []float64 `msgpack:"hessian,omitempty"`
}

type Archive struct {
	Version int      `msgpack:"version"`
	Samples []Sample `msgpack:"samples"`
}

// Pack reads and writes the archive for the samples below one kind of
// parent node.
type Pack struct {
	Set *layout.SampleSet
}

func New(parent *db.Node) *Pack {
	return &Pack{Set: layout.NewSampleSet(parent)}
}

// Path is the archive's location for trunkLocs.
func (p *Pack) Path(root string, trunkLocs db.Locs) (path string, err error) {
	dir, err := p.Set.Trunk.Path(root, trunkLocs)
	if err != nil {
		return
	}
	return filepath.Join(dir, FileName), nil
}

// Write collects every complete sample below trunkLocs into the
// archive, replacing any earlier one, and returns how many it packed.
// Samples without a geometry or energy are left out.
func (p *Pack) Write(root string, trunkLocs db.Locs) (n int, err error) {
	defer Return(&err)

	err = p.Set.Trunk.Create(root, trunkLocs)
	Ck(err)
	suffixes, err := p.Set.Leaf.Existing(root, trunkLocs)
	Ck(err)
	archive := Archive{Version: Version}
	for _, suffix := range suffixes {
		locs := trunkLocs.Join(suffix...)
		var s Sample
		s, err = p.sample(root, locs)
		var nf *db.NotFoundError
		if errors.As(err, &nf) {
			log.Debugf("not packing incomplete sample %s: %v", locs, err)
			continue
		}
		Ck(err)
		archive.Samples = append(archive.Samples, s)
	}
	sort.Slice(archive.Samples, func(i, j int) bool {
		return archive.Samples[i].ID < archive.Samples[j].ID
	})

	buf, err := msgpack.Marshal(&archive)
	Ck(err)
	path, err := p.Path(root, trunkLocs)
	Ck(err)
	err = db.WriteFile(path, buf)
	Ck(err)
	err = p.record(root, trunkLocs, len(archive.Samples))
	Ck(err)

	log.Debugf("packed %d samples into %s", len(archive.Samples), path)
	return len(archive.Samples), nil
}

// record raises the trunk's sample count to at least n.  The count
// never drops: samples that were drawn and lost still count.
func (p *Pack) record(root string, trunkLocs db.Locs, n int) (err error) {
	ti := p.Set.TrunkInfo
	info, err := ti.Read(root, trunkLocs)
	var nf *db.NotFoundError
	if errors.As(err, &nf) {
		info, err = artifact.SampleTrunkInfo{}, nil
	}
	if err != nil {
		return
	}
	if info.NSamp >= n {
		return nil
	}
	info.NSamp = n
	return ti.Write(root, trunkLocs, info)
}

func (p *Pack) sample(root string, locs db.Locs) (s Sample, err error) {
	set := p.Set
	id, ok := locs[len(locs)-1].AsText()
	if !ok {
		return s, fmt.Errorf("sample locator %s is not an id", locs)
	}
	s.ID = id
	g, err := set.Geometry.Read(root, locs)
	if err != nil {
		return
	}
	s.Symbols = g.Symbols()
	s.Coords = flatten(g.Coords())
	s.Energy, err = set.Energy.Read(root, locs)
	if err != nil {
		return
	}
	if ok, _ := set.Gradient.Exists(root, locs); ok {
		var m *mat.Dense
		m, err = set.Gradient.Read(root, locs)
		if err != nil {
			return
		}
		s.Gradient = flatten(m)
	}
	if ok, _ := set.Hessian.Exists(root, locs); ok {
		var m *mat.Dense
		m, err = set.Hessian.Read(root, locs)
		if err != nil {
			return
		}
		s.Hessian = flatten(m)
	}
	return
}

func flatten(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}

// Read loads the archive.  A missing archive is a *db.NotFoundError
// and one that doesn't decode is a *db.CorruptArtifactError.
func (p *Pack) Read(root string, trunkLocs db.Locs) (archive *Archive, err error) {
	path, err := p.Path(root, trunkLocs)
	if err != nil {
		return
	}
	buf, err := db.ReadFile(path)
	if err != nil {
		return
	}
	archive = &Archive{}
	err = msgpack.Unmarshal(buf, archive)
	if err == nil {
		err = archive.check()
	}
	if err != nil {
		return nil, &db.CorruptArtifactError{Path: path, Err: err}
	}
	return
}

// Existing lists the sample ids in the archive.
func (p *Pack) Existing(root string, trunkLocs db.Locs) (ids []string, err error) {
	archive, err := p.Read(root, trunkLocs)
	if err != nil {
		return
	}
	for _, s := range archive.Samples {
		ids = append(ids, s.ID)
	}
	return
}

// Unpack writes a leaf for every archived sample that has none, and
// returns how many it wrote.
func (p *Pack) Unpack(root string, trunkLocs db.Locs) (n int, err error) {
	defer Return(&err)
	set := p.Set

	archive, err := p.Read(root, trunkLocs)
	if err != nil {
		return
	}
	for _, s := range archive.Samples {
		locs := trunkLocs.Join(db.Text(s.ID))
		var ok bool
		ok, err = set.Energy.Exists(root, locs)
		Ck(err)
		if ok {
			continue
		}
		err = set.Leaf.Create(root, locs)
		Ck(err)
		err = set.Geometry.Write(root, locs, s.Geometry())
		Ck(err)
		if s.Gradient != nil {
			err = set.Gradient.Write(root, locs, mat.NewDense(len(s.Symbols), 3, s.Gradient))
			Ck(err)
		}
		if s.Hessian != nil {
			dim := 3 * len(s.Symbols)
			err = set.Hessian.Write(root, locs, mat.NewDense(dim, dim, s.Hessian))
			Ck(err)
		}
		err = set.Energy.Write(root, locs, s.Energy)
		Ck(err)
		n++
	}
	return
}

func (a *Archive) check() error {
	if a.Version < 1 || a.Version > Version {
		return fmt.Errorf("unsupported archive version %d", a.Version)
	}
	for _, s := range a.Samples {
		if !db.IsRandomID(s.ID) {
			return fmt.Errorf("bad sample id %q", s.ID)
		}
		nat := len(s.Symbols)
		if len(s.Coords) != 3*nat {
			return fmt.Errorf("sample %s: %d coordinates for %d atoms", s.ID, len(s.Coords), nat)
		}
		if s.Gradient != nil && len(s.Gradient) != 3*nat {
			return fmt.Errorf("sample %s: gradient size %d", s.ID, len(s.Gradient))
		}
		if s.Hessian != nil && len(s.Hessian) != 9*nat*nat {
			return fmt.Errorf("sample %s: hessian size %d", s.ID, len(s.Hessian))
		}
	}
	return nil
}

// Sample returns the sample with the given id.
func (a *Archive) Sample(id string) (s Sample, ok bool) {
	i := sort.Search(len(a.Samples), func(i int) bool { return a.Samples[i].ID >= id })
	if i < len(a.Samples) && a.Samples[i].ID == id {
		return a.Samples[i], true
	}
	return
}

func (s Sample) Geometry() geom.Geometry {
	g := make(geom.Geometry, len(s.Symbols))
	for i, sym := range s.Symbols {
		c := s.Coords[3*i : 3*i+3]
		g[i] = geom.Atom{Symbol: sym, Pos: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}
	}
	return g
}
