package dedup

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/autofile/artifact"
	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
	"github.com/t7a/autofile/layout"
)

// Result is what Save did with a candidate.  Locs addresses the leaf
// written for an accepted, aliased, or routed candidate; Canonical is
// the stored conformer a duplicate or alias matched.
type Result struct {
	Disposition Disposition
	Reason      error
	Locs        db.Locs
	Canonical   db.Locs
}

// InstabilityHandler takes candidates that fell apart and were marked
// RouteUnstable.  It returns the locators it stored the candidate
// under, if any.
type InstabilityHandler interface {
	Unstable(root string, parentLocs db.Locs, cand Candidate, reason *DisconnectedStructureError) (db.Locs, error)
}

// Engine reconciles candidates with the conformers stored below one
// kind of parent node, usually a theory leaf.  Parent locators are
// passed to each call.
type Engine struct {
	Tol    db.Tolerances
	Set    *layout.ConformerSet
	Instab InstabilityHandler
	// Cache, when set, serves sibling listings.
	Cache *db.ExistingCache
}

// NewEngine returns an engine for the conformers below parent, routing
// unstable candidates to the instability directory under the same
// parent.
func NewEngine(tol db.Tolerances, parent *db.Node) *Engine {
	return &Engine{
		Tol:    tol,
		Set:    layout.NewConformerSet(parent),
		Instab: &InstabStore{Set: layout.NewInstabSet(parent), Tol: tol},
	}
}

func (e *Engine) existing(root string, parentLocs db.Locs) ([]db.Locs, error) {
	if e.Cache != nil {
		return e.Cache.Existing(e.Set.Leaf, root, parentLocs)
	}
	return e.Set.Leaf.Existing(root, parentLocs)
}

// Siblings loads every complete conformer below parentLocs, sorted by
// locator.  A leaf missing its geometry or energy is still being
// written, or was abandoned, and is skipped.  A leaf whose files don't
// parse is an error.
func (e *Engine) Siblings(root string, parentLocs db.Locs) (sibs []Sibling, err error) {
	suffixes, err := e.existing(root, parentLocs)
	if err != nil {
		return
	}
	for _, suffix := range suffixes {
		locs := parentLocs.Join(suffix...)
		var sib Sibling
		sib, err = e.sibling(root, locs)
		var nf *db.NotFoundError
		if errors.As(err, &nf) {
			log.Debugf("skipping incomplete conformer %s: %v", locs, err)
			err = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		sibs = append(sibs, sib)
	}
	return sortSiblings(sibs), nil
}

func (e *Engine) sibling(root string, locs db.Locs) (sib Sibling, err error) {
	sib.Locs = locs
	sib.Energy, err = e.Set.Energy.Read(root, locs)
	if err != nil {
		return
	}
	sib.Geometry, err = e.Set.Geometry.Read(root, locs)
	return
}

// reference picks the structure transition-state viability is judged
// against: the conformer at cand.RefLocs, or else the lowest-energy
// sibling.  It is nil when there is nothing to compare with.
func (e *Engine) reference(root string, parentLocs db.Locs, cand Candidate, sibs []Sibling) (geom.Geometry, error) {
	if cand.Reaction == nil {
		return nil, nil
	}
	if len(cand.RefLocs) > 0 {
		return e.Set.Geometry.Read(root, parentLocs.Join(cand.RefLocs...))
	}
	if len(sibs) == 0 {
		return nil, nil
	}
	best := sibs[0]
	for _, sib := range sibs[1:] {
		if sib.Energy < best.Energy {
			best = sib
		}
	}
	return best.Geometry, nil
}

// Save decides what cand is relative to the conformers already stored
// below parentLocs and updates the store to match: a new conformer
// leaf for Accepted, a symmetry leaf under the matched conformer for
// Alias, nothing for Duplicate, and for Rejected only the instability
// handler's write, if the candidate was routed there.
//
// Two processes saving the same structure at once may both accept it.
func (e *Engine) Save(root string, parentLocs db.Locs, cand Candidate) (res Result, err error) {
	sibs, err := e.Siblings(root, parentLocs)
	if err != nil {
		return
	}
	ref, err := e.reference(root, parentLocs, cand, sibs)
	if err != nil {
		return
	}
	dec, err := Decide(cand, sibs, ref, e.Tol)
	if err != nil {
		return
	}
	res = Result{Disposition: dec.Disposition, Reason: dec.Reason}
	log.Debugf("candidate at %.8f under %s: %s", cand.Energy, parentLocs, dec.Disposition)

	err = e.countSample(root, parentLocs, cand)
	if err != nil {
		return
	}

	switch dec.Disposition {
	case Rejected:
		var dis *DisconnectedStructureError
		if errors.As(dec.Reason, &dis) && dis.Routed && e.Instab != nil {
			res.Locs, err = e.Instab.Unstable(root, parentLocs, cand, dis)
		}
	case Duplicate:
		res.Canonical = dec.Match
	case Alias:
		res.Canonical = dec.Match
		res.Locs, err = e.saveAlias(root, dec.Match, cand)
	case Accepted:
		res.Locs, err = e.saveConformer(root, parentLocs, cand)
		if err != nil {
			return
		}
		sibs = append(sibs, Sibling{Locs: res.Locs, Geometry: cand.Geometry, Energy: cand.Energy})
		err = e.writeTrajectory(root, parentLocs, sibs)
	}
	return
}

// countSample adds cand to the number of candidates evaluated below
// parentLocs, kept in the conformer trunk's info.
func (e *Engine) countSample(root string, parentLocs db.Locs, cand Candidate) (err error) {
	defer Return(&err)
	ti := e.Set.TrunkInfo

	info, err := ti.Read(root, parentLocs)
	var nf *db.NotFoundError
	if errors.As(err, &nf) {
		err = e.Set.Trunk.Create(root, parentLocs)
		Ck(err)
		info = artifact.ConformerTrunkInfo{}
	}
	Ck(err)
	info.NSamp++
	for name, rng := range cand.TorsRanges {
		if info.TorsRanges == nil {
			info.TorsRanges = make(map[string][]float64)
		}
		info.TorsRanges[name] = rng
	}
	return ti.Write(root, parentLocs, info)
}

// Samples is the conformer trunk's info below parentLocs: how many
// candidates Save has evaluated there.
func (e *Engine) Samples(root string, parentLocs db.Locs) (info artifact.ConformerTrunkInfo, err error) {
	info, err = e.Set.TrunkInfo.Read(root, parentLocs)
	var nf *db.NotFoundError
	if errors.As(err, &nf) {
		return artifact.ConformerTrunkInfo{}, nil
	}
	return
}

// allocate draws random ids until one is free below prefix and creates
// the leaf for it.
func allocate(node *db.Node, root string, prefix db.Locs, attempts int) (locs db.Locs, err error) {
	for i := 0; i < attempts; i++ {
		var id string
		id, err = db.RandomID()
		if err != nil {
			return
		}
		locs = prefix.Join(db.Text(id))
		var taken bool
		taken, err = node.Exists(root, locs)
		if err != nil {
			return nil, err
		}
		if taken {
			log.Warnf("random id %s already taken under %s", id, prefix)
			continue
		}
		err = node.Create(root, locs)
		if err != nil {
			return nil, err
		}
		return locs, nil
	}
	return nil, fmt.Errorf("no free id under %s after %d attempts", prefix, attempts)
}

func (e *Engine) touched(root string, node *db.Node, locs db.Locs) {
	if e.Cache == nil {
		return
	}
	// the new leaf's parent directory is the one the listing read
	dir, err := node.Path(root, locs)
	if err == nil {
		e.Cache.Invalidate(filepath.Dir(dir))
	}
}

// saveConformer writes the full artifact set.  Energy goes last: a leaf
// without it is invisible to Siblings.
func (e *Engine) saveConformer(root string, parentLocs db.Locs, cand Candidate) (locs db.Locs, err error) {
	defer Return(&err)
	cs := e.Set

	locs, err = allocate(cs.Leaf, root, parentLocs, e.Tol.AllocAttempts)
	Ck(err)
	defer e.touched(root, cs.Leaf, locs)

	if cand.Info != nil {
		err = cs.Info.Write(root, locs, *cand.Info)
		Ck(err)
	}
	if cand.Input != "" {
		err = cs.Input.Write(root, locs, cand.Input)
		Ck(err)
	}
	err = cs.Geometry.Write(root, locs, cand.Geometry)
	Ck(err)
	if cand.Gradient != nil {
		err = cs.Gradient.Write(root, locs, cand.Gradient)
		Ck(err)
	}
	if cand.Hessian != nil {
		err = cs.Hessian.Write(root, locs, cand.Hessian)
		Ck(err)
	}
	if cand.ZMatrix != nil {
		zlocs := locs.Join(db.Int(0))
		err = cs.ZMatrix.Node.Create(root, zlocs)
		Ck(err)
		err = cs.ZMatrix.Write(root, zlocs, *cand.ZMatrix)
		Ck(err)
	}
	if cs.SinglePoint != nil {
		err = e.saveSinglePoint(root, locs, cand)
		Ck(err)
	}
	err = cs.Energy.Write(root, locs, cand.Energy)
	Ck(err)

	log.Debugf("saved conformer %s", locs)
	return
}

// saveSinglePoint files the conformer's energy as a single point at
// its own level of theory.
func (e *Engine) saveSinglePoint(root string, confLocs db.Locs, cand Candidate) (err error) {
	defer Return(&err)
	sp := e.Set.SinglePoint

	locs, err := e.Set.SinglePointLocs(confLocs)
	Ck(err)
	err = sp.Leaf.Create(root, locs)
	Ck(err)
	if cand.Info != nil {
		err = sp.Info.Write(root, locs, *cand.Info)
		Ck(err)
	}
	if cand.Input != "" {
		err = sp.Input.Write(root, locs, cand.Input)
		Ck(err)
	}
	err = sp.Energy.Write(root, locs, cand.Energy)
	Ck(err)
	return
}

// saveAlias stores the raw structure below the conformer it copies,
// with a record pointing back at it.
func (e *Engine) saveAlias(root string, canonical db.Locs, cand Candidate) (locs db.Locs, err error) {
	defer Return(&err)
	sym := e.Set.Sym

	locs, err = allocate(sym.Leaf, root, canonical, e.Tol.AllocAttempts)
	Ck(err)
	err = sym.Geometry.Write(root, locs, cand.Geometry)
	Ck(err)
	err = sym.Alias.Write(root, locs, artifact.AliasInfo{
		Canonical: canonical[len(canonical)-1:],
		Energy:    cand.Energy,
		Created:   time.Now().UTC(),
	})
	Ck(err)

	log.Debugf("saved %s as a symmetry copy of %s", locs, canonical)
	return
}

// writeTrajectory dumps the conformers in order of energy next to
// their leaves.
func (e *Engine) writeTrajectory(root string, parentLocs db.Locs, sibs []Sibling) (err error) {
	sorted := append([]Sibling(nil), sibs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Energy < sorted[j].Energy
	})
	frames := make([]artifact.Frame, len(sorted))
	for i, sib := range sorted {
		id := sib.Locs[len(sib.Locs)-1]
		frames[i] = artifact.Frame{
			Comment:  fmt.Sprintf("energy: %15.10f  %s", sib.Energy, id),
			Geometry: sib.Geometry,
		}
	}
	dir, err := e.Set.Trunk.Path(root, parentLocs)
	if err != nil {
		return
	}
	return artifact.TrajFile.Write(dir, frames)
}
