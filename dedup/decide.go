package dedup

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
)

// equilibrium check thresholds for addition and abstraction
const (
	equiShift = 0.1
	equiGap   = 0.2
)

// maxDisplacement is swapped out by tests that count structural
// comparisons.
var maxDisplacement = geom.MaxDisplacement

// Decide runs the reconciliation checks for cand against siblings, in
// order, and returns the first disposition that applies.  ref is the
// reference structure for transition-state viability; it is ignored
// when cand carries no Reaction.  Decide does no I/O, and the returned
// error is for malformed input only: rejections come back as a
// Rejected decision with the reason attached.
func Decide(cand Candidate, siblings []Sibling, ref geom.Geometry, tol db.Tolerances) (dec Decision, err error) {
	if cand.Geometry.Len() == 0 {
		return dec, errors.New("candidate has no atoms")
	}
	sibs := sortSiblings(siblings)

	reason, err := connectivity(cand, tol)
	if err != nil || reason != nil {
		return Decision{Disposition: Rejected, Reason: reason}, err
	}

	if cand.Reaction != nil && ref != nil {
		reason, err = viability(cand.Geometry, ref, *cand.Reaction, tol)
		if err != nil || reason != nil {
			return Decision{Disposition: Rejected, Reason: reason}, err
		}
	}

	for _, sib := range sibs {
		if math.Abs(cand.Energy-sib.Energy) > tol.Energy {
			continue
		}
		if !cand.Geometry.SameSymbols(sib.Geometry) {
			continue
		}
		var d float64
		d, err = maxDisplacement(cand.Geometry, sib.Geometry)
		if err != nil {
			return dec, errors.Wrapf(err, "compare with %s", sib.Locs)
		}
		if d < tol.Distance {
			log.Debugf("duplicate of %s: max displacement %.4f", sib.Locs, d)
			return Decision{Disposition: Duplicate, Match: sib.Locs}, nil
		}
	}

	for _, sib := range sibs {
		if math.Abs(cand.Energy-sib.Energy) > tol.SymEnergy {
			continue
		}
		var same bool
		same, err = geom.SymmetryEquivalent(cand.Geometry, sib.Geometry, tol.Fingerprint)
		if err != nil {
			return dec, errors.Wrapf(err, "fingerprint against %s", sib.Locs)
		}
		if same {
			log.Debugf("symmetry copy of %s", sib.Locs)
			return Decision{Disposition: Alias, Match: sib.Locs}, nil
		}
	}

	return Decision{Disposition: Accepted}, nil
}

// sortSiblings orders a copy of siblings by locator so the first match
// doesn't depend on directory listing order.
func sortSiblings(siblings []Sibling) []Sibling {
	sibs := append([]Sibling(nil), siblings...)
	sort.SliceStable(sibs, func(i, j int) bool {
		return sibs[i].Locs.String() < sibs[j].Locs.String()
	})
	return sibs
}

func connectivity(cand Candidate, tol db.Tolerances) (reason error, err error) {
	if cand.Connectivity == AllowFragments {
		return
	}
	frags, err := geom.Fragments(cand.Geometry, tol.BondTolerance)
	if err != nil {
		return nil, errors.Wrap(err, "connectivity")
	}
	if len(frags) <= 1 {
		return
	}
	return &DisconnectedStructureError{
		Fragments: frags,
		Routed:    cand.Connectivity == RouteUnstable,
	}, nil
}

// viability compares the forming and breaking bonds of a
// transition-state candidate with the reference structure.
func viability(cand, ref geom.Geometry, rxn Reaction, tol db.Tolerances) (reason error, err error) {
	if !cand.SameSymbols(ref) {
		return nil, errors.New("reference structure differs in composition or atom order")
	}
	if err = checkBonds(cand, rxn.Forming, rxn.Breaking); err != nil {
		return
	}
	rxn.Forming = normalized(rxn.Forming)
	rxn.Breaking = normalized(rxn.Breaking)

	if !rxn.Class.has("elimination") {
		for _, f := range rxn.Forming {
			for _, b := range rxn.Breaking {
				mid, ok := f.Shared(b)
				if !ok || f == b {
					continue
				}
				i, k := f.Other(mid), b.Other(mid)
				got, want := cand.Angle(i, mid, k), ref.Angle(i, mid, k)
				if math.Abs(got-want) > tol.Angle {
					return &ImplausibleGeometryError{
						Check: "angle", Atoms: []int{i, mid, k},
						Ref: want, Got: got, Limit: tol.Angle,
					}, nil
				}
			}
		}
	}

	radical := rxn.Class.has("add") || rxn.Class.has("abst")
	if !radical {
		for _, bnd := range append(append([]geom.Bond{}, rxn.Forming...), rxn.Breaking...) {
			if r := displaced(cand, ref, bnd, "distance", tol.OtherDisp); r != nil {
				return r, nil
			}
		}
		return
	}

	formLimit := tol.RadicalDisp
	switch {
	case rxn.Class.has("abstraction"):
		formLimit = tol.AbstractDisp
	case rxn.Class.has("addition"):
		formLimit = tol.AdditionDisp
	}
	for _, f := range rxn.Forming {
		// the radical end must keep its nearest neighbor
		gotNear, _ := cand.Closest(f.J)
		wantNear, _ := ref.Closest(f.J)
		if gotNear != wantNear {
			return &ImplausibleGeometryError{
				Check: "nearest neighbor", Atoms: []int{f.J, gotNear},
				Ref: ref.Distance(f.J, wantNear), Got: cand.Distance(f.J, gotNear),
			}, nil
		}
		if r := displaced(cand, ref, f, "forming bond", formLimit); r != nil {
			return r, nil
		}
	}
	for _, bnd := range append(append([]geom.Bond{}, rxn.Forming...), rxn.Breaking...) {
		var equi float64
		equi, err = geom.EquilibriumLength(cand[bnd.I].Symbol, cand[bnd.J].Symbol)
		if err != nil {
			return nil, err
		}
		got, want := cand.Distance(bnd.I, bnd.J), ref.Distance(bnd.I, bnd.J)
		if math.Abs(got-want) > equiShift && got-equi < equiGap {
			return &ImplausibleGeometryError{
				Check: "near equilibrium", Atoms: []int{bnd.I, bnd.J},
				Ref: equi, Got: got, Limit: equiGap,
			}, nil
		}
	}
	return
}

func displaced(cand, ref geom.Geometry, bnd geom.Bond, check string, limit float64) error {
	got, want := cand.Distance(bnd.I, bnd.J), ref.Distance(bnd.I, bnd.J)
	if math.Abs(got-want) > limit {
		return &ImplausibleGeometryError{
			Check: check, Atoms: []int{bnd.I, bnd.J},
			Ref: want, Got: got, Limit: limit,
		}
	}
	return nil
}

// normalized returns bonds with the lower atom index first, so J is
// the radical end of a forming bond.
func normalized(bonds []geom.Bond) []geom.Bond {
	out := make([]geom.Bond, len(bonds))
	for i, b := range bonds {
		out[i] = geom.NewBond(b.I, b.J)
	}
	return out
}

func checkBonds(g geom.Geometry, sets ...[]geom.Bond) error {
	n := g.Len()
	for _, set := range sets {
		for _, b := range set {
			if b.I < 0 || b.J < 0 || b.I >= n || b.J >= n || b.I == b.J {
				return errors.Errorf("bond %d-%d out of range for %d atoms", b.I, b.J, g.Len())
			}
		}
	}
	return nil
}
