package dedup

import (
	"github.com/t7a/autofile/db"
)

// Finding is a stored conformer that Decide would no longer accept
// given the conformers sorted before it.
type Finding struct {
	Locs        db.Locs
	Match       db.Locs
	Disposition Disposition
}

// Sweep re-runs the uniqueness and symmetry checks over the stored
// conformers below parentLocs, each against the ones that sort before
// it, and reports the pairs that match.  It doesn't change the store,
// so it is safe to run at any time and as often as wanted; resolving
// a finding is left to the caller.
func (e *Engine) Sweep(root string, parentLocs db.Locs) (findings []Finding, err error) {
	sibs, err := e.Siblings(root, parentLocs)
	if err != nil {
		return
	}
	for i, sib := range sibs {
		cand := Candidate{
			Geometry:     sib.Geometry,
			Energy:       sib.Energy,
			Connectivity: AllowFragments,
		}
		var dec Decision
		dec, err = Decide(cand, sibs[:i], nil, e.Tol)
		if err != nil {
			return nil, err
		}
		if dec.Disposition == Duplicate || dec.Disposition == Alias {
			findings = append(findings, Finding{
				Locs:        sib.Locs,
				Match:       dec.Match,
				Disposition: dec.Disposition,
			})
		}
	}
	return
}
