package dedup

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/t7a/autofile/artifact"
	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
)

// Disposition is the outcome of reconciling a candidate with the
// stored set.
type Disposition int

const (
	Accepted Disposition = iota + 1
	Alias
	Duplicate
	Rejected
)

func (d Disposition) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Alias:
		return "alias"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("disposition(%d)", int(d))
}

// Policy says what to do with a candidate that is not a single
// connected fragment.
type Policy int

const (
	// RequireConnected rejects it.
	RequireConnected Policy = iota
	// AllowFragments skips the connectivity check, for states that are
	// meant to hold several fragments.
	AllowFragments
	// RouteUnstable rejects it and hands it to the InstabilityHandler.
	RouteUnstable
)

// Class is a reaction class label, e.g. "hydrogen abstraction".  The
// viability check keys on the words addition, abstraction and
// elimination appearing in it.
type Class string

const (
	ClassAddition     Class = "addition"
	ClassAbstraction  Class = "hydrogen abstraction"
	ClassMigration    Class = "hydrogen migration"
	ClassBetaScission Class = "beta scission"
	ClassRingForming  Class = "ring forming scission"
	ClassElimination  Class = "elimination"
	ClassSubstitution Class = "substitution"
	ClassInsertion    Class = "insertion"
)

func (c Class) has(word string) bool {
	return strings.Contains(string(c), word)
}

// Reaction tags a transition-state candidate with the bonds that form
// and break across it.  Atom indexes refer to the candidate geometry.
type Reaction struct {
	Class    Class
	Forming  []geom.Bond
	Breaking []geom.Bond
}

// Candidate is a freshly computed structure awaiting a decision.  The
// optional fields are written alongside geometry and energy when the
// candidate is accepted.
type Candidate struct {
	Geometry     geom.Geometry
	Energy       float64
	Reaction     *Reaction
	Connectivity Policy
	// RefLocs selects the stored conformer (locator suffix) to check
	// transition-state viability against; by default the lowest-energy
	// one is used.
	RefLocs db.Locs

	Info     *artifact.RunInfo
	Input    string
	ZMatrix  *geom.ZMatrix
	Gradient *mat.Dense
	Hessian  *mat.Dense
	// TorsRanges are the torsion ranges the candidate was sampled
	// from, recorded in the conformer trunk's info.
	TorsRanges map[string][]float64
}

// Sibling is an already accepted structure at the same level.
type Sibling struct {
	Locs     db.Locs
	Geometry geom.Geometry
	Energy   float64
}

// Decision is the pure outcome of Decide.  Match is the sibling a
// Duplicate or Alias refers to; Reason explains a rejection.
type Decision struct {
	Disposition Disposition
	Match       db.Locs
	Reason      error
}

// DisconnectedStructureError rejects a candidate that fell into
// several fragments.  Routed is set when the candidate was handed to
// the instability path instead of being dropped.
type DisconnectedStructureError struct {
	Fragments [][]int
	Routed    bool
}

func (e *DisconnectedStructureError) Error() string {
	return fmt.Sprintf("structure is disconnected into %d fragments", len(e.Fragments))
}

// ImplausibleGeometryError rejects a transition-state candidate that
// drifted too far from the reference structure.
type ImplausibleGeometryError struct {
	Check string
	Atoms []int
	Ref   float64
	Got   float64
	Limit float64
}

func (e *ImplausibleGeometryError) Error() string {
	return fmt.Sprintf("%s check failed for atoms %v: reference %.4f, candidate %.4f, limit %.4f",
		e.Check, e.Atoms, e.Ref, e.Got, e.Limit)
}
