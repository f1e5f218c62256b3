package layout

import (
	"github.com/t7a/autofile/db"
)

// fixed directory names
const (
	RunDir         = "RUN"
	SpeciesDir     = "SPC"
	ReactionDir    = "RXN"
	ConformerDir   = "CONFS"
	SymmetryDir    = "SYM"
	ZMatrixDir     = "Z"
	SinglePointDir = "SP"
	ScanDir        = "SCANS"
	TauDir         = "TAU"
	BuildDir       = "BUILD"
	InstabDir      = "INSTAB"
)

// Every constructor takes the node it hangs under; nil means the store
// root.

func RunTrunk(parent *db.Node) *db.Node {
	return db.Trunk("run_trunk", RunDir, parent)
}

// RunLeaf holds one job, named for its kind: energy, gradient,
// hessian, optimization, ...
func RunLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: textSchema("run_leaf"), Parent: RunTrunk(parent), Removable: true}
}

// SubrunLeaf holds one iteration of a job that was restarted.
func SubrunLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: subrunSchema("subrun_leaf"), Parent: parent, Removable: true}
}

func SpeciesTrunk(parent *db.Node) *db.Node {
	return db.Trunk("species_trunk", SpeciesDir, parent)
}

// SpeciesLeaf is addressed by (inchi, charge, multiplicity).
func SpeciesLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: speciesSchema("species_leaf"), Parent: SpeciesTrunk(parent), Removable: true}
}

func ReactionTrunk(parent *db.Node) *db.Node {
	return db.Trunk("reaction_trunk", ReactionDir, parent)
}

// ReactionLeaf is addressed by (inchis, charges, multiplicities,
// ts multiplicity), the first three as [reactants, products] pairs.
func ReactionLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: reactionSchema("reaction_leaf"), Parent: ReactionTrunk(parent), Removable: true}
}

// TheoryLeaf is addressed by (method, basis, Restricted|Unrestricted)
// and sits directly under its parent.
func TheoryLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: theorySchema("theory_leaf"), Parent: parent, Removable: true}
}

func ConformerTrunk(parent *db.Node) *db.Node {
	return db.Trunk("conformer_trunk", ConformerDir, parent)
}

// ConformerLeaf is addressed by a random id.  Conformer ids can't be
// regenerated, so the leaf refuses removal.
func ConformerLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: randomIDSchema("conformer_leaf"), Parent: ConformerTrunk(parent)}
}

func SymmetryTrunk(parent *db.Node) *db.Node {
	return db.Trunk("symmetry_trunk", SymmetryDir, parent)
}

// SymmetryLeaf holds a structure found to be a symmetry copy of the
// conformer it sits under.
func SymmetryLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: randomIDSchema("symmetry_leaf"), Parent: SymmetryTrunk(parent)}
}

func ZMatrixTrunk(parent *db.Node) *db.Node {
	return db.Trunk("zmatrix_trunk", ZMatrixDir, parent)
}

func ZMatrixLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: intSchema("zmatrix_leaf"), Parent: ZMatrixTrunk(parent), Removable: true}
}

func SinglePointTrunk(parent *db.Node) *db.Node {
	return db.Trunk("single_point_trunk", SinglePointDir, parent)
}

// SinglePointLeaf is a TheoryLeaf under the single-point trunk.
func SinglePointLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: theorySchema("single_point_leaf"), Parent: SinglePointTrunk(parent), Removable: true}
}

func ScanTrunk(parent *db.Node) *db.Node {
	return db.Trunk("scan_trunk", ScanDir, parent)
}

// ScanBranch is addressed by the list of coordinate names scanned.
func ScanBranch(parent *db.Node) *db.Node {
	return &db.Node{Schema: scanBranchSchema("scan_branch"), Parent: ScanTrunk(parent), Removable: true}
}

// ScanLeaf is addressed by a grid point, one index per coordinate.
func ScanLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: scanLeafSchema("scan_leaf"), Parent: ScanBranch(parent), Removable: true}
}

func TauTrunk(parent *db.Node) *db.Node {
	return db.Trunk("tau_trunk", TauDir, parent)
}

// TauLeaf holds one random sample; like conformers, samples refuse
// removal.
func TauLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: randomIDSchema("tau_leaf"), Parent: TauTrunk(parent)}
}

// BuildTrunk is addressed by the name of the program an input was
// built for, e.g. MESS.
func BuildTrunk(parent *db.Node) *db.Node {
	return &db.Node{Schema: textSchema("build_trunk"), Parent: db.Trunk("build_base", BuildDir, parent), Removable: true}
}

func BuildLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: intSchema("build_leaf"), Parent: BuildTrunk(parent), Removable: true}
}

func InstabTrunk(parent *db.Node) *db.Node {
	return db.Trunk("instability_trunk", InstabDir, parent)
}

// InstabLeaf holds a structure that fell apart instead of converging
// to a conformer.
func InstabLeaf(parent *db.Node) *db.Node {
	return &db.Node{Schema: randomIDSchema("instability_leaf"), Parent: InstabTrunk(parent)}
}
