package layout

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/t7a/autofile/artifact"
	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
)

// SpeciesTheory is the theory level of a species, addressed by
// (inchi, charge, mult, method, basis, orb).
func SpeciesTheory(parent *db.Node) *db.Node {
	return TheoryLeaf(SpeciesLeaf(parent))
}

// ReactionTheory is the theory level of a reaction.
func ReactionTheory(parent *db.Node) *db.Node {
	return TheoryLeaf(ReactionLeaf(parent))
}

// AliasSet is the symmetry directory below a conformer.
type AliasSet struct {
	Leaf     *db.Node
	Geometry artifact.Artifact[geom.Geometry]
	Alias    artifact.Artifact[artifact.AliasInfo]
}

func NewAliasSet(conformer *db.Node) *AliasSet {
	leaf := SymmetryLeaf(conformer)
	return &AliasSet{
		Leaf:     leaf,
		Geometry: artifact.Bind(leaf, artifact.GeometryFile),
		Alias:    artifact.Bind(leaf, artifact.AliasInfoFile),
	}
}

// ConformerSet is a conformer trunk and its leaves, with the artifacts
// each leaf holds.
type ConformerSet struct {
	Trunk     *db.Node
	Leaf      *db.Node
	TrunkInfo artifact.Artifact[artifact.ConformerTrunkInfo]
	Info      artifact.Artifact[artifact.RunInfo]
	Input     artifact.Artifact[string]
	Geometry  artifact.Artifact[geom.Geometry]
	Energy    artifact.Artifact[float64]
	Gradient  artifact.Artifact[*mat.Dense]
	Hessian   artifact.Artifact[*mat.Dense]
	ZMatrix   artifact.Artifact[geom.ZMatrix]
	Sym       *AliasSet
	// SinglePoint is nil unless the conformers sit under a theory leaf.
	SinglePoint *SinglePointSet
}

// SinglePointSet is the single-point energy of a conformer at one
// level of theory.
type SinglePointSet struct {
	Leaf   *db.Node
	Info   artifact.Artifact[artifact.RunInfo]
	Input  artifact.Artifact[string]
	Energy artifact.Artifact[float64]
}

func NewSinglePointSet(conformer *db.Node) *SinglePointSet {
	leaf := SinglePointLeaf(conformer)
	return &SinglePointSet{
		Leaf:   leaf,
		Info:   artifact.Bind(leaf, artifact.SPInfoFile),
		Input:  artifact.Bind(leaf, artifact.SPInputFile),
		Energy: artifact.Bind(leaf, artifact.SPEnergyFile),
	}
}

// NewConformerSet builds the set below parent, usually a theory leaf.
func NewConformerSet(parent *db.Node) *ConformerSet {
	trunk := ConformerTrunk(parent)
	leaf := ConformerLeaf(parent)
	zleaf := ZMatrixLeaf(leaf)
	cs := &ConformerSet{
		Trunk:     trunk,
		Leaf:      leaf,
		TrunkInfo: artifact.Bind(trunk, artifact.ConfInfoFile),
		Info:      artifact.Bind(leaf, artifact.GeometryInfo),
		Input:     artifact.Bind(leaf, artifact.GeometryInput),
		Geometry:  artifact.Bind(leaf, artifact.GeometryFile),
		Energy:    artifact.Bind(leaf, artifact.EnergyFile),
		Gradient:  artifact.Bind(leaf, artifact.GradientFile),
		Hessian:   artifact.Bind(leaf, artifact.HessianFile),
		ZMatrix:   artifact.Bind(zleaf, artifact.ZMatrixFile),
		Sym:       NewAliasSet(leaf),
	}
	if parent != nil && parent.Name() == "theory_leaf" {
		cs.SinglePoint = NewSinglePointSet(leaf)
	}
	return cs
}

// SinglePointLocs addresses the single point of the conformer at
// confLocs at the conformer's own level of theory.
func (cs *ConformerSet) SinglePointLocs(confLocs db.Locs) (db.Locs, error) {
	n := len(confLocs)
	if n != cs.Leaf.Arity() || n < 4 {
		return nil, fmt.Errorf("conformer locators %s don't end in a theory", confLocs)
	}
	return confLocs.Join(confLocs[n-4 : n-1]...), nil
}

// TrajectoryPath is where the conformer trajectory is dumped, in the
// trunk directory.
func (cs *ConformerSet) TrajectoryPath(root string, trunkLocs db.Locs) (string, error) {
	dir, err := cs.Trunk.Path(root, trunkLocs)
	if err != nil {
		return "", err
	}
	return artifact.TrajFile.Path(dir), nil
}

// SampleSet is a tau trunk and its samples.
type SampleSet struct {
	Trunk     *db.Node
	Leaf      *db.Node
	TrunkInfo artifact.Artifact[artifact.SampleTrunkInfo]
	Info      artifact.Artifact[artifact.RunInfo]
	Geometry  artifact.Artifact[geom.Geometry]
	Energy    artifact.Artifact[float64]
	Gradient  artifact.Artifact[*mat.Dense]
	Hessian   artifact.Artifact[*mat.Dense]
}

func NewSampleSet(parent *db.Node) *SampleSet {
	trunk := TauTrunk(parent)
	leaf := TauLeaf(parent)
	return &SampleSet{
		Trunk:     trunk,
		Leaf:      leaf,
		TrunkInfo: artifact.Bind(trunk, artifact.TauInfoFile),
		Info:      artifact.Bind(leaf, artifact.GeometryInfo),
		Geometry:  artifact.Bind(leaf, artifact.GeometryFile),
		Energy:    artifact.Bind(leaf, artifact.EnergyFile),
		Gradient:  artifact.Bind(leaf, artifact.GradientFile),
		Hessian:   artifact.Bind(leaf, artifact.HessianFile),
	}
}

// InstabSet holds structures set aside by the instability check.
type InstabSet struct {
	Leaf     *db.Node
	Geometry artifact.Artifact[geom.Geometry]
	Energy   artifact.Artifact[float64]
	Info     artifact.Artifact[artifact.InstabilityInfo]
}

func NewInstabSet(parent *db.Node) *InstabSet {
	leaf := InstabLeaf(parent)
	return &InstabSet{
		Leaf:     leaf,
		Geometry: artifact.Bind(leaf, artifact.GeometryFile),
		Energy:   artifact.Bind(leaf, artifact.EnergyFile),
		Info:     artifact.Bind(leaf, artifact.InstabFile),
	}
}

// kinds are the addressable node kinds of a whole store, by name.
var kinds = map[string]func() *db.Node{
	"run":          func() *db.Node { return RunLeaf(nil) },
	"species":      func() *db.Node { return SpeciesLeaf(nil) },
	"reaction":     func() *db.Node { return ReactionLeaf(nil) },
	"theory":       func() *db.Node { return SpeciesTheory(nil) },
	"rtheory":      func() *db.Node { return ReactionTheory(nil) },
	"conformer":    func() *db.Node { return ConformerLeaf(SpeciesTheory(nil)) },
	"rconformer":   func() *db.Node { return ConformerLeaf(ReactionTheory(nil)) },
	"symmetry":     func() *db.Node { return SymmetryLeaf(ConformerLeaf(SpeciesTheory(nil))) },
	"zmatrix":      func() *db.Node { return ZMatrixLeaf(ConformerLeaf(SpeciesTheory(nil))) },
	"single_point": func() *db.Node { return SinglePointLeaf(ConformerLeaf(SpeciesTheory(nil))) },
	"scan":         func() *db.Node { return ScanLeaf(ZMatrixLeaf(ConformerLeaf(SpeciesTheory(nil)))) },
	"tau":          func() *db.Node { return TauLeaf(SpeciesTheory(nil)) },
	"instability":  func() *db.Node { return InstabLeaf(SpeciesTheory(nil)) },
	"build":        func() *db.Node { return BuildLeaf(SpeciesLeaf(nil)) },
}

// Kind returns the node for a kind name, rooted at the store root.
func Kind(name string) (*db.Node, error) {
	mk, ok := kinds[name]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q; known kinds: %v", name, KindNames())
	}
	return mk(), nil
}

func KindNames() (names []string) {
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
