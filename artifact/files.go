package artifact

import (
	"gonum.org/v1/gonum/mat"

	"github.com/t7a/autofile/geom"
)

// file name extensions, one per artifact type
const (
	ExtInput      = ".inp"
	ExtInfo       = ".yaml"
	ExtEnergy     = ".ene"
	ExtGeometry   = ".xyz"
	ExtGradient   = ".grad"
	ExtHessian    = ".hess"
	ExtZMatrix    = ".zmat"
	ExtVMatrix    = ".vmat"
	ExtTrajectory = ".t.xyz"
	ExtEpsilon    = ".eps"
	ExtSigma      = ".sig"
)

// Input is a free-form input deck, stored byte for byte.
func Input(prefix string) DataFile[string] {
	return DataFile[string]{Name: prefix + ExtInput, Encode: encodeText, Decode: decodeText}
}

// Energy is a scalar written at full precision.
func Energy(prefix string) DataFile[float64] {
	return DataFile[float64]{Name: prefix + ExtEnergy, Encode: encodeScalar, Decode: decodeScalar}
}

// Geometry is a single XYZ frame; coordinates round-trip within
// geom.XYZTolerance.
func Geometry(prefix string) DataFile[geom.Geometry] {
	return DataFile[geom.Geometry]{Name: prefix + ExtGeometry, Encode: encodeGeometry, Decode: decodeGeometry}
}

// Gradient is an n x 3 matrix written at full precision.
func Gradient(prefix string) DataFile[*mat.Dense] {
	return DataFile[*mat.Dense]{Name: prefix + ExtGradient, Encode: encodeGradient, Decode: decodeGradient}
}

// Hessian is a 3n x 3n matrix written at full precision.
func Hessian(prefix string) DataFile[*mat.Dense] {
	return DataFile[*mat.Dense]{Name: prefix + ExtHessian, Encode: encodeHessian, Decode: decodeHessian}
}

// ZMatrix values round-trip within geom.XYZTolerance.
func ZMatrix(prefix string) DataFile[geom.ZMatrix] {
	return DataFile[geom.ZMatrix]{Name: prefix + ExtZMatrix, Encode: encodeZMatrix, Decode: decodeZMatrix}
}

// VMatrix round-trips exactly.
func VMatrix(prefix string) DataFile[geom.VMatrix] {
	return DataFile[geom.VMatrix]{Name: prefix + ExtVMatrix, Encode: encodeVMatrix, Decode: decodeVMatrix}
}

// LennardJonesEpsilon and LennardJonesSigma are the two parameters of a
// fitted Lennard-Jones potential, kept per bath gas under a subdirectory
// named for the potential.
func LennardJonesEpsilon(prefix, subdir string) DataFile[float64] {
	return DataFile[float64]{Name: prefix + ExtEpsilon, Subdir: subdir, Encode: encodeScalar, Decode: decodeScalar}
}

func LennardJonesSigma(prefix, subdir string) DataFile[float64] {
	return DataFile[float64]{Name: prefix + ExtSigma, Subdir: subdir, Encode: encodeScalar, Decode: decodeScalar}
}

// Standard files found in geometry leaves.
var (
	GeometryInfo  = InfoFile[RunInfo]("geom")
	GeometryInput = Input("geom")
	GeometryFile  = Geometry("geom")
	EnergyFile    = Energy("geom")
	GradientFile  = Gradient("geom")
	HessianFile   = Hessian("geom")
	ZMatrixFile   = ZMatrix("geom")
	VMatrixFile   = VMatrix("geom")
	SPInfoFile    = InfoFile[RunInfo]("sp")
	SPInputFile   = Input("sp")
	SPEnergyFile  = Energy("sp")
	RunInfoFile   = InfoFile[RunInfo]("run")
	RunInputFile  = Input("run")
	AliasInfoFile = InfoFile[AliasInfo]("sym")
	ConfInfoFile  = InfoFile[ConformerTrunkInfo]("conf")
	TauInfoFile   = InfoFile[SampleTrunkInfo]("tau")
	InstabFile    = InfoFile[InstabilityInfo]("instab")
	TrajFile      = Trajectory{Name: "geom" + ExtTrajectory}
)
