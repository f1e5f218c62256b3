package geom

// covalent radii in angstrom, Cordero et al. 2008 (DOI:10.1039/B801115J).
// H is stretched a little so that slightly long X-H contacts still count.
var covalentRadius = map[string]float64{
	"H":  0.4,
	"He": 0.28,
	"Li": 1.28,
	"Be": 0.96,
	"B":  0.84,
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Ne": 0.58,
	"Na": 1.66,
	"Mg": 1.41,
	"Al": 1.21,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Ar": 1.06,
	"K":  2.03,
	"Ca": 1.76,
	"Cr": 1.39,
	"Mn": 1.61,
	"Fe": 1.52,
	"Co": 1.5,
	"Cu": 1.32,
	"Zn": 1.22,
	"Se": 1.2,
	"Br": 1.2,
	"Kr": 1.16,
	"I":  1.39,
}

var atomicNumber = map[string]int{
	"H": 1, "He": 2,
	"Li": 3, "Be": 4, "B": 5, "C": 6, "N": 7, "O": 8, "F": 9, "Ne": 10,
	"Na": 11, "Mg": 12, "Al": 13, "Si": 14, "P": 15, "S": 16, "Cl": 17, "Ar": 18,
	"K": 19, "Ca": 20, "Cr": 24, "Mn": 25, "Fe": 26, "Co": 27, "Cu": 29, "Zn": 30,
	"Se": 34, "Br": 35, "Kr": 36, "I": 53,
}

// CovalentRadius returns the covalent radius of an element, or false if
// the element is not tabulated.
func CovalentRadius(symbol string) (r float64, ok bool) {
	r, ok = covalentRadius[symbol]
	return
}

// AtomicNumber returns the nuclear charge of an element, or false if
// the element is not tabulated.
func AtomicNumber(symbol string) (z int, ok bool) {
	z, ok = atomicNumber[symbol]
	return
}
