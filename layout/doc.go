// Package layout names the directory kinds of a chemistry results
// store and the schemas that address them: species, reactions, levels
// of theory, conformers and their symmetry copies, z-matrices, single
// points, scans, tau samples, build inputs, instabilities, and runs.
//
// A species conformer lives at
//
//	SPC/<formula>/<hash(inchi)>/<charge>/<mult>/<hash(method)><hash(basis)><R|U>/CONFS/<id>
//
// and is addressed by the locators
//
//	[inchi, charge, mult, method, basis, orb, id]
package layout
