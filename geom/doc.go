// Package geom holds molecular structures and the numerical comparisons
// made between them: superposition, per-atom displacement, bond
// perception, connectivity, and a permutation-invariant Coulomb
// spectrum used to recognize symmetry-equivalent structures.
//
// Positions are Cartesian in whatever length unit the caller uses
// consistently; bond perception assumes angstrom.
package geom
