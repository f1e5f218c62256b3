/*

Package dedup decides whether a newly computed structure is new, a
symmetry copy of a stored conformer, or a duplicate, and writes the
store to match.

Checks run in a fixed order and the first one that applies wins:

  1. connectivity: a structure must be one bonded fragment unless the
     candidate allows fragments
  2. viability: a transition state's forming and breaking bonds must
     stay close to the reference structure
  3. uniqueness: within the energy window, a structure that aligns
     onto a stored one is a duplicate
  4. symmetry: within the tighter window, a structure with the same
     Coulomb spectrum as a stored one is an alias of it
  5. otherwise it is accepted under a new random id

Decide is the pure form of the checks; Engine loads the stored
siblings, calls Decide and writes the result.

*/

package dedup
