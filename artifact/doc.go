/*

Package artifact reads and writes the typed files kept in leaf
directories of a store.  Each file type has a fixed name and a codec;
numeric files round-trip exactly, structures within a stated tolerance.
Every write goes through db.WriteFile, so readers never see a partial
file.

*/

package artifact
