/*

Package db is a locator-addressed hierarchical store.  Every computed
artifact lives in a directory whose path is derived from an ordered
sequence of locator values; the directory tree itself is the only
index.

Vocabulary:

- root: the store's base directory, passed explicitly to every call
- loc: one locator value -- an Int, a Text, or a Composite of locs
- locs: an ordered locator sequence addressing one node
- schema: one level of the hierarchy; consumes len(Shapes) locs from
  the tail of a sequence and produces Depth path segments
- node: a schema chained to its parent node; resolves locs to paths
- trunk: a zero-arity node with a fixed name (e.g. CONFS)
- leaf: a node whose directory holds artifact files
- record: locs.yaml, written by schemas whose path segments are hashed
  and can't be mapped back to locator values
- short hash: three-character fingerprint of a string
- random id: twelve-character random identifier used for entries that
  have no reproducible name, such as conformers

Directory creation is idempotent and tolerates other processes
creating the same directory concurrently.  Files are published with
write-then-rename, so a reader never sees a partial file.  There is no
locking beyond that.

*/

package db
