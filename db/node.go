package db

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LocRecordName is the file a recording schema writes into each
// directory it creates.
const LocRecordName = "locs.yaml"

// Node is an addressed directory: one level of the store tree, chained
// to its parent.  The locator sequence for a node is the parent's
// sequence followed by the values this level's schema consumes.
//
// Nodes hold no state besides their description, so two nodes built
// from the same schema and parent are interchangeable.
type Node struct {
	Schema    *Schema
	Parent    *Node
	Removable bool
}

// Trunk is a zero-arity node with the fixed directory name seg.
func Trunk(name, seg string, parent *Node) *Node {
	return &Node{Schema: FixedSchema(name, seg), Parent: parent, Removable: true}
}

func (n *Node) Name() string {
	return n.Schema.Name
}

// Arity is the total number of locators needed to address this node,
// counting every ancestor.
func (n *Node) Arity() int {
	if n.Parent == nil {
		return n.Schema.Arity()
	}
	return n.Parent.Arity() + n.Schema.Arity()
}

// Equal reports whether n and o address the same directories.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Schema.Name != o.Schema.Name || n.Schema.Depth != o.Schema.Depth ||
		n.Schema.Arity() != o.Schema.Arity() || n.Removable != o.Removable {
		return false
	}
	return n.Parent.Equal(o.Parent)
}

func (n *Node) invalid(locs Locs, reason string) error {
	return &InvalidLocatorError{Node: n.Name(), Locs: locs, Reason: reason}
}

// split divides locs into the parent's prefix and this level's suffix.
func (n *Node) split(locs Locs) (parentLocs, own Locs, err error) {
	if len(locs) != n.Arity() {
		err = n.invalid(locs, "wrong number of locators")
		return
	}
	cut := len(locs) - n.Schema.Arity()
	return locs[:cut], locs[cut:], nil
}

// parentPath resolves the directory this node's level lives in.
func (n *Node) parentPath(root string, parentLocs Locs) (string, error) {
	if n.Parent == nil {
		if len(parentLocs) != 0 {
			return "", n.invalid(parentLocs, "root-level node takes no parent locators")
		}
		return filepath.Clean(root), nil
	}
	return n.Parent.Path(root, parentLocs)
}

// Path resolves the absolute directory for locs.  No I/O.
func (n *Node) Path(root string, locs Locs) (path string, err error) {
	parentLocs, own, err := n.split(locs)
	if err != nil {
		return
	}
	base, err := n.parentPath(root, parentLocs)
	if err != nil {
		return
	}
	segs, err := n.Schema.segments(own)
	if err != nil {
		return "", n.invalid(locs, err.Error())
	}
	return filepath.Join(append([]string{base}, segs...)...), nil
}

// Exists reports whether the directory for locs is present.
func (n *Node) Exists(root string, locs Locs) (ok bool, err error) {
	path, err := n.Path(root, locs)
	if err != nil {
		return
	}
	return isdir(path), nil
}

// Create makes the directory for locs along with every missing
// ancestor.  Creating an existing directory is a no-op.
func (n *Node) Create(root string, locs Locs) (err error) {
	parentLocs, own, err := n.split(locs)
	if err != nil {
		return
	}
	segs, err := n.Schema.segments(own)
	if err != nil {
		return n.invalid(locs, err.Error())
	}
	if n.Parent == nil {
		err = mkdirAll(root)
	} else {
		err = n.Parent.Create(root, parentLocs)
	}
	if err != nil {
		return
	}
	base, err := n.parentPath(root, parentLocs)
	if err != nil {
		return
	}
	dir := base
	for _, seg := range segs {
		dir = filepath.Join(dir, seg)
		err = mkdir(dir)
		if err != nil {
			return
		}
	}
	if n.Schema.Record {
		err = n.writeRecord(dir, locs, own)
	}
	return
}

type locRecord struct {
	Schema string `yaml:"schema"`
	Locs   Locs   `yaml:"locs"`
}

func (n *Node) writeRecord(dir string, locs, own Locs) (err error) {
	path := filepath.Join(dir, LocRecordName)
	got, err := readRecord(path)
	switch err.(type) {
	case nil:
		if !got.Locs.Equal(own) || got.Schema != n.Name() {
			return n.invalid(locs, "path collides with "+got.Locs.String()+" at "+dir)
		}
		return nil
	case *NotFoundError:
	default:
		return err
	}
	buf, err := yaml.Marshal(locRecord{Schema: n.Name(), Locs: own})
	if err != nil {
		return errors.Wrap(err, "encode locator record")
	}
	return WriteFile(path, buf)
}

func readRecord(path string) (rec locRecord, err error) {
	buf, err := ReadFile(path)
	if err != nil {
		return
	}
	err = yaml.Unmarshal(buf, &rec)
	if err != nil {
		return rec, &CorruptArtifactError{Path: path, Err: err}
	}
	return
}

// Existing lists the locator suffixes present under the directory
// resolved from parentLocs, in directory listing order.  The store
// keeps no index: each call reads the disk.  Callers that look up the
// same level repeatedly should hold on to the result, or use an
// ExistingCache.
func (n *Node) Existing(root string, parentLocs Locs) (res []Locs, err error) {
	res, _, err = n.existing(root, parentLocs)
	return
}

// existing also returns every directory it read, for the cache to watch.
func (n *Node) existing(root string, parentLocs Locs) (res []Locs, visited []string, err error) {
	want := n.Arity() - n.Schema.Arity()
	if len(parentLocs) != want {
		err = n.invalid(parentLocs, "wrong number of parent locators")
		return
	}
	base, err := n.parentPath(root, parentLocs)
	if err != nil {
		return
	}
	if !isdir(base) {
		return nil, nil, nil
	}
	candidates, visited, err := listDirs(base, n.Schema.Depth)
	if err != nil {
		return
	}
	for _, segs := range candidates {
		var locs Locs
		if n.Schema.Record {
			dir := filepath.Join(append([]string{base}, segs...)...)
			visited = append(visited, dir)
			var rec locRecord
			rec, err = readRecord(filepath.Join(dir, LocRecordName))
			if err != nil {
				log.Debugf("skipping %s: %v", dir, err)
				err = nil
				continue
			}
			if rec.Schema != n.Name() {
				continue
			}
			locs = rec.Locs
		} else {
			locs, err = n.Schema.values(segs)
			if err != nil {
				log.Debugf("skipping %v under %s: %v", segs, base, err)
				err = nil
				continue
			}
		}
		res = append(res, locs)
	}
	return
}

// listDirs returns the relative segment paths of every directory
// exactly depth levels below base.
func listDirs(base string, depth int) (res [][]string, visited []string, err error) {
	visited = append(visited, base)
	infos, err := ioutil.ReadDir(base)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "list %s", base)
	}
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		if depth == 1 {
			res = append(res, []string{info.Name()})
			continue
		}
		sub, subvisited, err := listDirs(filepath.Join(base, info.Name()), depth-1)
		if err != nil {
			return nil, nil, err
		}
		visited = append(visited, subvisited...)
		for _, segs := range sub {
			res = append(res, append([]string{info.Name()}, segs...))
		}
	}
	return
}

// Remove deletes the directory for locs and everything beneath it.
// Nodes that are not Removable refuse with *UnsupportedOperationError
// and leave the store untouched.
func (n *Node) Remove(root string, locs Locs) (err error) {
	path, err := n.Path(root, locs)
	if err != nil {
		return
	}
	if !n.Removable {
		return &UnsupportedOperationError{Op: "remove", Node: n.Name()}
	}
	if !isdir(path) {
		return &NotFoundError{Path: path}
	}
	err = os.RemoveAll(path)
	if err != nil {
		return errors.Wrapf(err, "remove %s", path)
	}
	log.Debugf("removed %s", path)
	return
}
