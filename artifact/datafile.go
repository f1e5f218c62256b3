package artifact

import (
	"os"
	"path/filepath"

	"github.com/t7a/autofile/db"
)

// DataFile describes one kind of artifact file: its name inside a leaf
// directory, an optional subdirectory of the leaf it lives in, and its
// codec.  A file's presence is the only existence test for the
// artifact it holds.
type DataFile[T any] struct {
	Name   string
	Subdir string
	Encode func(v T) ([]byte, error)
	Decode func(buf []byte) (T, error)
}

// Path is the file's location under leaf directory dir.
func (f DataFile[T]) Path(dir string) string {
	if f.Subdir == "" {
		return filepath.Join(dir, f.Name)
	}
	return filepath.Join(dir, f.Subdir, f.Name)
}

// Write encodes v and publishes it atomically.  dir must already exist;
// a missing Subdir below it is created.
func (f DataFile[T]) Write(dir string, v T) (err error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &db.NotFoundError{Path: dir}
	}
	buf, err := f.Encode(v)
	if err != nil {
		return err
	}
	path := f.Path(dir)
	if f.Subdir != "" {
		err = db.MkdirAll(filepath.Dir(path))
		if err != nil {
			return
		}
	}
	return db.WriteFile(path, buf)
}

// Read loads and decodes the file.  A missing file is a
// *db.NotFoundError; bytes that don't decode are a
// *db.CorruptArtifactError.
func (f DataFile[T]) Read(dir string) (v T, err error) {
	path := f.Path(dir)
	buf, err := db.ReadFile(path)
	if err != nil {
		return
	}
	v, err = f.Decode(buf)
	if err != nil {
		return v, &db.CorruptArtifactError{Path: path, Err: err}
	}
	return
}

func (f DataFile[T]) Exists(dir string) bool {
	info, err := os.Stat(f.Path(dir))
	return err == nil && info.Mode().IsRegular()
}

// Artifact binds a DataFile to the leaf node whose directories hold it,
// so callers address it by locators instead of paths.
type Artifact[T any] struct {
	Node *db.Node
	File DataFile[T]
}

func Bind[T any](node *db.Node, file DataFile[T]) Artifact[T] {
	return Artifact[T]{Node: node, File: file}
}

func (a Artifact[T]) Path(root string, locs db.Locs) (path string, err error) {
	dir, err := a.Node.Path(root, locs)
	if err != nil {
		return
	}
	return a.File.Path(dir), nil
}

// Write stores v for locs.  The leaf directory must have been created.
func (a Artifact[T]) Write(root string, locs db.Locs, v T) (err error) {
	dir, err := a.Node.Path(root, locs)
	if err != nil {
		return
	}
	return a.File.Write(dir, v)
}

func (a Artifact[T]) Read(root string, locs db.Locs) (v T, err error) {
	dir, err := a.Node.Path(root, locs)
	if err != nil {
		return
	}
	return a.File.Read(dir)
}

func (a Artifact[T]) Exists(root string, locs db.Locs) (ok bool, err error) {
	dir, err := a.Node.Path(root, locs)
	if err != nil {
		return
	}
	return a.File.Exists(dir), nil
}
