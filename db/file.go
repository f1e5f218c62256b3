package db

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// file modes
const (
	DIRMODE  = 0755
	FILEMODE = 0644
)

// WriteFile publishes buf at path.  The data goes to a temporary file
// in the same directory first and is renamed into place once it is
// complete, so a reader never sees a truncated file.
func WriteFile(path string, buf []byte) (err error) {
	defer Return(&err)

	dir := filepath.Dir(path)
	pending, err := renameio.TempFile(dir, path)
	Ck(err)
	defer pending.Cleanup()

	n, err := pending.Write(buf)
	Ck(err)
	Assert(n == len(buf), "short write")
	err = pending.Chmod(FILEMODE)
	Ck(err)

	err = pending.CloseAtomicallyReplace()
	Ck(err)

	log.Debugf("wrote %d bytes to %s", len(buf), path)
	return
}

// ReadFile reads a whole file, turning a missing file into a
// *NotFoundError.
func ReadFile(path string) (buf []byte, err error) {
	buf, err = ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isdir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// mkdir creates dir if it is missing.  Another process may create the
// same directory between our check and our Mkdir; that is not an error.
func mkdir(dir string) (err error) {
	if isdir(dir) {
		return
	}
	err = os.Mkdir(dir, DIRMODE)
	if os.IsExist(err) && isdir(dir) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}
	log.Debugf("created %s", dir)
	return
}

// mkdirAll is mkdir for every missing component of dir.
func mkdirAll(dir string) (err error) {
	dir = filepath.Clean(dir)
	if isdir(dir) {
		return
	}
	parent := filepath.Dir(dir)
	if parent != dir {
		err = mkdirAll(parent)
		if err != nil {
			return
		}
	}
	return mkdir(dir)
}

// MkdirAll is exported for artifact files that live in their own
// subdirectory of a leaf.
func MkdirAll(dir string) error {
	return mkdirAll(dir)
}
