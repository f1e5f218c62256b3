package artifact

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/geom"
)

// Frame is one labeled structure in a trajectory.
type Frame struct {
	Comment  string
	Geometry geom.Geometry
}

// Trajectory is a multi-frame XYZ dump for people to look at.  It has
// no reader: nothing in the store treats it as data.
type Trajectory struct {
	Name string
}

func (tr Trajectory) Path(dir string) string {
	return filepath.Join(dir, tr.Name)
}

// Write replaces the trajectory in leaf directory dir.
func (tr Trajectory) Write(dir string, frames []Frame) (err error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &db.NotFoundError{Path: dir}
	}
	var b strings.Builder
	for _, f := range frames {
		b.WriteString(f.Geometry.XYZ(f.Comment))
	}
	return db.WriteFile(tr.Path(dir), []byte(b.String()))
}

func (tr Trajectory) Exists(dir string) bool {
	info, err := os.Stat(tr.Path(dir))
	return err == nil && info.Mode().IsRegular()
}
