package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmdtest"
	"github.com/pkg/fileutils"
)

var update = flag.Bool("update", false, "update test files with results")

func TestCLI(t *testing.T) {
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ts.KeepRootDirs = os.Getenv("DEBUG") == "1"
	srcdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	ts.Setup = func(dir string) (err error) {
		for _, fn := range []string{"dimer.xyz", "dimer2.xyz"} {
			err = fileutils.CopyFile(filepath.Join(dir, fn), filepath.Join(srcdir, "testdata", fn))
			if err != nil {
				return
			}
		}
		return os.Unsetenv("AFS_DIR")
	}
	ts.Commands["afs"] = cmdtest.InProcessProgram("afs", run)
	ts.Run(t, *update)
}
