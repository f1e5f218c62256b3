package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"

	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/dedup"
	"github.com/t7a/autofile/geom"
	"github.com/t7a/autofile/layout"
	"github.com/t7a/autofile/pack"
)

func init() {
	level := log.GetLevel()
	if os.Getenv("DEBUG") == "1" {
		level = log.DebugLevel
	}
	if name := os.Getenv("AFS_LOG"); name != "" {
		l, err := log.ParseLevel(name)
		if err == nil {
			level = l
		}
	}
	log.SetLevel(level)
	if level < log.DebugLevel {
		return
	}
	// debug lines carry their source line and goroutine
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		CallerPrettyfier: func(f *runtime.Frame) (function string, file string) {
			return "", fmt.Sprintf("%s:%d gid %d", filepath.Base(f.File), f.Line, goroutineID())
		},
		FieldMap:        log.FieldMap{log.FieldKeyFile: "caller"},
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
}

func goroutineID() (id uint64) {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fmt.Sscanf(string(buf), "goroutine %d ", &id)
	return
}

type Opts struct {
	Init      bool
	Kinds     bool
	Ls        bool
	Mkdir     bool
	Path      bool
	Rm        bool
	Hash      bool
	Id        bool
	Save      bool
	Sweep     bool
	Pack      bool
	Unpack    bool
	Kind      string
	Locs      []string
	String    string
	Xyzfile   string
	Energy    string `docopt:"--energy"`
	Fragments bool   `docopt:"--fragments"`
	Quiet     bool   `docopt:"-q"`
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {

	usage := `autofile store

Usage:
  afs init
  afs kinds
  afs ls <kind> [<locs>...]
  afs mkdir <kind> <locs>...
  afs path <kind> <locs>...
  afs rm <kind> <locs>...
  afs hash <string>
  afs id
  afs save [-q] [--fragments] --energy=<energy> <xyzfile> <locs>...
  afs sweep <locs>...
  afs pack <locs>...
  afs unpack <locs>...

Locators are integers, "quoted text", bare words, or [lists].  Paths
are printed relative to the store root.  The
save, sweep, pack and unpack commands take the six locators of a
species theory: inchi charge mult method basis orb.

Options:
  -h --help     Show this screen.
  --version     Show version.
  -q            Print only the disposition.
  --fragments   Accept a structure made of several fragments.
  --energy=<energy>  Energy of the structure in the xyz file.
`
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	o, err := parser.ParseArgs(usage, os.Args[1:], "0.1")
	if err != nil {
		log.Error(err)
		return 64
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	switch true {
	case opts.Init:
		msg, err := create()
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(msg)
	case opts.Kinds:
		for _, name := range layout.KindNames() {
			node, _ := layout.Kind(name)
			fmt.Printf("%-13s %d\n", name, node.Arity())
		}
	case opts.Ls:
		lines, err := ls(opts.Kind, opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	case opts.Mkdir:
		path, err := mkdir(opts.Kind, opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(shellescape.Quote(path))
	case opts.Path:
		path, err := nodePath(opts.Kind, opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(shellescape.Quote(path))
	case opts.Rm:
		err := rm(opts.Kind, opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Hash:
		fmt.Println(db.ShortHash(opts.String))
	case opts.Id:
		id, err := db.RandomID()
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(id)
	case opts.Save:
		res, err := save(opts.Xyzfile, opts.Energy, opts.Fragments, opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		switch {
		case opts.Quiet:
			fmt.Println(res.Disposition)
		case res.Disposition == dedup.Rejected:
			fmt.Printf("%s: %v\n", res.Disposition, res.Reason)
		case res.Disposition == dedup.Duplicate:
			fmt.Printf("%s of %s\n", res.Disposition, locsLine(res.Canonical))
		default:
			fmt.Printf("%s %s\n", res.Disposition, locsLine(res.Locs))
		}
	case opts.Sweep:
		findings, err := sweep(opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		for _, f := range findings {
			fmt.Printf("%s %s of %s\n", f.Disposition, locsLine(f.Locs), locsLine(f.Match))
		}
	case opts.Pack:
		n, err := packSamples(opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("packed %d samples\n", n)
	case opts.Unpack:
		n, err := unpackSamples(opts.Locs)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("unpacked %d samples\n", n)
	}
	return 0
}

// storeDir is $AFS_DIR, or the current directory.
func storeDir() (dir string, err error) {
	dir = os.Getenv("AFS_DIR")
	if dir == "" {
		dir, err = os.Getwd()
	}
	return
}

func create() (msg string, err error) {
	dir, err := storeDir()
	if err != nil {
		return
	}
	store, err := db.Db{Dir: dir}.Create()
	if err != nil {
		return
	}
	return fmt.Sprintf("Initialized empty store in %s", store.Dir), nil
}

func openStore() (store *db.Db, err error) {
	dir, err := storeDir()
	if err != nil {
		return
	}
	return db.Open(dir)
}

// locsLine prints a locator sequence the way ParseLocs reads it back,
// one shell word per locator.
func locsLine(locs db.Locs) string {
	words := make([]string, len(locs))
	for i, l := range locs {
		words[i] = shellescape.Quote(l.String())
	}
	return strings.Join(words, " ")
}

func nodeAndLocs(kind string, args []string) (node *db.Node, locs db.Locs, err error) {
	node, err = layout.Kind(kind)
	if err != nil {
		return
	}
	locs, err = db.ParseLocs(args...)
	return
}

func ls(kind string, args []string) (lines []string, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	node, locs, err := nodeAndLocs(kind, args)
	if err != nil {
		return
	}
	found, err := node.Existing(store.Dir, locs)
	if err != nil {
		return
	}
	for _, suffix := range found {
		lines = append(lines, locsLine(suffix))
	}
	sort.Strings(lines)
	return
}

func mkdir(kind string, args []string) (path string, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	node, locs, err := nodeAndLocs(kind, args)
	if err != nil {
		return
	}
	err = node.Create(store.Dir, locs)
	if err != nil {
		return
	}
	return relPath(store, node, locs)
}

func nodePath(kind string, args []string) (path string, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	node, locs, err := nodeAndLocs(kind, args)
	if err != nil {
		return
	}
	return relPath(store, node, locs)
}

// relPath is the node's directory relative to the store root.
func relPath(store *db.Db, node *db.Node, locs db.Locs) (path string, err error) {
	abs, err := node.Path(store.Dir, locs)
	if err != nil {
		return
	}
	return filepath.Rel(store.Dir, abs)
}

func rm(kind string, args []string) (err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	node, locs, err := nodeAndLocs(kind, args)
	if err != nil {
		return
	}
	return node.Remove(store.Dir, locs)
}

func save(xyzfile, ene string, fragments bool, args []string) (res dedup.Result, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	energy, err := strconv.ParseFloat(ene, 64)
	if err != nil {
		return
	}
	locs, err := db.ParseLocs(args...)
	if err != nil {
		return
	}
	buf, err := ioutil.ReadFile(xyzfile)
	if err != nil {
		return
	}
	g, _, err := geom.ParseXYZ(string(buf))
	if err != nil {
		return
	}
	cand := dedup.Candidate{Geometry: g, Energy: energy}
	if fragments {
		cand.Connectivity = dedup.AllowFragments
	}
	engine := dedup.NewEngine(store.Tol, layout.SpeciesTheory(nil))
	return engine.Save(store.Dir, locs, cand)
}

func sweep(args []string) (findings []dedup.Finding, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	locs, err := db.ParseLocs(args...)
	if err != nil {
		return
	}
	engine := dedup.NewEngine(store.Tol, layout.SpeciesTheory(nil))
	return engine.Sweep(store.Dir, locs)
}

func packSamples(args []string) (n int, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	locs, err := db.ParseLocs(args...)
	if err != nil {
		return
	}
	return pack.New(layout.SpeciesTheory(nil)).Write(store.Dir, locs)
}

func unpackSamples(args []string) (n int, err error) {
	store, err := openStore()
	if err != nil {
		return
	}
	locs, err := db.ParseLocs(args...)
	if err != nil {
		return
	}
	return pack.New(layout.SpeciesTheory(nil)).Unpack(store.Dir, locs)
}
