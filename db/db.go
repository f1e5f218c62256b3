package db

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// FormatVersion is written to config.json by Create.
const FormatVersion = 1

// ConfigName is the store's configuration file, at the top of Dir.
const ConfigName = "config.json"

// Tolerances holds the numerical thresholds used to reconcile newly
// computed structures with stored ones.  Energies are in hartree,
// lengths in the geometry's own unit, angles in radians.
type Tolerances struct {
	Energy        float64 // energy window that triggers a structural comparison
	Distance      float64 // max per-atom distance after alignment for a duplicate
	SymEnergy     float64 // energy window for the symmetry-equivalence check
	Fingerprint   float64 // max spectrum difference for symmetry equivalence
	Angle         float64 // max change of a forming/breaking bond angle
	AdditionDisp  float64 // forming bond displacement, addition reactions
	AbstractDisp  float64 // forming bond displacement, abstraction reactions
	RadicalDisp   float64 // forming bond displacement, other radical classes
	OtherDisp     float64 // any bond displacement, every other class
	BondTolerance float64 // added to covalent radii when assigning bonds
	AllocAttempts int     // random id draws before giving up
}

// DefaultTolerances are the values used for fields config.json omits,
// and for a store created without tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Energy:        2e-5,
		Distance:      0.3,
		SymEnergy:     1e-5,
		Fingerprint:   1e-2,
		Angle:         0.44,
		AdditionDisp:  0.8,
		AbstractDisp:  1.0,
		RadicalDisp:   0.6,
		OtherDisp:     0.3,
		BondTolerance: 0.45,
		AllocAttempts: 8,
	}
}

// Db is a store root.  Dir is the base of the tree; it is passed
// explicitly to every node operation.
type Db struct {
	Dir     string `json:"-"`
	Version int
	Tol     Tolerances
}

// Open loads an existing store from dir.
func Open(dir string) (db *Db, err error) {
	dir = filepath.Clean(dir)
	if !isdir(dir) {
		return nil, &NotFoundError{Path: dir}
	}
	buf, err := ioutil.ReadFile(filepath.Join(dir, ConfigName))
	if err != nil {
		return nil, &NotDbError{Dir: dir}
	}
	db = &Db{Tol: DefaultTolerances()}
	err = json.Unmarshal(buf, db)
	if err != nil {
		return nil, &CorruptArtifactError{Path: filepath.Join(dir, ConfigName), Err: err}
	}
	db.Dir = dir
	return
}

// Create initializes a store directory.  The directory may exist but
// must be empty.
func (db Db) Create() (out *Db, err error) {
	defer Return(&err)

	dir := filepath.Clean(db.Dir)
	if canstat(dir) {
		files, err := ioutil.ReadDir(dir)
		Ck(err)
		if len(files) > 0 {
			return nil, &ExistsError{Dir: dir}
		}
	}
	err = mkdirAll(dir)
	Ck(err)

	db.Dir = dir
	db.Version = FormatVersion
	if db.Tol == (Tolerances{}) {
		db.Tol = DefaultTolerances()
	}

	buf, err := json.MarshalIndent(db, "", "  ")
	Ck(err)
	err = WriteFile(filepath.Join(dir, ConfigName), buf)
	Ck(err)

	log.Debugf("created store %s", dir)
	return &db, nil
}
