package artifact

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/t7a/autofile/db"
)

// Record is a versioned metadata record.  Kind names the record type
// and is checked on read; Version is the newest layout this code
// writes and understands.
type Record interface {
	Kind() string
	Version() int
}

type envelope[T Record] struct {
	Kind    string `yaml:"kind"`
	Version int    `yaml:"version"`
	Data    T      `yaml:"data"`
}

// InfoFile is a YAML metadata record file.
func InfoFile[T Record](prefix string) DataFile[T] {
	return DataFile[T]{
		Name: prefix + ExtInfo,
		Encode: func(v T) ([]byte, error) {
			return yaml.Marshal(envelope[T]{Kind: v.Kind(), Version: v.Version(), Data: v})
		},
		Decode: func(buf []byte) (v T, err error) {
			var env envelope[T]
			err = yaml.Unmarshal(buf, &env)
			if err != nil {
				return
			}
			if env.Kind != v.Kind() {
				return v, fmt.Errorf("record kind %q, expected %q", env.Kind, v.Kind())
			}
			if env.Version < 1 || env.Version > v.Version() {
				return v, fmt.Errorf("%s record version %d not supported", env.Kind, env.Version)
			}
			return env.Data, nil
		},
	}
}

// run status values
const (
	StatusRunning = "running"
	StatusSuccess = "succeeded"
	StatusFailed  = "failed"
)

// RunInfo describes one run of an external program.
type RunInfo struct {
	Job         string    `yaml:"job"`
	Prog        string    `yaml:"prog"`
	ProgVersion string    `yaml:"prog_version,omitempty"`
	Method      string    `yaml:"method"`
	Basis       string    `yaml:"basis"`
	Status      string    `yaml:"status"`
	Host        string    `yaml:"host,omitempty"`
	UTCStart    time.Time `yaml:"utc_start_time"`
	UTCEnd      time.Time `yaml:"utc_end_time"`
}

func (RunInfo) Kind() string { return "run" }
func (RunInfo) Version() int { return 1 }

// ConformerTrunkInfo counts the samples drawn so far for a conformer
// set, and the torsion ranges they were drawn from.
type ConformerTrunkInfo struct {
	NSamp      int                  `yaml:"nsamp"`
	TorsRanges map[string][]float64 `yaml:"tors_ranges,omitempty"`
}

func (ConformerTrunkInfo) Kind() string { return "conformer_trunk" }
func (ConformerTrunkInfo) Version() int { return 1 }

// SampleTrunkInfo is ConformerTrunkInfo for tau samples.
type SampleTrunkInfo struct {
	NSamp      int                  `yaml:"nsamp"`
	TorsRanges map[string][]float64 `yaml:"tors_ranges,omitempty"`
}

func (SampleTrunkInfo) Kind() string { return "tau_trunk" }
func (SampleTrunkInfo) Version() int { return 1 }

// AliasInfo links a symmetry-equivalent structure to the conformer it
// duplicates.  Canonical is the conformer's own locator suffix.
type AliasInfo struct {
	Canonical db.Locs   `yaml:"canonical"`
	Energy    float64   `yaml:"energy"`
	Created   time.Time `yaml:"created"`
}

func (AliasInfo) Kind() string { return "alias" }
func (AliasInfo) Version() int { return 1 }

// InstabilityInfo records why a structure was set aside instead of
// being stored as a conformer.
type InstabilityInfo struct {
	Reason    string  `yaml:"reason"`
	Energy    float64 `yaml:"energy"`
	Fragments [][]int `yaml:"fragments,omitempty"`
}

func (InstabilityInfo) Kind() string { return "instability" }
func (InstabilityInfo) Version() int { return 1 }
