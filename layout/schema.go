package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/t7a/autofile/db"
)

func text(l db.Loc) string {
	s, _ := l.AsText()
	return s
}

func integer(l db.Loc) int {
	n, _ := l.AsInt()
	return n
}

// textSchema maps one text locator onto one segment of the same name.
func textSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.TextShape},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			return []string{text(locs[0])}, nil
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			return db.L(segs[0]), nil
		},
	}
}

// intSchema maps one integer locator onto its decimal form.
func intSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.IntShape},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			return []string{strconv.Itoa(integer(locs[0]))}, nil
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			n, err := strconv.Atoi(segs[0])
			if err != nil {
				return nil, err
			}
			return db.L(n), nil
		},
	}
}

// randomIDSchema accepts only locators shaped like db.RandomID output.
func randomIDSchema(name string) *db.Schema {
	check := func(s string) error {
		if !db.IsRandomID(s) {
			return fmt.Errorf("%q is not a random id", s)
		}
		return nil
	}
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.TextShape},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			s := text(locs[0])
			return []string{s}, check(s)
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			return db.L(segs[0]), check(segs[0])
		},
	}
}

// subrunSchema maps a (macro, micro) iteration pair onto "00_00".
func subrunSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.IntShape, db.IntShape},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			a, b := integer(locs[0]), integer(locs[1])
			if a < 0 || b < 0 {
				return nil, fmt.Errorf("negative subrun index")
			}
			return []string{fmt.Sprintf("%02d_%02d", a, b)}, nil
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			parts := strings.Split(segs[0], "_")
			if len(parts) != 2 {
				return nil, fmt.Errorf("not a subrun: %q", segs[0])
			}
			a, err := strconv.Atoi(parts[0])
			if err != nil {
				return nil, err
			}
			b, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil, err
			}
			return db.L(a, b), nil
		},
	}
}

// scanBranchSchema maps a list of coordinate names onto "d3_d4".
func scanBranchSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.CompositeOf(db.TextShape)},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			var names []string
			for _, e := range locs[0].Elems() {
				s := text(e)
				if s == "" || strings.Contains(s, "_") {
					return nil, fmt.Errorf("bad coordinate name %q", s)
				}
				names = append(names, s)
			}
			return []string{strings.Join(names, "_")}, nil
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			return db.L(strings.Split(segs[0], "_")), nil
		},
	}
}

// scanLeafSchema maps a grid point onto "0_2".
func scanLeafSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.CompositeOf(db.IntShape)},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			var parts []string
			for _, e := range locs[0].Elems() {
				parts = append(parts, strconv.Itoa(integer(e)))
			}
			return []string{strings.Join(parts, "_")}, nil
		},
		ValueMap: func(segs []string) (db.Locs, error) {
			var idx []int
			for _, p := range strings.Split(segs[0], "_") {
				n, err := strconv.Atoi(p)
				if err != nil {
					return nil, err
				}
				idx = append(idx, n)
			}
			return db.L(idx), nil
		},
	}
}

// Formula extracts the formula layer of an InChI string, e.g. C2H2F2
// from InChI=1S/C2H2F2/c3-1-2-4/h1-2H.
func Formula(ich string) (string, error) {
	if !strings.HasPrefix(ich, "InChI=") {
		return "", fmt.Errorf("not an InChI string: %q", ich)
	}
	layers := strings.Split(ich, "/")
	if len(layers) < 2 || layers[1] == "" {
		return "", fmt.Errorf("no formula layer in %q", ich)
	}
	return layers[1], nil
}

// speciesSchema maps (inchi, charge, multiplicity) onto
// formula/hash/charge/mult.  The hash is not invertible, so the
// locators are recorded.
func speciesSchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.TextShape, db.IntShape, db.IntShape},
		Depth:  4,
		PathMap: func(locs db.Locs) ([]string, error) {
			ich, chg, mult := text(locs[0]), integer(locs[1]), integer(locs[2])
			fml, err := Formula(ich)
			if err != nil {
				return nil, err
			}
			if mult < 1 {
				return nil, fmt.Errorf("multiplicity %d < 1", mult)
			}
			return []string{fml, db.ShortHash(ich), strconv.Itoa(chg), strconv.Itoa(mult)}, nil
		},
		Record: true,
	}
}

// orbital restriction labels
const (
	Restricted   = "R"
	Unrestricted = "U"
)

// theorySchema maps (method, basis, orbital restriction) onto one
// segment of two short hashes and the restriction label.
func theorySchema(name string) *db.Schema {
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{db.TextShape, db.TextShape, db.TextShape},
		Depth:  1,
		PathMap: func(locs db.Locs) ([]string, error) {
			method, basis, orb := text(locs[0]), text(locs[1]), text(locs[2])
			if orb != Restricted && orb != Unrestricted {
				return nil, fmt.Errorf("orbital restriction %q is neither %s nor %s", orb, Restricted, Unrestricted)
			}
			if method == "" {
				return nil, fmt.Errorf("empty method")
			}
			return []string{db.ShortHash(method) + db.ShortHash(basis) + orb}, nil
		},
		Record: true,
	}
}

// reactionSchema maps (inchis, charges, multiplicities, ts multiplicity)
// onto reactant formulas / product formulas / hash.  Each of the first
// three is a pair of lists, reactants then products.
func reactionSchema(name string) *db.Schema {
	pair := db.CompositeOf(db.CompositeOf(db.TextShape))
	ipair := db.CompositeOf(db.CompositeOf(db.IntShape))
	return &db.Schema{
		Name:   name,
		Shapes: []db.Shape{pair, ipair, ipair, db.IntShape},
		Depth:  3,
		PathMap: func(locs db.Locs) ([]string, error) {
			ichs := locs[0].Elems()
			if len(ichs) != 2 {
				return nil, fmt.Errorf("expected reactants and products, got %d sides", len(ichs))
			}
			for _, l := range locs[1:3] {
				sides := l.Elems()
				if len(sides) != 2 ||
					len(sides[0].Elems()) != len(ichs[0].Elems()) ||
					len(sides[1].Elems()) != len(ichs[1].Elems()) {
					return nil, fmt.Errorf("%s does not match the shape of %s", l, locs[0])
				}
			}
			if integer(locs[3]) < 1 {
				return nil, fmt.Errorf("multiplicity %d < 1", integer(locs[3]))
			}
			var segs []string
			for _, side := range ichs {
				var fmls []string
				for _, e := range side.Elems() {
					fml, err := Formula(text(e))
					if err != nil {
						return nil, err
					}
					fmls = append(fmls, fml)
				}
				if len(fmls) == 0 {
					return nil, fmt.Errorf("empty side in %s", locs[0])
				}
				segs = append(segs, strings.Join(fmls, "_"))
			}
			return append(segs, db.ShortHash(locs.String())), nil
		},
		Record: true,
	}
}
