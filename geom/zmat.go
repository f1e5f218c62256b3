package geom

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// VRow is one z-matrix row without values: an atom, up to three
// reference atoms (0-based, -1 when unused), and the names of the
// distance, angle and dihedral coordinates defined against them.
type VRow struct {
	Symbol string
	Keys   [3]int
	Names  [3]string
}

// VMatrix is the value-free skeleton of a z-matrix.
type VMatrix []VRow

// ZMatrix is a VMatrix plus the value of every named coordinate.
type ZMatrix struct {
	VMatrix VMatrix
	Values  map[string]float64
}

// Validate checks the row structure: row i refers to min(i, 3) earlier
// atoms, each by a distinct index below i, with a name per reference.
func (v VMatrix) Validate() error {
	for i, row := range v {
		if row.Symbol == "" {
			return fmt.Errorf("row %d: empty symbol", i)
		}
		nref := i
		if nref > 3 {
			nref = 3
		}
		for k := 0; k < 3; k++ {
			key, name := row.Keys[k], row.Names[k]
			if k >= nref {
				if key != -1 || name != "" {
					return fmt.Errorf("row %d: unexpected reference %d", i, k)
				}
				continue
			}
			if key < 0 || key >= i {
				return fmt.Errorf("row %d: reference %d out of range", i, key)
			}
			for kk := 0; kk < k; kk++ {
				if row.Keys[kk] == key {
					return fmt.Errorf("row %d: repeated reference %d", i, key)
				}
			}
			if name == "" || strings.ContainsAny(name, " \t=") {
				return fmt.Errorf("row %d: bad coordinate name %q", i, name)
			}
		}
	}
	return nil
}

// Names returns the coordinate names in first-use order.
func (v VMatrix) Names() (names []string) {
	seen := make(map[string]bool)
	for _, row := range v {
		for _, name := range row.Names {
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return
}

func (v VMatrix) Equal(o VMatrix) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders v one row per line with 1-based references:
//
//	C
//	O  1 r1
//	O  1 r2  2 a1
//	H  1 r3  2 a2  3 d1
func (v VMatrix) String() string {
	var b strings.Builder
	for _, row := range v {
		b.WriteString(row.Symbol)
		for k := 0; k < 3; k++ {
			if row.Keys[k] < 0 {
				break
			}
			fmt.Fprintf(&b, " %d %s", row.Keys[k]+1, row.Names[k])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ParseVMatrix is the inverse of VMatrix.String.
func ParseVMatrix(s string) (v VMatrix, err error) {
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields)%2 != 1 || len(fields) > 7 {
			return nil, fmt.Errorf("bad v-matrix row %q", line)
		}
		row := VRow{Symbol: fields[0], Keys: [3]int{-1, -1, -1}}
		for k := 0; 1+2*k < len(fields); k++ {
			key, err := strconv.Atoi(fields[1+2*k])
			if err != nil {
				return nil, fmt.Errorf("bad reference in %q: %v", line, err)
			}
			row.Keys[k] = key - 1
			row.Names[k] = fields[2+2*k]
		}
		v = append(v, row)
	}
	if err = scanner.Err(); err != nil {
		return
	}
	err = v.Validate()
	return
}

// Validate checks the skeleton and that every named coordinate has a
// value and no value is left unused.
func (z ZMatrix) Validate() error {
	err := z.VMatrix.Validate()
	if err != nil {
		return err
	}
	names := z.VMatrix.Names()
	for _, name := range names {
		if _, ok := z.Values[name]; !ok {
			return fmt.Errorf("no value for %s", name)
		}
	}
	if len(names) != len(z.Values) {
		return fmt.Errorf("%d values for %d coordinates", len(z.Values), len(names))
	}
	return nil
}

// AlmostEqual compares skeletons exactly and values within tol.
func (z ZMatrix) AlmostEqual(o ZMatrix, tol float64) bool {
	if !z.VMatrix.Equal(o.VMatrix) || len(z.Values) != len(o.Values) {
		return false
	}
	for name, val := range z.Values {
		other, ok := o.Values[name]
		if !ok {
			return false
		}
		d := val - other
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

// String renders the skeleton, a blank line, then one "name = value"
// line per coordinate in first-use order.  Values not named by any row
// are dropped; call Validate first to rule that out.
func (z ZMatrix) String() string {
	var b strings.Builder
	b.WriteString(z.VMatrix.String())
	b.WriteString("\n")
	for _, name := range z.VMatrix.Names() {
		fmt.Fprintf(&b, "%-5s = %.*f\n", name, XYZDecimals, z.Values[name])
	}
	return b.String()
}

// ParseZMatrix is the inverse of ZMatrix.String.
func ParseZMatrix(s string) (z ZMatrix, err error) {
	parts := strings.SplitN(strings.TrimLeft(s, "\n"), "\n\n", 2)
	if len(parts) != 2 {
		return z, fmt.Errorf("z-matrix: missing blank line before values")
	}
	z.VMatrix, err = ParseVMatrix(parts[0])
	if err != nil {
		return
	}
	z.Values = make(map[string]float64)
	scanner := bufio.NewScanner(strings.NewReader(parts[1]))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			return z, fmt.Errorf("z-matrix: bad value line %q", line)
		}
		name := strings.TrimSpace(kv[0])
		val, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return z, fmt.Errorf("z-matrix: %s: %v", name, err)
		}
		z.Values[name] = val
	}
	if err = scanner.Err(); err != nil {
		return
	}
	err = z.Validate()
	return
}
