package geom

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// XYZDecimals is the number of decimals written per coordinate.  A
// geometry read back from XYZ text matches the original to within
// XYZTolerance.
const (
	XYZDecimals  = 10
	XYZTolerance = 1e-9
)

// XYZ renders g as one XYZ frame.  Newlines in comment are replaced
// with spaces so the frame stays well formed.
func (g Geometry) XYZ(comment string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(g))
	b.WriteString(strings.ReplaceAll(comment, "\n", " "))
	b.WriteString("\n")
	for _, a := range g {
		fmt.Fprintf(&b, "%-2s %20.*f %20.*f %20.*f\n", a.Symbol,
			XYZDecimals, a.Pos.X, XYZDecimals, a.Pos.Y, XYZDecimals, a.Pos.Z)
	}
	return b.String()
}

// ParseXYZ reads a single XYZ frame.
func ParseXYZ(s string) (g Geometry, comment string, err error) {
	frames, comments, err := ParseXYZFrames(s)
	if err != nil {
		return
	}
	if len(frames) != 1 {
		return nil, "", fmt.Errorf("expected one xyz frame, got %d", len(frames))
	}
	return frames[0], comments[0], nil
}

// ParseXYZFrames reads a multi-frame XYZ file, as written for
// trajectories.
func ParseXYZFrames(s string) (frames []Geometry, comments []string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(s))
	line := 0
	next := func() (string, bool) {
		ok := scanner.Scan()
		if ok {
			line++
		}
		return scanner.Text(), ok
	}
	for {
		head, ok := next()
		if !ok {
			break
		}
		head = strings.TrimSpace(head)
		if head == "" {
			continue
		}
		n, err := strconv.Atoi(head)
		if err != nil || n < 0 {
			return nil, nil, fmt.Errorf("line %d: bad atom count %q", line, head)
		}
		comment, ok := next()
		if !ok {
			return nil, nil, fmt.Errorf("line %d: missing comment line", line)
		}
		g := make(Geometry, 0, n)
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, nil, fmt.Errorf("line %d: expected %d atoms, got %d", line, n, i)
			}
			a, err := parseXYZAtom(text)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %v", line, err)
			}
			g = append(g, a)
		}
		frames = append(frames, g)
		comments = append(comments, comment)
	}
	err = scanner.Err()
	return
}

func parseXYZAtom(text string) (a Atom, err error) {
	fields := strings.Fields(text)
	if len(fields) != 4 {
		return a, fmt.Errorf("expected symbol and 3 coordinates, got %q", text)
	}
	var xyz [3]float64
	for i := 0; i < 3; i++ {
		xyz[i], err = strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return
		}
	}
	a.Symbol = fields[0]
	a.Pos = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return
}
