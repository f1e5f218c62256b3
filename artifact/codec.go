package artifact

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/t7a/autofile/geom"
)

// Scalars and matrices are written with the shortest decimal form that
// parses back to the identical float64.

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func encodeScalar(x float64) ([]byte, error) {
	return []byte(formatFloat(x) + "\n"), nil
}

func decodeScalar(buf []byte) (x float64, err error) {
	x, err = strconv.ParseFloat(strings.TrimSpace(string(buf)), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse scalar")
	}
	return
}

func encodeText(s string) ([]byte, error) {
	return []byte(s), nil
}

func decodeText(buf []byte) (string, error) {
	return string(buf), nil
}

func encodeMatrix(m *mat.Dense) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil matrix")
	}
	var b bytes.Buffer
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(formatFloat(m.At(i, j)))
		}
		b.WriteString("\n")
	}
	return b.Bytes(), nil
}

func decodeMatrix(buf []byte) (m *mat.Dense, err error) {
	var data []float64
	rows, cols := 0, -1
	scanner := bufio.NewScanner(bytes.NewReader(buf))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if cols == -1 {
			cols = len(fields)
		}
		if len(fields) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", rows, len(fields), cols)
		}
		for _, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", rows)
			}
			data = append(data, x)
		}
		rows++
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if rows == 0 {
		return nil, fmt.Errorf("empty matrix")
	}
	return mat.NewDense(rows, cols, data), nil
}

func checkGradient(m *mat.Dense) error {
	if _, c := m.Dims(); c != 3 {
		return fmt.Errorf("gradient has %d columns, expected 3", c)
	}
	return nil
}

func checkHessian(m *mat.Dense) error {
	if r, c := m.Dims(); r != c || r%3 != 0 {
		return fmt.Errorf("hessian is %dx%d, expected 3n x 3n", r, c)
	}
	return nil
}

// Gradients and hessians are checked on the way out as well as in, so
// nothing is written that can't be read back.

func encodeGradient(m *mat.Dense) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil gradient")
	}
	if err := checkGradient(m); err != nil {
		return nil, err
	}
	return encodeMatrix(m)
}

func decodeGradient(buf []byte) (m *mat.Dense, err error) {
	m, err = decodeMatrix(buf)
	if err != nil {
		return
	}
	if err = checkGradient(m); err != nil {
		return nil, err
	}
	return
}

func encodeHessian(m *mat.Dense) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("nil hessian")
	}
	if err := checkHessian(m); err != nil {
		return nil, err
	}
	return encodeMatrix(m)
}

func decodeHessian(buf []byte) (m *mat.Dense, err error) {
	m, err = decodeMatrix(buf)
	if err != nil {
		return
	}
	if err = checkHessian(m); err != nil {
		return nil, err
	}
	return
}

func encodeGeometry(g geom.Geometry) ([]byte, error) {
	return []byte(g.XYZ("")), nil
}

func decodeGeometry(buf []byte) (g geom.Geometry, err error) {
	g, _, err = geom.ParseXYZ(string(buf))
	return
}

func encodeZMatrix(z geom.ZMatrix) ([]byte, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}
	return []byte(z.String()), nil
}

func decodeZMatrix(buf []byte) (geom.ZMatrix, error) {
	return geom.ParseZMatrix(string(buf))
}

func encodeVMatrix(v geom.VMatrix) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return []byte(v.String()), nil
}

func decodeVMatrix(buf []byte) (geom.VMatrix, error) {
	return geom.ParseVMatrix(string(buf))
}
