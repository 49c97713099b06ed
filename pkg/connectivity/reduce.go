package connectivity

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Direction selects which side of the threshold is suppressed.
type Direction int

const (
	// Less zeroes entries strictly below the threshold.
	Less Direction = iota
	// Greater zeroes entries strictly above the threshold.
	Greater
)

// String returns the flag spelling of d.
func (d Direction) String() string {
	switch d {
	case Less:
		return "less"
	case Greater:
		return "greater"
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirection parses a threshold direction. The empty string means Less.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "less", "lt", "<":
		return Less, nil
	case "great", "greater", "gt", ">":
		return Greater, nil
	}
	return Less, errors.New(errors.ErrCodeInvalidInput, "invalid threshold direction %q (must be 'less' or 'greater')", s)
}

// ParseThreshold converts a threshold token to a number.
func ParseThreshold(token string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
	if err != nil || math.IsNaN(v) {
		return 0, errors.New(errors.ErrCodeInvalidThreshold, "threshold %q is not a number", token)
	}
	return v, nil
}

// FormatThreshold renders v in its shortest exact decimal form ("4", "0.25").
// Distinct values always format differently.
func FormatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// keep reports whether v survives the threshold test.
func (d Direction) keep(v, threshold float64) bool {
	switch d {
	case Greater:
		return v <= threshold
	default:
		return v >= threshold
	}
}

// Reduce extracts the unique connections of m and applies the threshold.
// The result has the dimensions of m, with the diagonal, the upper triangle
// and every entry failing the test set to zero.
func Reduce(m mat.Matrix, threshold float64, dir Direction) (*mat.Dense, error) {
	if math.IsNaN(threshold) {
		return nil, errors.New(errors.ErrCodeInvalidThreshold, "threshold is NaN")
	}
	if dir != Less && dir != Greater {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid threshold direction %d", int(dir))
	}
	out, err := LowerTriangle(m)
	if err != nil {
		return nil, err
	}

	n, _ := out.Dims()
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if !dir.keep(out.At(i, j), threshold) {
				out.Set(i, j, 0)
			}
		}
	}
	return out, nil
}

// LowerTriangle returns a copy of m with the diagonal and upper triangle
// zeroed. NaN entries below the diagonal are zeroed as well.
func LowerTriangle(m mat.Matrix) (*mat.Dense, error) {
	n, err := squareDims(m)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if v := m.At(i, j); !math.IsNaN(v) {
				out.Set(i, j, v)
			}
		}
	}
	return out, nil
}

// squareDims returns the order of m or a shape error. A nil or empty matrix
// is rejected.
func squareDims(m mat.Matrix) (int, error) {
	if m == nil {
		return 0, errors.New(errors.ErrCodeShape, "matrix is nil")
	}
	if d, ok := m.(*mat.Dense); ok && d.IsEmpty() {
		return 0, errors.New(errors.ErrCodeShape, "matrix is empty")
	}
	r, c := m.Dims()
	if r != c {
		return 0, errors.New(errors.ErrCodeShape, "matrix is %dx%d, want square", r, c)
	}
	if r == 0 {
		return 0, errors.New(errors.ErrCodeShape, "matrix is empty")
	}
	return r, nil
}
