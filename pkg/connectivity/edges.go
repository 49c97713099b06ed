package connectivity

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Edge is one surviving connection of a reduced matrix. Row > Col always
// holds; both index the natural-sorted label list.
type Edge struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	Weight float64 `json:"weight"`
}

// Edges lists the non-zero strictly-lower entries of m in row-major order.
func Edges(m mat.Matrix) []Edge {
	r, c := m.Dims()
	var out []Edge
	for i := 1; i < r; i++ {
		for j := 0; j < i && j < c; j++ {
			if v := m.At(i, j); v != 0 && !math.IsNaN(v) {
				out = append(out, Edge{Row: i, Col: j, Weight: v})
			}
		}
	}
	return out
}

// ValueRange returns the smallest and largest finite edge weight.
// ok is false when no edge has a finite weight.
func ValueRange(edges []Edge) (lo, hi float64, ok bool) {
	for _, e := range edges {
		if math.IsInf(e.Weight, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = e.Weight, e.Weight, true
			continue
		}
		lo = math.Min(lo, e.Weight)
		hi = math.Max(hi, e.Weight)
	}
	return lo, hi, ok
}
