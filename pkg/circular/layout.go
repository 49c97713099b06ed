package circular

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

const (
	// DefaultStartAngle places the first node at the top of the circle.
	DefaultStartAngle = 90.0

	// DefaultGap is the extra arc, in degrees, inserted at each boundary.
	DefaultGap = 10.0

	fullCircle = 360.0
)

// Direction is the walking direction around the circle.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// String returns the flag spelling of d.
func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// ParseDirection parses "clockwise"/"cw" or "counter-clockwise"/"ccw".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clockwise", "cw":
		return Clockwise, nil
	case "counter-clockwise", "counterclockwise", "ccw":
		return CounterClockwise, nil
	}
	return Clockwise, errors.New(errors.ErrCodeInvalidInput, "invalid layout direction %q", s)
}

func (d Direction) sign() float64 {
	if d == CounterClockwise {
		return 1
	}
	return -1
}

// Options configures Layout.
type Options struct {
	// StartAngle is the angle of the first node, in degrees (90 = top).
	StartAngle float64 `json:"start_angle" toml:"start_angle"`
	// Gap is the extra arc inserted at each group boundary, in degrees.
	Gap float64 `json:"gap" toml:"gap"`
	// Direction is the walking direction.
	Direction Direction `json:"direction" toml:"-"`
	// StartBetween shifts the start by half a step (and half a gap when a
	// boundary sits at 0), so the start angle falls between two nodes.
	StartBetween bool `json:"start_between,omitempty" toml:"start_between"`
}

// DefaultOptions returns a clockwise layout starting at the top with a
// 10 degree gap at each boundary.
func DefaultOptions() Options {
	return Options{
		StartAngle: DefaultStartAngle,
		Gap:        DefaultGap,
		Direction:  Clockwise,
	}
}

// Assignment maps every node of a display order to an angle.
type Assignment struct {
	// Order is the display order the assignment was computed for.
	Order []string
	// Boundaries are the validated group boundaries.
	Boundaries []int
	// Step is the arc between neighbours inside a group, in degrees.
	Step float64
	// Gap is the extra arc at each boundary, in degrees.
	Gap float64

	angles []float64
	index  map[string]int
}

// Layout computes the angle of every node in order.
func Layout(order []string, boundaries []int, opts Options) (*Assignment, error) {
	n := len(order)
	if n == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node order is empty")
	}
	if !finite(opts.StartAngle) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "start angle must be finite")
	}
	if !finite(opts.Gap) || opts.Gap < 0 {
		return nil, errors.New(errors.ErrCodeInvalidBoundary, "gap must be a finite non-negative angle, got %v", opts.Gap)
	}

	index := make(map[string]int, n)
	for i, l := range order {
		if _, ok := index[l]; ok {
			return nil, errors.New(errors.ErrCodeDuplicateLabel, "node %q appears twice in the order", l)
		}
		index[l] = i
	}

	if err := validateBoundaries(boundaries, n); err != nil {
		return nil, err
	}

	totalGap := float64(len(boundaries)) * opts.Gap
	if totalGap >= fullCircle {
		return nil, errors.New(errors.ErrCodeInvalidBoundary,
			"%d gaps of %v degrees leave no room for nodes", len(boundaries), opts.Gap)
	}
	step := (fullCircle - totalGap) / float64(n)

	sign := opts.Direction.sign()
	start := opts.StartAngle
	if opts.StartBetween {
		offset := step / 2
		if len(boundaries) > 0 && boundaries[0] == 0 {
			offset += opts.Gap / 2
		}
		start += sign * offset
	}

	angles := make([]float64, n)
	k := 0
	for i := range angles {
		for k < len(boundaries) && boundaries[k] <= i {
			k++
		}
		gaps := k
		if len(boundaries) > 0 && boundaries[0] == 0 {
			gaps--
		}
		angles[i] = start + sign*(float64(i)*step+float64(gaps)*opts.Gap)
	}

	return &Assignment{
		Order:      append([]string(nil), order...),
		Boundaries: append([]int(nil), boundaries...),
		Step:       step,
		Gap:        opts.Gap,
		angles:     angles,
		index:      index,
	}, nil
}

// validateBoundaries checks that boundaries lie in [0, n] and strictly increase.
func validateBoundaries(boundaries []int, n int) error {
	for i, b := range boundaries {
		if b < 0 || b > n {
			return errors.New(errors.ErrCodeInvalidBoundary, "group boundary %d outside [0, %d]", b, n)
		}
		if i > 0 && b <= boundaries[i-1] {
			return errors.New(errors.ErrCodeInvalidBoundary, "group boundaries must strictly increase: %v", boundaries)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Len returns the number of nodes.
func (a *Assignment) Len() int { return len(a.angles) }

// Angle returns the angle of label in degrees.
func (a *Assignment) Angle(label string) (float64, bool) {
	i, ok := a.index[label]
	if !ok {
		return 0, false
	}
	return a.angles[i], true
}

// Radians returns the angle of label in radians.
func (a *Assignment) Radians(label string) (float64, bool) {
	deg, ok := a.Angle(label)
	return deg * math.Pi / 180, ok
}

// Angles returns the angles in display order, in degrees.
func (a *Assignment) Angles() []float64 {
	return append([]float64(nil), a.angles...)
}

// Map returns label -> angle in degrees.
func (a *Assignment) Map() map[string]float64 {
	out := make(map[string]float64, len(a.angles))
	for i, l := range a.Order {
		out[l] = a.angles[i]
	}
	return out
}

// AnglesFor returns the angles of labels, index-aligned with the input.
// This aligns the assignment with the matrix index order.
func (a *Assignment) AnglesFor(labels []string) ([]float64, error) {
	out := make([]float64, len(labels))
	for i, l := range labels {
		deg, ok := a.Angle(l)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownLabel, "node %q is not in the layout", l)
		}
		out[i] = deg
	}
	return out, nil
}

// Arcs returns the arc from each node to the next one in display order; the
// last entry is the arc that wraps back to the first node. The arcs always
// sum to 360 degrees.
func (a *Assignment) Arcs() []float64 {
	n := len(a.angles)
	extra := make([]int, n)
	for _, b := range a.Boundaries {
		// A boundary at b widens the arc that ends at node b.
		extra[(b-1+n)%n]++
	}
	arcs := make([]float64, n)
	for i := range arcs {
		arcs[i] = a.Step + float64(extra[i])*a.Gap
	}
	return arcs
}

// String renders "label=angle" pairs in display order, useful in logs.
func (a *Assignment) String() string {
	var b strings.Builder
	for i, l := range a.Order {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(l)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(a.angles[i], 'f', -1, 64))
	}
	return b.String()
}
