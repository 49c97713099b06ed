package atlas

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Hemisphere is the binary grouping that splits the circle into two arcs.
type Hemisphere string

const (
	Left  Hemisphere = "L"
	Right Hemisphere = "R"
)

// ParseHemisphere normalizes the common spellings of a hemisphere.
// Unknown values are returned unchanged (trimmed); use Valid to check them.
func ParseHemisphere(s string) Hemisphere {
	v := strings.TrimSpace(s)
	switch strings.ToLower(v) {
	case "l", "left", "lh":
		return Left
	case "r", "right", "rh":
		return Right
	}
	return Hemisphere(v)
}

// Valid reports whether h is Left or Right.
func (h Hemisphere) Valid() bool {
	return h == Left || h == Right
}

// String returns the hemisphere code.
func (h Hemisphere) String() string { return string(h) }

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// White is the fallback node color.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// ParseColor parses "r g b" or "r g b a". If any component exceeds 1 the
// whole color is read as 0-255 channels and divided by 255.
func ParseColor(s string) (Color, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 && len(fields) != 4 {
		return Color{}, errors.New(errors.ErrCodeInvalidValue, "color %q: want 3 or 4 components, got %d", s, len(fields))
	}

	vals := make([]float64, 4)
	vals[3] = 1
	scaled := false
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Color{}, errors.New(errors.ErrCodeInvalidValue, "color %q: component %q is not a number", s, f)
		}
		if v < 0 || v > 255 {
			return Color{}, errors.New(errors.ErrCodeInvalidValue, "color %q: component %v out of range", s, v)
		}
		if v > 1 {
			scaled = true
		}
		vals[i] = v
	}
	if scaled {
		for i := range fields {
			vals[i] /= 255
		}
	}
	return Color{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

// Hex returns the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// String formats the color the way metadata tables store it.
func (c Color) String() string {
	return strconv.FormatFloat(c.R, 'g', -1, 64) + " " +
		strconv.FormatFloat(c.G, 'g', -1, 64) + " " +
		strconv.FormatFloat(c.B, 'g', -1, 64) + " " +
		strconv.FormatFloat(c.A, 'g', -1, 64)
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Node is the metadata of one region of interest.
type Node struct {
	Label        string     `json:"label"`
	Hemisphere   Hemisphere `json:"hemisphere"`
	Color        Color      `json:"color"`
	Network      string     `json:"network,omitempty"`
	NetworkColor string     `json:"net_color,omitempty"`
}
