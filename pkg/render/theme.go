package render

import (
	"math"
	"strings"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Theme selects background, text color, and edge colormap.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme accepts "dark"/"d" and "light"/"l".
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "d", "dark":
		return ThemeDark, nil
	case "l", "light":
		return ThemeLight, nil
	}
	return "", errors.New(errors.ErrCodeInvalidTheme, "unknown color theme %q (want d or l)", s)
}

var (
	black = atlas.Color{A: 1}
	white = atlas.White
)

func (t Theme) background() atlas.Color {
	if t == ThemeLight {
		return white
	}
	return black
}

func (t Theme) foreground() atlas.Color {
	if t == ThemeLight {
		return black
	}
	return white
}

func (t Theme) colormap() Colormap {
	if t == ThemeLight {
		return HotReversed
	}
	return Hot
}

// Colormap maps a normalized value in [0,1] to a color.
type Colormap string

const (
	Hot         Colormap = "hot"
	HotReversed Colormap = "hot_r"
)

// Breakpoints of the black-red-yellow-white "hot" ramp.
const (
	hotRed    = 0.365079
	hotYellow = 0.746032
)

// At returns the color at x. Values outside [0,1] are clamped.
func (c Colormap) At(x float64) atlas.Color {
	x = clamp01(x)
	if c == HotReversed {
		x = 1 - x
	}
	return atlas.Color{
		R: ramp(x, 0, hotRed),
		G: ramp(x, hotRed, hotYellow),
		B: ramp(x, hotYellow, 1),
		A: 1,
	}
}

// ramp rises linearly from 0 at lo to 1 at hi. Both differences are taken at
// run time so that x == hi yields exactly 1.
func ramp(x, lo, hi float64) float64 {
	return clamp01((x - lo) / (hi - lo))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
