// Package pipeline runs the circle-graph batch: one reduced matrix and one
// set of rendered artifacts per requested threshold.
//
// This package is shared by the CLI and the HTTP API so both produce the
// same files for the same inputs.
//
// # Architecture
//
// A run has two stages:
//
//  1. Prepare: validate the inputs once. The node order, the angle
//     assignment, and the index-aligned node colors are computed here. Any
//     structural error (matrix shape, duplicate labels, unknown hemisphere,
//     bad group boundaries) stops the run before threshold work begins.
//  2. Per threshold, in parallel: parse the token, reduce the matrix, and
//     render every requested format. A failure here is recorded on that
//     threshold's result and never affects its siblings.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Thresholds: []string{"0.2", "0.3"},
//	    Title:      "Group A",
//	    Formats:    []string{"png"},
//	    OutputDir:  "out",
//	}
//	result, err := runner.Execute(ctx, pipeline.Input{Matrix: m, Registry: reg}, opts)
//	if err != nil {
//	    log.Fatal(err) // structural: nothing was rendered
//	}
//	for _, t := range result.Thresholds {
//	    if t.Err != nil {
//	        log.Warn("threshold failed", "threshold", t.Token, "error", t.Err)
//	    }
//	}
package pipeline

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlegraph/pkg/cache"
	"github.com/matzehuels/circlegraph/pkg/circular"
	"github.com/matzehuels/circlegraph/pkg/connectivity"
	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultThreshold keeps every non-negative connection.
	DefaultThreshold = "0"

	// DefaultDirection zeroes entries below the threshold.
	DefaultDirection = "less"

	// DefaultStartAngle puts the first node at the top of the circle.
	DefaultStartAngle = circular.DefaultStartAngle

	// DefaultGap is the extra arc at each group boundary, in degrees.
	DefaultGap = circular.DefaultGap

	// DefaultTheme is the default color theme.
	DefaultTheme = string(render.ThemeDark)

	// DefaultFormat is the default output format.
	DefaultFormat = string(render.FormatPNG)

	// DefaultSize is the default image edge length in pixels.
	DefaultSize = render.DefaultSize

	// MaxSize bounds the image edge length.
	MaxSize = 20000
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a circle-graph run. It replaces
// what would otherwise be process-wide settings and is passed by value.
// This struct supports JSON (API requests) and TOML (config files).
type Options struct {
	// Reduce options
	Thresholds []string `json:"thresholds,omitempty" toml:"thresholds"`
	Direction  string   `json:"direction,omitempty" toml:"direction"`

	// Layout options. A nil Boundaries splits the circle by hemisphere; an
	// empty, non-nil slice places nodes without any gap.
	StartAngle       *float64 `json:"start_angle,omitempty" toml:"start_angle"`
	Gap              *float64 `json:"gap,omitempty" toml:"gap"`
	Boundaries       []int    `json:"boundaries,omitempty" toml:"boundaries"`
	CounterClockwise bool     `json:"counter_clockwise,omitempty" toml:"counter_clockwise"`
	StartBetween     bool     `json:"start_between,omitempty" toml:"start_between"`

	// Render options
	Title     string   `json:"title,omitempty" toml:"title"`
	Theme     string   `json:"theme,omitempty" toml:"theme"`
	Formats   []string `json:"formats,omitempty" toml:"formats"`
	Size      int      `json:"size,omitempty" toml:"size"`
	ShowNames bool     `json:"show_names,omitempty" toml:"show_names"`

	// Runtime options (not serialized)
	OutputDir   string      `json:"-" toml:"out"`
	Concurrency int         `json:"-" toml:"jobs"`
	Refresh     bool        `json:"-" toml:"-"`
	Logger      *log.Logger `json:"-" toml:"-"`
}

// Float returns a pointer to v, for the optional angle fields.
func Float(v float64) *float64 { return &v }

// SetDefaults fills every unset field with its default.
func (o *Options) SetDefaults() {
	if len(o.Thresholds) == 0 {
		o.Thresholds = []string{DefaultThreshold}
	}
	if o.Direction == "" {
		o.Direction = DefaultDirection
	}
	if o.StartAngle == nil {
		o.StartAngle = Float(DefaultStartAngle)
	}
	if o.Gap == nil {
		o.Gap = Float(DefaultGap)
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Threshold tokens are deliberately not
// checked here: a bad token fails only its own threshold.
func (o *Options) Validate() error {
	if _, err := connectivity.ParseDirection(o.Direction); err != nil {
		return err
	}
	if _, err := render.ParseTheme(o.Theme); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	if err := errors.ValidateArtifactName(ArtifactName(o.Title, 0)); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	if o.Size < 16 || o.Size > MaxSize {
		return errors.New(errors.ErrCodeInvalidInput, "size must be between 16 and %d pixels, got %d", MaxSize, o.Size)
	}
	if o.StartAngle != nil && (math.IsNaN(*o.StartAngle) || math.IsInf(*o.StartAngle, 0)) {
		return errors.New(errors.ErrCodeInvalidInput, "start angle must be finite")
	}
	if o.Gap != nil && (math.IsNaN(*o.Gap) || math.IsInf(*o.Gap, 0) || *o.Gap < 0) {
		return errors.New(errors.ErrCodeInvalidBoundary, "gap must be a finite non-negative angle")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// direction returns the parsed threshold direction. Options must be valid.
func (o *Options) direction() connectivity.Direction {
	d, _ := connectivity.ParseDirection(o.Direction)
	return d
}

// formats returns the parsed, de-duplicated output formats.
func (o *Options) formats() []render.Format {
	seen := make(map[render.Format]bool, len(o.Formats))
	var out []render.Format
	for _, s := range o.Formats {
		f, err := render.ParseFormat(s)
		if err != nil || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// LayoutOptions returns the angular layout configuration.
func (o *Options) LayoutOptions() circular.Options {
	lo := circular.DefaultOptions()
	if o.StartAngle != nil {
		lo.StartAngle = *o.StartAngle
	}
	if o.Gap != nil {
		lo.Gap = *o.Gap
	}
	if o.CounterClockwise {
		lo.Direction = circular.CounterClockwise
	}
	lo.StartBetween = o.StartBetween
	return lo
}

// RenderOptions returns the scene configuration.
func (o *Options) RenderOptions() render.Options {
	theme, _ := render.ParseTheme(o.Theme)
	return render.Options{
		Title:     o.Title,
		Theme:     theme,
		Size:      o.Size,
		ShowNames: o.ShowNames,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered artifact.
func (o *Options) ArtifactKeyOpts(format render.Format, threshold float64, boundaries []int) cache.ArtifactKeyOpts {
	lo := o.LayoutOptions()
	return cache.ArtifactKeyOpts{
		Format:     string(format),
		Threshold:  connectivity.FormatThreshold(threshold),
		Direction:  o.direction().String(),
		Title:      o.Title,
		Theme:      string(o.RenderOptions().Theme),
		StartAngle: lo.StartAngle,
		Gap:        lo.Gap,
		Boundaries: boundaries,
		Clockwise:  lo.Direction == circular.Clockwise,
		Between:    lo.StartBetween,
		ShowNames:  o.ShowNames,
		Size:       o.Size,
	}
}
