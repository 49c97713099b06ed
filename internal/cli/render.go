package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlegraph/pkg/errors"
	pkgio "github.com/matzehuels/circlegraph/pkg/io"
	"github.com/matzehuels/circlegraph/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
// Pipeline settings are only applied when the user set the flag, so a
// config file value is never replaced by a flag default.
type renderFlags struct {
	matrix     string   // connectivity matrix CSV
	atlas      string   // node metadata CSV
	config     string   // TOML run config
	output     string   // existing output directory
	thresholds []string // threshold tokens, kept verbatim for naming
	direction  string   // "less" or "greater"
	title      []string // title words, joined with spaces
	theme      string   // "d"/"dark" or "l"/"light"
	formats    []string // png, svg, pdf, json
	start      float64  // angle of the first node, degrees
	gap        float64  // extra arc at each group boundary, degrees
	split      []int    // explicit group boundaries
	noSplit    bool     // lay nodes out without any gap
	ccw        bool     // walk the circle counter-clockwise
	between    bool     // start angle falls between the first two nodes
	names      bool     // draw node labels
	size       int      // image edge length in pixels
	jobs       int      // thresholds rendered at once
	refresh    bool     // ignore cached artifacts
	cache      cacheOpts
}

// renderCommand creates the render command, the main entry point: one
// image per threshold from a matrix and its node metadata.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one circle graph per threshold",
		Long: `Render one circle graph per threshold.

The matrix is an N x N CSV whose rows and columns follow the natural order
of the node labels in the atlas CSV (ROI1, ROI2, ..., ROI10). Only the strictly
lower triangle is drawn. With --direction less (default) connections weaker
than the threshold are removed; with --direction greater, stronger ones are.

Each threshold writes <title>_CIRCLE_GRAPH_THR<threshold>.<format> into the
output directory. A threshold that fails is reported and the others still
complete; the command then exits with an error.

Settings can also come from a TOML file (--config); flags override it.`,
		Example: `  circlegraph render --mat group_a.csv --info atlas.csv --out figures -t 0.2,0.3 -g "Group A"
  circlegraph render --config run.toml -f svg,pdf --names`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, f.cache)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.matrix, "mat", "", "connectivity matrix CSV")
	fl.StringVar(&f.atlas, "info", "", "node metadata CSV (label, hemisphere, color)")
	fl.StringVar(&f.config, "config", "", "TOML run config")
	fl.StringVarP(&f.output, "out", "o", ".", "output directory (must exist)")
	fl.StringSliceVarP(&f.thresholds, "threshold", "t", nil, "threshold(s), repeatable or comma-separated (default 0)")
	fl.StringVar(&f.direction, "direction", pipeline.DefaultDirection, "remove connections: less (below threshold), greater (above)")
	fl.StringArrayVarP(&f.title, "title", "g", nil, "figure title (repeatable, words are joined)")
	fl.StringVar(&f.theme, "color", "d", "theme: d (dark), l (light)")
	fl.StringSliceVarP(&f.formats, "format", "f", nil, "output format(s): png (default), svg, pdf, json")
	fl.Float64Var(&f.start, "start", pipeline.DefaultStartAngle, "angle of the first node in degrees (90 = top)")
	fl.Float64Var(&f.gap, "gap", pipeline.DefaultGap, "extra gap at each group boundary in degrees")
	fl.IntSliceVar(&f.split, "split", nil, "group boundaries as node indices (default: hemisphere split)")
	fl.BoolVar(&f.noSplit, "no-split", false, "place all nodes evenly without group gaps")
	fl.BoolVar(&f.ccw, "counter-clockwise", false, "place nodes counter-clockwise")
	fl.BoolVar(&f.between, "between", false, "center the start angle between the first two nodes")
	fl.BoolVar(&f.names, "names", false, "draw node labels")
	fl.IntVar(&f.size, "size", pipeline.DefaultSize, "image edge length in pixels")
	fl.IntVarP(&f.jobs, "jobs", "j", 0, "thresholds rendered in parallel (default: number of CPUs)")
	fl.BoolVar(&f.refresh, "refresh", false, "re-render even when cached")
	f.cache.register(cmd)

	cmd.MarkFlagsMutuallyExclusive("split", "no-split")

	return cmd
}

// resolve merges the config file (if any) with the flags the user set.
func (f *renderFlags) resolve(cmd *cobra.Command) (runConfig, error) {
	var cfg runConfig
	if f.config != "" {
		var err error
		if cfg, err = loadConfig(f.config); err != nil {
			return runConfig{}, err
		}
	}

	set := cmd.Flags().Changed
	if set("mat") {
		cfg.Matrix = f.matrix
	}
	if set("info") {
		cfg.Atlas = f.atlas
	}
	if set("out") || cfg.OutputDir == "" {
		cfg.OutputDir = f.output
	}
	if set("threshold") {
		cfg.Thresholds = f.thresholds
	}
	if set("direction") {
		cfg.Direction = f.direction
	}
	if set("title") {
		cfg.Title = strings.Join(f.title, " ")
	}
	if set("color") {
		cfg.Theme = f.theme
	}
	if set("format") {
		cfg.Formats = f.formats
	}
	if set("start") {
		cfg.StartAngle = pipeline.Float(f.start)
	}
	if set("gap") {
		cfg.Gap = pipeline.Float(f.gap)
	}
	if set("split") {
		cfg.Boundaries = f.split
	}
	if f.noSplit {
		cfg.Boundaries = []int{}
	}
	if set("counter-clockwise") {
		cfg.CounterClockwise = f.ccw
	}
	if set("between") {
		cfg.StartBetween = f.between
	}
	if set("names") {
		cfg.ShowNames = f.names
	}
	if set("size") {
		cfg.Size = f.size
	}
	if set("jobs") {
		cfg.Concurrency = f.jobs
	}
	cfg.Refresh = f.refresh

	if cfg.Matrix == "" || cfg.Atlas == "" {
		return runConfig{}, errors.New(errors.ErrCodeInvalidInput, "both --mat and --info are required")
	}
	return cfg, nil
}

// runRender loads the inputs, runs every threshold and prints a summary.
// It fails if the inputs are invalid or if any threshold failed.
func (c *CLI) runRender(ctx context.Context, cfg runConfig, co cacheOpts) error {
	prog := newProgress(c.Logger)

	m, err := pkgio.ImportMatrixCSV(cfg.Matrix)
	if err != nil {
		return err
	}
	reg, err := pkgio.ImportAtlasCSV(cfg.Atlas)
	if err != nil {
		return err
	}
	rows, cols := m.Dims()
	c.Logger.Debug("loaded inputs", "matrix", cfg.Matrix, "rows", rows, "cols", cols, "nodes", reg.Len())

	runner, err := c.newRunner(ctx, co)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := cfg.Options
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering circle graphs...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeline.Input{Matrix: m, Registry: reg}, opts)
	if err != nil {
		spinner.StopWithError("Invalid input")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printResult(result)
	prog.done(fmt.Sprintf("Rendered %d threshold(s)", result.Stats.Succeeded))

	if result.Stats.Failed > 0 {
		return fmt.Errorf("%d of %d thresholds failed", result.Stats.Failed, len(result.Thresholds))
	}
	return nil
}

// printResult lists every threshold with its files, or its error.
func printResult(result *pipeline.Result) {
	for _, t := range result.Thresholds {
		if t.Err != nil {
			printError("%s %s", StyleValue.Render(t.Token), errors.UserMessage(t.Err))
			continue
		}
		printSuccess("%s", t.Name)
		for _, a := range t.Artifacts {
			if a.Path != "" {
				printFile(a.Path)
			}
		}
		printStats(result.Stats.Nodes, t.Edges, t.CacheHit)
	}
	if result.Stats.Failed > 0 {
		printNewline()
		printWarning("%d of %d thresholds failed", result.Stats.Failed, len(result.Thresholds))
	}
}
