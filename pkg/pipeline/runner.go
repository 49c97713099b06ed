package pipeline

import (
	"context"
	"encoding/binary"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/cache"
	"github.com/matzehuels/circlegraph/pkg/circular"
	"github.com/matzehuels/circlegraph/pkg/connectivity"
	"github.com/matzehuels/circlegraph/pkg/errors"
	pkgio "github.com/matzehuels/circlegraph/pkg/io"
	"github.com/matzehuels/circlegraph/pkg/observability"
	"github.com/matzehuels/circlegraph/pkg/render"
	"github.com/matzehuels/circlegraph/pkg/sequence"
)

// Input is the data of one run. Neither field is modified.
type Input struct {
	// Matrix is the N x N connectivity matrix, indexed by the natural-sorted
	// registry labels.
	Matrix *mat.Dense
	// Registry holds the metadata of all N nodes.
	Registry *atlas.Registry
}

// Plan is the threshold-independent part of a run.
type Plan struct {
	// Order holds the matrix index order and the circular display order.
	Order sequence.Order
	// Boundaries are the group boundaries the layout used.
	Boundaries []int
	// Layout assigns an angle to every node.
	Layout *circular.Assignment
	// LabelColors are the node colors, index-aligned with Order.Labels.
	LabelColors []atlas.Color
	// InputHash identifies the matrix and metadata for cache keys.
	InputHash string
}

// Artifact is one rendered output file.
type Artifact struct {
	Format   render.Format
	Data     []byte
	Path     string // set when the artifact was written to disk
	CacheHit bool
}

// ThresholdResult is the outcome of one threshold.
type ThresholdResult struct {
	Token     string
	Value     float64
	Name      string
	Reduced   *mat.Dense
	Edges     int
	Artifacts []Artifact
	CacheHit  bool // every artifact came from the cache
	Err       error
	Duration  time.Duration
}

// Result contains the outputs of a run.
type Result struct {
	RunID      string
	Plan       *Plan
	Thresholds []ThresholdResult
	Stats      Stats
}

// Stats contains run statistics.
type Stats struct {
	Nodes       int
	Succeeded   int
	Failed      int
	CacheHits   int
	PrepareTime time.Duration
	TotalTime   time.Duration
}

// Err joins the errors of all failed thresholds, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, t := range r.Thresholds {
		if t.Err != nil {
			errs = append(errs, fmt.Errorf("threshold %s: %w", t.Token, t.Err))
		}
	}
	return stderrors.Join(errs...)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different inputs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Prepare validates the inputs and computes the threshold-independent plan.
// Every error it returns is structural.
func (r *Runner) Prepare(ctx context.Context, in Input, opts Options) (*Plan, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.prepare(ctx, in, opts)
}

func (r *Runner) prepare(ctx context.Context, in Input, opts Options) (plan *Plan, err error) {
	if in.Registry == nil || in.Matrix == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "matrix and node metadata are required")
	}
	n := in.Registry.Len()
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnPrepareStart(ctx, n)
	defer func() { hooks.OnPrepareComplete(ctx, n, time.Since(start), err) }()

	rows, cols := in.Matrix.Dims()
	if rows != cols {
		return nil, errors.New(errors.ErrCodeShape, "matrix is %dx%d, must be square", rows, cols)
	}
	if rows != n {
		return nil, errors.New(errors.ErrCodeShape, "matrix is %dx%d but metadata lists %d nodes", rows, cols, n)
	}

	order, err := sequence.Build(in.Registry.Labels(), in.Registry)
	if err != nil {
		return nil, err
	}

	boundaries := opts.Boundaries
	if boundaries == nil {
		boundaries = order.Boundaries()
	}
	asg, err := circular.Layout(order.Nodes, boundaries, opts.LayoutOptions())
	if err != nil {
		return nil, err
	}

	colors, err := in.Registry.Colors(order.Labels)
	if err != nil {
		return nil, err
	}

	plan = &Plan{
		Order:       order,
		Boundaries:  asg.Boundaries,
		Layout:      asg,
		LabelColors: colors,
		InputHash:   hashInput(in.Matrix, in.Registry, order.Labels),
	}
	opts.Logger.Debug("prepared layout",
		"nodes", n,
		"left", order.Left,
		"right", order.Right,
		"boundaries", plan.Boundaries,
		"step", asg.Step)
	return plan, nil
}

// Execute runs the whole batch. A non-nil error means the inputs are
// structurally invalid and no threshold was processed; per-threshold
// failures are reported in Result.Thresholds (see Result.Err).
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runStart := time.Now()
	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	plan, err := r.prepare(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.Stats.Nodes = plan.Order.Len()
	result.Stats.PrepareTime = time.Since(runStart)

	tasks := thresholdTasks(opts.Thresholds)
	for _, t := range tasks {
		if t.dupOf != "" {
			logger.Warn("skipping duplicate threshold", "threshold", t.token, "same_as", t.dupOf)
		}
	}
	tasks = unique(tasks)
	result.Thresholds = make([]ThresholdResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			// Failures are stored per threshold; returning nil keeps
			// siblings running.
			result.Thresholds[i] = r.runThreshold(ctx, in, plan, t, opts, logger)
			return nil
		})
	}
	_ = g.Wait()

	for _, t := range result.Thresholds {
		switch {
		case t.Err != nil:
			result.Stats.Failed++
		default:
			result.Stats.Succeeded++
		}
		if t.CacheHit {
			result.Stats.CacheHits++
		}
	}
	result.Stats.TotalTime = time.Since(runStart)

	logger.Info("batch complete",
		"thresholds", len(result.Thresholds),
		"failed", result.Stats.Failed,
		"duration", result.Stats.TotalTime)
	return result, nil
}

type thresholdTask struct {
	token string
	value float64
	err   error
	dupOf string
}

// thresholdTasks parses tokens, marking repeats of an already requested
// value. Unparseable tokens are kept as tasks that fail on their own.
func thresholdTasks(tokens []string) []thresholdTask {
	seen := make(map[float64]string, len(tokens))
	tasks := make([]thresholdTask, 0, len(tokens))
	for _, tok := range tokens {
		v, err := connectivity.ParseThreshold(tok)
		t := thresholdTask{token: tok, value: v, err: err}
		if err == nil {
			if first, ok := seen[v]; ok {
				t.dupOf = first
			} else {
				seen[v] = tok
			}
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func unique(tasks []thresholdTask) []thresholdTask {
	out := tasks[:0]
	for _, t := range tasks {
		if t.dupOf == "" {
			out = append(out, t)
		}
	}
	return out
}

// runThreshold reduces and renders one threshold. It never panics on bad
// input and never touches state shared with other thresholds except the
// cache, which is safe for concurrent use.
func (r *Runner) runThreshold(ctx context.Context, in Input, plan *Plan, t thresholdTask, opts Options, logger *log.Logger) (res ThresholdResult) {
	hooks := observability.Pipeline()
	start := time.Now()
	res = ThresholdResult{Token: t.token, Value: t.value}
	hooks.OnThresholdStart(ctx, t.token)
	defer func() {
		res.Duration = time.Since(start)
		hooks.OnThresholdComplete(ctx, t.token, res.Edges, res.Duration, res.Err)
		if res.Err != nil {
			logger.Error("threshold failed", "threshold", t.token, "error", res.Err)
		} else {
			logger.Info("threshold done",
				"threshold", t.token,
				"edges", res.Edges,
				"cached", res.CacheHit,
				"duration", res.Duration)
		}
	}()

	if t.err != nil {
		res.Err = t.err
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	reduced, err := connectivity.Reduce(in.Matrix, t.value, opts.direction())
	if err != nil {
		res.Err = err
		return res
	}
	res.Reduced = reduced
	res.Edges = len(connectivity.Edges(reduced))
	res.Name = ArtifactName(opts.Title, t.value)

	var scene *render.Scene
	res.CacheHit = true
	for _, f := range opts.formats() {
		key := r.Keyer.ArtifactKey(plan.InputHash, opts.ArtifactKeyOpts(f, t.value, plan.Boundaries))
		a := Artifact{Format: f}

		if data, ok := r.cacheGet(ctx, key, opts.Refresh); ok {
			a.Data, a.CacheHit = data, true
		} else {
			res.CacheHit = false
			if scene == nil {
				scene, err = render.NewScene(plan.Order, plan.Layout, in.Registry, reduced, opts.RenderOptions())
				if err != nil {
					res.Err = fmt.Errorf("scene: %w", err)
					return res
				}
			}
			a.Data, err = r.renderFormat(ctx, scene, f)
			if err != nil {
				res.Err = fmt.Errorf("render %s: %w", f, err)
				return res
			}
			r.cacheSet(ctx, key, a.Data)
		}

		if opts.OutputDir != "" {
			a.Path, err = pkgio.WriteArtifact(opts.OutputDir, res.Name, string(f), a.Data)
			if err != nil {
				res.Err = err
				return res
			}
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	if len(res.Artifacts) == 0 {
		res.CacheHit = false
	}
	return res
}

func (r *Runner) renderFormat(ctx context.Context, scene *render.Scene, f render.Format) (data []byte, err error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, string(f))
	defer func() { hooks.OnRenderComplete(ctx, string(f), len(data), time.Since(start), err) }()
	return render.Render(ctx, scene, f)
}

func (r *Runner) cacheGet(ctx context.Context, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")
	return nil, false
}

func (r *Runner) cacheSet(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Debug("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// hashInput fingerprints the matrix values and the node metadata.
func hashInput(m *mat.Dense, reg *atlas.Registry, labels []string) string {
	rows, cols := m.Dims()
	buf := make([]byte, 0, 16+8*rows*cols)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(rows))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(cols))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(m.At(i, j)))
		}
	}
	nodes := make([]atlas.Node, 0, len(labels))
	for _, l := range labels {
		n, _ := reg.Lookup(l)
		nodes = append(nodes, n)
	}
	meta, _ := json.Marshal(nodes)
	return cache.Hash(append(buf, meta...))
}
