package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/kitchendesigner/pkg/cache"
	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/extract"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/objective"
	"github.com/matzehuels/kitchendesigner/pkg/observability"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

// EngineFactory returns the engine for a resolved name.
type EngineFactory func(name string, logger *log.Logger) solver.Engine

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
	NewEngine EngineFactory

	// TTL is how long solutions stay cached. Zero means cache.TTLSolution.
	TTL time.Duration
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
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		NewEngine: solver.New,
	}
}

// Execute runs the complete preprocess → compile → solve → extract → render
// pipeline with solution caching.
func (r *Runner) Execute(ctx context.Context, doc *kio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.New().String(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash document")
	}
	result.DocumentHash = cache.Hash(data)

	// Stages 1 and 2: Preprocess and Compile
	model, err := r.compile(ctx, result.RunID, doc, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Model = *model

	// Stage 3: Solve
	solveStart := time.Now()
	sol, key, hit, err := r.SolveWithCacheInfo(ctx, result.RunID, result.DocumentHash, model, opts)
	result.Stats.SolveTime = time.Since(solveStart)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Solution = sol
	result.CacheInfo = CacheInfo{SolutionHit: hit, Key: key}

	m := model.Compiled.Model
	result.Stats.Objective = m.ObjectiveValue(sol)
	logger.Info("solved model",
		"engine", opts.Engine,
		"status", sol.Status,
		"objective", result.Stats.Objective,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	// Stage 4: Extract
	extractStart := time.Now()
	result.Extract = extract.Apply(model.Compiled, sol)
	result.Layout = kio.ExportLayout(model.Kitchen)
	values := m.Assignment(sol)
	result.Breakdown = model.Objective.Breakdown(values)
	if opts.Verify {
		result.Violations = m.Check(values, VerifyTolerance)
		for _, v := range result.Violations {
			logger.Warn("solution violates constraint", "constraint", v.String())
		}
	}
	result.Stats.ExtractTime = time.Since(extractStart)

	for _, id := range result.Extract.Ambiguous {
		logger.Warn("segment holds more than one fixture", "segment", id.Number())
	}
	logger.Info("extracted layout",
		"placed", result.Extract.Placed,
		"missing", result.Extract.Missing,
		"duration", result.Stats.ExtractTime)

	// Stage 5: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, err := Render(ctx, model.Kitchen, result.Layout, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)

		logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// Compile runs preprocessing and compilation only. The model is written to
// opts.ModelDump when set.
func (r *Runner) Compile(ctx context.Context, doc *kio.Document, opts Options) (*Model, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	var stats Stats
	return r.compile(ctx, uuid.New().String(), doc, opts, &stats)
}

func (r *Runner) compile(ctx context.Context, runID string, doc *kio.Document, opts Options, stats *Stats) (*Model, error) {
	logger := opts.Logger

	start := time.Now()
	in, err := doc.Input()
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	k, rep, err := preprocess.Run(in, preprocess.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	stats.PreprocessTime = time.Since(start)
	stats.Segments = len(k.Segments)
	stats.Fixtures = len(k.Fixtures)

	logger.Info("preprocessed kitchen",
		"parts", len(k.Parts),
		"segments", len(k.Segments),
		"fixtures", len(k.Fixtures),
		"excluded", rep.Excluded,
		"duration", stats.PreprocessTime)

	hooks := observability.Pipeline()
	hooks.OnCompileStart(ctx, runID, len(k.Segments), len(k.Fixtures))

	start = time.Now()
	res, err := compile.Compile(k, compile.Options{Families: opts.CompileFamilies(), Logger: logger})
	var obj *objective.Objective
	if err == nil {
		obj, err = objective.Build(res, *opts.Weights)
	}
	stats.CompileTime = time.Since(start)
	if err != nil {
		hooks.OnCompileComplete(ctx, runID, 0, 0, stats.CompileTime, err)
		return nil, fmt.Errorf("compile: %w", err)
	}
	stats.Model = res.Model.Stats()
	hooks.OnCompileComplete(ctx, runID, stats.Model.Variables, stats.Model.Constraints, stats.CompileTime, nil)

	logger.Info("compiled model",
		"variables", stats.Model.Variables,
		"constraints", stats.Model.Constraints,
		"objective_terms", len(obj.Terms),
		"duration", stats.CompileTime)

	if opts.ModelDump != "" {
		if err := DumpModel(opts.ModelDump, res.Model); err != nil {
			return nil, fmt.Errorf("model dump: %w", err)
		}
		logger.Info("wrote model", "path", opts.ModelDump)
	}

	return &Model{Kitchen: k, Compiled: res, Objective: obj, Preprocess: rep}, nil
}

// SolveWithCacheInfo solves the compiled model, reusing a cached solution
// of the same document and settings unless opts.Refresh is set. Only
// optimal solutions are cached.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, runID, documentHash string, model *Model, opts Options) (*milp.Solution, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	cacheHooks := observability.Cache()
	key := r.Keyer.SolutionKey(documentHash, opts.SolutionKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		if err == nil && hit {
			var sol milp.Solution
			if err := json.Unmarshal(data, &sol); err == nil && sol.Status.HasValues() {
				cacheHooks.OnCacheHit(ctx, "solution")
				return &sol, key, true, nil
			}
			// A corrupt entry is recomputed.
		}
		cacheHooks.OnCacheMiss(ctx, "solution")
	}

	engine := r.NewEngine(opts.Engine, opts.Logger)
	hooks := observability.Pipeline()
	hooks.OnSolveStart(ctx, runID, engine.Name())

	start := time.Now()
	sol, err := solver.Solve(ctx, engine, model.Compiled.Model, opts.SolverOptions())
	status := ""
	if sol != nil {
		status = string(sol.Status)
	}
	hooks.OnSolveComplete(ctx, runID, engine.Name(), status, time.Since(start), err)
	if err != nil {
		return nil, key, false, err
	}

	if sol.Status == milp.StatusOptimal {
		if data, err := json.Marshal(sol); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				cacheHooks.OnCacheSet(ctx, "solution", len(data))
			}
		}
	}
	return sol, key, false, nil
}

// DumpModel writes m to path: free MPS for a .mps extension, CPLEX LP
// otherwise.
func DumpModel(path string, m *milp.Model) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	var buf bytes.Buffer
	var err error
	if strings.EqualFold(filepath.Ext(path), ".mps") {
		err = m.WriteMPS(&buf)
	} else {
		err = m.WriteLP(&buf)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLSolution
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
