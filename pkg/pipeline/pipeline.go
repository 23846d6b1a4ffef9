// Package pipeline runs a kitchen document through the whole layout
// pipeline.
//
// This package implements the complete document → model → solution →
// drawing flow used by the CLI and the HTTP API. By centralizing it, both
// entry points share caching, logging and error wrapping.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Preprocess: instantiate the fixture catalog and discretise the parts
//  2. Compile: build the constraint families and the weighted objective
//  3. Solve: run an external engine, or reuse a cached solution
//  4. Extract: write widths, fixtures and paddings back onto the kitchen
//  5. Render: produce the requested output formats
//
// Errors keep their codes through the stage wrapping, so callers can use
// [errors.Is] and [errors.GetCode] on whatever [Runner.Execute] returns.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, err := io.Load("kitchen.json")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Engine:  "cbc",
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run the model stages only, e.g. to dump or inspect a model:
//
//	model, err := runner.Compile(ctx, doc, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/cache"
	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/extract"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/objective"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
	"github.com/matzehuels/kitchendesigner/pkg/render/sink"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTimeLimit bounds a solve when the caller sets none.
	DefaultTimeLimit = 5 * time.Minute

	// VerifyTolerance is the slack allowed when re-checking a solution
	// against the model.
	VerifyTolerance = 1e-4
)

// DefaultView is the default drawing projection.
const DefaultView = string(plan.Floor)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = sink.FormatSVG
	FormatPDF  = sink.FormatPDF
	FormatDXF  = sink.FormatDXF
	FormatXLSX = sink.FormatXLSX
	FormatPNG  = sink.FormatPNG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatDXF:  true,
	FormatXLSX: true,
	FormatPNG:  true,
}

// FormatNames lists the output formats in display order.
var FormatNames = []string{FormatJSON, FormatSVG, FormatPDF, FormatDXF, FormatXLSX, FormatPNG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	Engine    string             `json:"engine,omitempty"`
	TimeLimit time.Duration      `json:"time_limit,omitempty"`
	Families  []string           `json:"families,omitempty"` // empty means all
	Weights   *objective.Weights `json:"weights,omitempty"`  // nil means defaults
	Refresh   bool               `json:"refresh,omitempty"`  // ignore cached solutions
	Verify    bool               `json:"verify,omitempty"`   // re-check the solution against the model

	// Render options
	Formats []string `json:"formats,omitempty"`
	View    string   `json:"view,omitempty"`

	// Runtime options (not serialized)
	ModelDump string      `json:"-"` // write the compiled model here (.mps or .lp)
	WorkDir   string      `json:"-"`
	KeepFiles bool        `json:"-"`
	Logger    *log.Logger `json:"-"`

	families []compile.Family
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Model is the output of the model stages.
type Model struct {
	Kitchen    *kitchen.Kitchen
	Compiled   *compile.Result
	Objective  *objective.Objective
	Preprocess preprocess.Report
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// DocumentHash is the content hash of the input document.
	DocumentHash string

	Model

	// Solution is the engine's answer, from the cache or a fresh solve.
	Solution *milp.Solution

	// Layout is the output document.
	Layout kio.Layout

	// Breakdown evaluates each objective term under the solution.
	Breakdown []objective.Contribution

	// Extract reports ambiguous or missing values.
	Extract extract.Report

	// Violations lists the constraints the solution breaks; only filled
	// when Options.Verify is set.
	Violations []milp.Violation

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Segments       int
	Fixtures       int
	Model          milp.Stats
	Objective      float64
	PreprocessTime time.Duration
	CompileTime    time.Duration
	SolveTime      time.Duration
	ExtractTime    time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolutionHit bool   // whether the solution came from the cache
	Key         string // solution cache key
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidSettings, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a drawing view is valid.
func ValidateView(view string) error {
	if _, err := plan.ParseView(view); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "invalid view")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	// An unknown engine falls back to the default with a warning.
	o.Engine = solver.Resolve(o.Engine, o.Logger)
	if o.TimeLimit < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "time limit must not be negative")
	}
	if o.TimeLimit == 0 {
		o.TimeLimit = DefaultTimeLimit
	}

	o.families = o.families[:0]
	for _, name := range o.Families {
		f, err := compile.ParseFamily(name)
		if err != nil {
			return err
		}
		o.families = append(o.families, f)
	}

	if o.Weights == nil {
		w := objective.DefaultWeights()
		o.Weights = &w
	}
	if err := o.Weights.Validate(); err != nil {
		return err
	}

	if o.View == "" {
		o.View = DefaultView
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// CompileFamilies returns the constraint families to build, closed over
// their dependencies.
func (o *Options) CompileFamilies() []compile.Family {
	return compile.Resolve(o.families)
}

// SolutionKeyOpts returns cache key options for a solve.
func (o *Options) SolutionKeyOpts() cache.SolutionKeyOpts {
	fams := o.CompileFamilies()
	names := make([]string, len(fams))
	for i, f := range fams {
		names[i] = string(f)
	}
	slices.Sort(names)
	return cache.SolutionKeyOpts{
		Engine:   o.Engine,
		Families: names,
		Weights:  o.Weights,
	}
}

// SolverOptions returns the options passed to the engine.
func (o *Options) SolverOptions() solver.Options {
	return solver.Options{
		TimeLimit: o.TimeLimit,
		WorkDir:   o.WorkDir,
		KeepFiles: o.KeepFiles,
		Logger:    o.Logger,
	}
}

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("engine=%s time_limit=%s families=%d formats=%v", o.Engine, o.TimeLimit, len(o.CompileFamilies()), o.Formats)
}
