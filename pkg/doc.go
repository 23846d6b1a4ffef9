// Package pkg provides the core libraries for Kitchendesigner fixture layout.
//
// # Overview
//
// Kitchendesigner places kitchen fixtures (sinks, hobs, cupboards, dishwashers)
// along the parts of a kitchen (counter runs, upper cabinet rows, tall units).
// Each part is cut into slots; a mixed-integer linear program decides which
// fixture occupies which slot and how wide every slot becomes. The pkg
// directory is organized into four areas:
//
//  1. Domain: [kitchen], [io], [preprocess]
//  2. Model: [milp], [compile], [objective]
//  3. Solving: [solver], [extract]
//  4. Infrastructure: [pipeline], [cache], [config], [render], [observability]
//
// # Architecture
//
// The data flow through Kitchendesigner:
//
//	kitchen document (JSON or TOML)
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [preprocess] package (instantiate catalog, cut segments)
//	         ↓
//	    [compile] + [objective] packages (constraints + weighted goal)
//	         ↓
//	    [solver] package (glpk, cbc, highs, scip)
//	         ↓
//	    [extract] package (write the solution back)
//	         ↓
//	    layout JSON / SVG / PDF / DXF / XLSX / PNG
//
// # Quick Start
//
// Run the whole pipeline with solution caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	doc, err := io.Load("kitchen.json")
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Engine:  "cbc",
//	    Formats: []string{"json", "svg"},
//	})
//
// Or drive the stages yourself:
//
//	in, _ := doc.Input()
//	k, _, _ := preprocess.Run(in, preprocess.Options{})
//	res, _ := compile.Compile(k, compile.Options{})
//	obj, _ := objective.Build(res, objective.DefaultWeights())
//	sol, err := solver.Solve(ctx, solver.New("glpk", logger), res.Model, solver.Options{})
//	report := extract.Apply(res, sol)
//
// # Main Packages
//
// ## Domain
//
// [kitchen] - The in-memory kitchen: parts, segments, fixtures, zones, walls,
// corners and the placement and relation rules between them.
//
// [io] - The kitchen document and layout document formats, their validation
// and the conversion into preprocessing input.
//
// [preprocess] - Fixture catalog instantiation, kitchen-wide rule discharge
// and segmentation of every part.
//
// ## Model
//
// [milp] - A solver-neutral MILP model with LP and MPS writers, solution
// assignment and constraint checking.
//
// [compile] - The constraint families: assignment, symmetry breaking, widths,
// geometry, groups, tall units, placement rules, patterns, distances,
// continuity, relations and corners.
//
// [objective] - The weighted sum of layout goals and its per-term breakdown.
//
// ## Solving
//
// [solver] - Engine adapters that run an external MILP solver and parse its
// solution file.
//
// [extract] - Reads a solution back onto the kitchen.
//
// ## Infrastructure
//
// [pipeline] - The complete document → layout flow used by CLI and API.
//
// [cache] - Solution caching with file, Redis and MongoDB backends.
//
// [config] - The TOML settings file.
//
// [render] - Plans, drawings and model structure graphs.
//
// [observability] - Hooks for compile, solve, cache and request events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/compile/...      # Specific package
//
// [kitchen]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/kitchen
// [io]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/io
// [preprocess]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/preprocess
// [milp]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/milp
// [compile]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/compile
// [objective]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/objective
// [solver]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/solver
// [extract]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/extract
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/kitchendesigner/pkg/observability
package pkg
