package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
	"github.com/matzehuels/kitchendesigner/pkg/render/structure"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

// solveFlags holds the command-line flags for the solve command.
type solveFlags struct {
	engine    string        // engine name, overrides the settings file
	timeout   time.Duration // engine time limit
	families  string        // constraint families to compile (comma-separated)
	formats   string        // output formats (comma-separated)
	output    string        // output file or base path
	view      string        // drawing projection
	model     string        // write the compiled model here
	workDir   string        // engine scratch directory
	keepFiles bool          // keep engine input and output files
	noCache   bool          // disable the solution cache
	refresh   bool          // ignore cached solutions
	verify    bool          // re-check the solution against the model
	show      bool          // print the layout table
	breakdown bool          // print the objective breakdown
	structure bool          // print the constraint family structure
}

// solveCommand creates the solve command: document in, layout and drawings out.
func (c *CLI) solveCommand() *cobra.Command {
	var flags solveFlags

	cmd := &cobra.Command{
		Use:   "solve [kitchen.json|kitchen.toml]",
		Short: "Compute a fixture layout for a kitchen",
		Long: `Compute a fixture layout for a kitchen.

The solve command compiles the kitchen into a MILP model, runs the selected
engine and writes the layout document next to the input (kitchen-layout.json)
or to --output. Additional formats such as svg, pdf, dxf, xlsx or png are
written with the same base path.

Optimal solutions are cached; --refresh re-solves and --no-cache disables
the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := baseOptions(cfg)
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), args[0], opts, flags, func(ctx context.Context) (*pipeline.Runner, error) {
				return c.newRunner(ctx, cfg, flags.noCache)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.engine, "solver", "s", solver.Default, fmt.Sprintf("engine: %v", solver.Names))
	cmd.Flags().DurationVar(&flags.timeout, "timeout", pipeline.DefaultTimeLimit, "engine time limit")
	cmd.Flags().StringVar(&flags.families, "families", "", "constraint families to compile, comma-separated (default all)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", pipeline.FormatJSON, fmt.Sprintf("output format(s): %v (comma-separated)", pipeline.FormatNames))
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&flags.view, "view", pipeline.DefaultView, "drawing projection: floor, strips")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "write the compiled model to this .lp or .mps file")
	cmd.Flags().StringVar(&flags.workDir, "work-dir", "", "directory for engine scratch files")
	cmd.Flags().BoolVar(&flags.keepFiles, "keep-files", false, "keep engine scratch files")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the solution cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached solutions")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "check the solution against every constraint")
	cmd.Flags().BoolVar(&flags.show, "show", false, "print the layout as a table")
	cmd.Flags().BoolVar(&flags.breakdown, "breakdown", false, "print the objective terms")
	cmd.Flags().BoolVar(&flags.structure, "structure", false, "print the variable families each constraint family references")

	return cmd
}

// apply writes the flags onto opts. Flags left at their defaults keep the
// values from the settings file.
func (f *solveFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed
	if changed("solver") {
		opts.Engine = f.engine
	}
	if changed("timeout") {
		opts.TimeLimit = f.timeout
	}
	if changed("families") {
		opts.Families = parseList(f.families)
	}
	if changed("keep-files") {
		opts.KeepFiles = f.keepFiles
	}
	opts.Formats = parseList(f.formats)
	opts.View = f.view
	opts.ModelDump = f.model
	opts.WorkDir = f.workDir
	opts.Refresh = f.refresh
	opts.Verify = f.verify

	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	return pipeline.ValidateView(opts.View)
}

// runSolve loads the document, runs the pipeline and writes the outputs.
func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, flags solveFlags, newRunner func(context.Context) (*pipeline.Runner, error)) error {
	doc, err := kio.Load(input)
	if err != nil {
		return err
	}

	runner, err := newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	c.Logger.Debug("solve", "input", input, "options", opts.String())

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Solving with %s...", opts.Engine))
	spinner.Start()

	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return err
	}
	spinner.Stop()

	printSuccess("Solved %s %s", input, StyleDim.Render(fmt.Sprintf("(%s)", prog.elapsed())))
	printKeyValue("Engine", opts.Engine)
	printKeyValue("Status", string(res.Solution.Status))
	printKeyValue("Objective", StyleNumber.Render(fmt.Sprintf("%.4f", res.Stats.Objective)))
	printStats(res)

	for _, id := range res.Extract.Ambiguous {
		printWarning("segment %d holds more than one fixture", id.Number())
	}
	if len(res.Violations) > 0 {
		printWarning("solution violates %d constraints", len(res.Violations))
		for _, v := range res.Violations {
			printDetail("%s", v.String())
		}
	} else if opts.Verify {
		printSuccess("Solution satisfies every constraint")
	}

	if flags.structure {
		if err := structure.WriteText(stdout, res.Compiled.Model, structure.Options{}); err != nil {
			return err
		}
	}
	if flags.show {
		printBlock(layoutTable(res.Layout))
	}
	if flags.breakdown {
		printBlock(breakdownTable(res.Breakdown))
	}

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, input, flags.output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	if opts.ModelDump != "" {
		printFile(opts.ModelDump)
	}

	if len(res.Violations) > 0 {
		return errors.New(errors.ErrCodeModelInvariant, "solution violates %d constraints", len(res.Violations))
	}
	return nil
}
