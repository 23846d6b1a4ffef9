package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
	"github.com/matzehuels/kitchendesigner/pkg/render/structure"
)

// modelFlags holds the command-line flags for the model command.
type modelFlags struct {
	families string // constraint families to compile (comma-separated)
	output   string // write the model as .lp or .mps
	graph    string // write the structure graph as .dot or .svg
	detailed bool   // list variable names per family
}

// modelCommand creates the model command for inspecting a compiled model.
func (c *CLI) modelCommand() *cobra.Command {
	var flags modelFlags

	cmd := &cobra.Command{
		Use:   "model [kitchen.json|kitchen.toml]",
		Short: "Compile a kitchen and inspect the model",
		Long: `Compile a kitchen and inspect the model.

Prints the rows and columns each constraint family contributes. With
--output the model is written in LP or MPS format (chosen by extension)
for use with any MILP engine. With --graph the coupling between constraint
and variable families is written as Graphviz DOT or rendered to SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := baseOptions(cfg)
			if cmd.Flags().Changed("families") {
				opts.Families = parseList(flags.families)
			}
			opts.ModelDump = flags.output
			return c.runModel(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.families, "families", "", "constraint families to compile, comma-separated (default all)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the model to this .lp or .mps file")
	cmd.Flags().StringVarP(&flags.graph, "graph", "g", "", "write the structure graph to this .dot or .svg file")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "list variable names per family")

	return cmd
}

func (c *CLI) runModel(ctx context.Context, input string, opts pipeline.Options, flags modelFlags) error {
	doc, err := kio.Load(input)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(c.Logger)
	model, err := runner.Compile(ctx, doc, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %s", input))

	m := model.Compiled.Model
	sopts := structure.Options{Detailed: flags.detailed}
	if err := structure.WriteText(stdout, m, sopts); err != nil {
		return err
	}

	if flags.output != "" {
		printFile(flags.output)
	}
	if flags.graph != "" {
		if err := writeGraph(ctx, flags.graph, structure.ToDOT(m, sopts)); err != nil {
			return err
		}
		printFile(flags.graph)
	}
	return nil
}

// writeGraph writes DOT source, or the laid-out SVG when path ends in .svg.
func writeGraph(ctx context.Context, path, dot string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data := []byte(dot)
	switch filepath.Ext(path) {
	case ".dot", ".gv":
	case ".svg":
		svg, err := structure.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render graph: %w", err)
		}
		data = svg
	default:
		return errors.New(errors.ErrCodeInvalidSettings, "graph output %q must end in .dot, .gv or .svg", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
