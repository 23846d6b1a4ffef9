package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
)

// renderCommand creates the render command, which draws a saved layout
// without solving again.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		view       string
	)

	cmd := &cobra.Command{
		Use:   "render [kitchen.json] [layout.json]",
		Short: "Draw a saved layout",
		Long: `Draw a saved layout.

The render command takes the kitchen document and a layout produced by
'solve', lays the layout onto the kitchen and renders it to svg, pdf, dxf,
xlsx or png. The layout contains all placements, so no engine is needed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: parseList(formatsStr), View: view}
			if len(opts.Formats) == 0 {
				opts.Formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateView(opts.View); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], args[1], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), pdf, dxf, xlsx, png (comma-separated)")
	cmd.Flags().StringVar(&view, "view", pipeline.DefaultView, "drawing projection: floor, strips")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, layoutPath string, opts pipeline.Options, output string) error {
	doc, err := kio.Load(input)
	if err != nil {
		return err
	}
	layout, err := kio.LoadLayout(layoutPath)
	if err != nil {
		return err
	}

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)
	artifacts, err := pipeline.RenderLayout(ctx, doc, layout, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %s", layoutPath))

	paths, err := writeArtifacts(artifacts, opts.Formats, layoutPath, output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
