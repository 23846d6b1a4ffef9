package cli

import (
	"context"

	"github.com/spf13/cobra"

	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
)

// validateCommand creates the validate command, which checks a document
// and compiles it without solving.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [kitchen.json|kitchen.toml]",
		Short: "Check a kitchen document without solving it",
		Long: `Check a kitchen document without solving it.

The document is decoded, its settings and references are checked, and the
model is compiled. Every configuration problem found is reported at once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runValidate(cmd.Context(), args[0], baseOptions(cfg))
		},
	}
}

func (c *CLI) runValidate(ctx context.Context, input string, opts pipeline.Options) error {
	doc, err := kio.Load(input)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		printError("%s is invalid", input)
		return err
	}

	opts.Logger = c.Logger
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	model, err := runner.Compile(ctx, doc, opts)
	if err != nil {
		printError("%s does not compile", input)
		return err
	}

	stats := model.Compiled.Model.Stats()
	printSuccess("%s is valid", input)
	printDetail("%d parts · %d segments · %d fixtures", len(model.Kitchen.Parts), len(model.Kitchen.Segments), len(model.Kitchen.Fixtures))
	printDetail("%d variables (%d binary) · %d constraints", stats.Variables, stats.Binaries, stats.Constraints)
	return nil
}
