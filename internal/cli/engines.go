package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

// enginesCommand lists the known engines and whether their executables are
// installed.
func (c *CLI) enginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List solver engines and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range solver.Names {
				label := name
				if name == solver.Default {
					label += StyleDim.Render(" (default)")
				}
				if solver.Available(name) {
					printSuccess("%s", label)
				} else {
					printWarning("%s not found on PATH", name)
				}
			}
			return nil
		},
	}
}
