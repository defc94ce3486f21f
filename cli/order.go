package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/formflow/authoring"
	"github.com/petal-labs/formflow/formdef"
)

// NewOrderCmd creates the "order" subcommand.
func NewOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <file>",
		Short: "Print the canonical display ordering of blocks",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrder,
	}
}

func runOrder(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fd, err := loadDefinition(args[0])
	if err != nil {
		return err
	}
	if diags := fd.Validate(); formdef.HasErrors(diags) {
		return exitError(exitValidation, "definition has %d validation error(s); run validate", len(formdef.Errors(diags)))
	}
	g, err := fd.ToGraph()
	if err != nil {
		return exitError(exitInputParse, "building graph: %s", err)
	}

	for _, ob := range authoring.ComputeOrder(g) {
		title := ""
		if b, ok := g.Block(ob.BlockID); ok && b.Title != "" {
			title = "  " + b.Title
		}
		if ob.Disconnected {
			fmt.Fprintf(out, "%3d  %s%s  (disconnected)\n", ob.Index, ob.BlockID, title)
			continue
		}
		fmt.Fprintf(out, "%3d  %s%s\n", ob.Index, ob.BlockID, title)
	}
	return nil
}
