package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/petal-labs/formflow"
	"github.com/petal-labs/formflow/condition"
	"github.com/petal-labs/formflow/formdef"
)

// NewNextCmd creates the "next" subcommand.
func NewNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next <file>",
		Short: "Resolve the next block for an answer",
		Args:  cobra.ExactArgs(1),
		RunE:  runNext,
	}

	cmd.Flags().String("block", "", "ID of the block just answered (required)")
	cmd.Flags().String("answer", "", "Answer value (numeric-looking answers compare as numbers)")
	cmd.Flags().StringSlice("selected", nil, "Selected option values for choice blocks")
	cmd.Flags().String("sentiment", "", "Precomputed sentiment score")
	_ = cmd.MarkFlagRequired("block")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	blockID, _ := cmd.Flags().GetString("block")
	out := cmd.OutOrStdout()

	fd, err := loadDefinition(filePath)
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
	if _, ok := g.Block(blockID); !ok {
		return exitError(exitValidation, "block not found: %s", blockID)
	}

	ans, err := answerFromFlags(cmd)
	if err != nil {
		return err
	}

	conn, _ := g.Connection(blockID)
	d := formflow.Resolve(conn, ans)

	switch d.Kind {
	case formflow.DecisionTarget:
		if d.RuleID != "" {
			fmt.Fprintf(out, "next: %s (rule %s)\n", d.TargetID, d.RuleID)
		} else {
			fmt.Fprintf(out, "next: %s (default)\n", d.TargetID)
		}
	case formflow.DecisionEnd:
		fmt.Fprintln(out, "end of form")
	}
	return nil
}

func answerFromFlags(cmd *cobra.Command) (condition.Answer, error) {
	selected, _ := cmd.Flags().GetStringSlice("selected")
	raw, _ := cmd.Flags().GetString("answer")
	sentimentRaw, _ := cmd.Flags().GetString("sentiment")

	var ans condition.Answer
	if len(selected) > 0 {
		ans = condition.Selections(selected...)
	} else {
		ans = condition.Text(raw)
	}

	if sentimentRaw != "" {
		score, err := strconv.ParseFloat(sentimentRaw, 64)
		if err != nil {
			return condition.Answer{}, exitError(exitInputParse, "invalid sentiment score %q", sentimentRaw)
		}
		ans.Sentiment = &score
	}
	return ans, nil
}
