package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/formflow/formdef"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a form definition file",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().Bool("strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	out := cmd.OutOrStdout()

	fd, err := loadDefinition(filePath)
	if err != nil {
		return err
	}

	diags := fd.Validate()
	printDiagnostics(out, diags, format)

	hasErrs := formdef.HasErrors(diags)
	hasWarns := len(formdef.Warnings(diags)) > 0

	if hasErrs || (strict && hasWarns) {
		return exitError(exitValidation, "validation failed")
	}
	return nil
}

func loadDefinition(path string) (*formdef.FormDefinition, error) {
	fd, err := formdef.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitError(exitFileNotFound, "file not found: %s", path)
		}
		return nil, exitError(exitInputParse, "loading %s: %s", path, err)
	}
	return fd, nil
}

func printDiagnostics(out io.Writer, diags []formdef.Diagnostic, format string) {
	if format == "json" {
		payload := map[string]any{
			"diagnostics": diags,
			"errors":      len(formdef.Errors(diags)),
			"warnings":    len(formdef.Warnings(diags)),
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(out, string(data))
		return
	}

	if len(diags) == 0 {
		fmt.Fprintln(out, "OK: no issues found")
		return
	}
	for _, d := range diags {
		if d.Path != "" {
			fmt.Fprintf(out, "%s [%s] %s (%s)\n", d.Severity, d.Code, d.Message, d.Path)
		} else {
			fmt.Fprintf(out, "%s [%s] %s\n", d.Severity, d.Code, d.Message)
		}
	}
	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(formdef.Errors(diags)), len(formdef.Warnings(diags)))
}
