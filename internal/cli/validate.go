package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoobzio/cubeql"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
}

// CubeSummary describes one resolved cube.
type CubeSummary struct {
	Name       string   `json:"name"`
	Table      string   `json:"table"`
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
	PrimaryKey []string `json:"primary_key,omitempty"`
}

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid bool          `json:"valid"`
	Cubes []CubeSummary `json:"cubes"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema",
		Long: `Load a YAML schema and resolve every member.

Reports unknown references, cycles, cross-cube references and invalid
types. On success lists each cube with its members.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "schema file (yaml)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	schema, err := cubeql.LoadSchemaFile(opts.Schema)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeSchema, err)
	}

	result := ValidationResult{Valid: true}
	for _, cube := range schema.Cubes() {
		summary := CubeSummary{
			Name:       cube.Name(),
			Table:      cube.Table().Table,
			PrimaryKey: cube.PrimaryKey(),
			Dimensions: []string{},
			Measures:   []string{},
		}
		if cube.Table().IsSubquery() {
			summary.Table = "(" + cube.Table().SQL.Raw + ")"
		}
		for _, d := range cube.Dimensions() {
			summary.Dimensions = append(summary.Dimensions, d.Name)
		}
		for _, m := range cube.Measures() {
			summary.Measures = append(summary.Measures, m.Name)
		}
		result.Cubes = append(result.Cubes, summary)
		f.VerboseLog("Resolved cube %s", cube.Name())
	}

	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintln(f.Writer, "✓ Schema valid")
	for _, c := range result.Cubes {
		fmt.Fprintf(f.Writer, "  %s (%s): %d dimension(s), %d measure(s)\n", c.Name, c.Table, len(c.Dimensions), len(c.Measures))
	}
	return nil
}
