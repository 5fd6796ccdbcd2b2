package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoobzio/cubeql"
)

// DialectInfo describes one supported dialect.
type DialectInfo struct {
	Name         string              `json:"name"`
	Capabilities cubeql.Capabilities `json:"capabilities"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dialects",
		Short:         "List supported dialects",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(rootOpts, cmd)
		},
	}
	return cmd
}

func runDialects(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	var infos []DialectInfo
	for _, name := range cubeql.Dialects() {
		tpl, err := cubeql.NewDialect(name, cubeql.DefaultConfig())
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeGeneric, err)
		}
		infos = append(infos, DialectInfo{Name: name, Capabilities: tpl.Capabilities()})
	}

	if f.JSON() {
		return f.Success(infos)
	}
	for _, info := range infos {
		c := info.Capabilities
		fmt.Fprintf(f.Writer, "%-12s group_by_ordinal=%t timezone=%t approx_count_distinct=%t offset_without_limit=%t\n",
			info.Name, c.GroupByOrdinal, c.TimezoneConversion, c.ApproxCountDistinct, c.OffsetWithoutLimit)
	}
	return nil
}
