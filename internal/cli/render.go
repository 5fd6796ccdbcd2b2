package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/cubeql"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Schema   string
	Query    string
	Dialect  string
	Timezone string
	Bind     bool
}

// RenderOutput is the JSON payload of the render command.
type RenderOutput struct {
	Dialect string           `json:"dialect"`
	SQL     string           `json:"sql"`
	Params  []RenderedParam  `json:"params,omitempty"`
	Columns []RenderedColumn `json:"columns"`
}

// RenderedParam is one bound parameter.
type RenderedParam struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// RenderedColumn is one result column.
type RenderedColumn struct {
	Name   string `json:"name"`
	Member string `json:"member"`
	Kind   string `json:"kind"`
	Type   string `json:"type,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a query to SQL",
		Long: `Render a YAML query against a YAML schema and print the SQL.

Parameters are printed as named placeholders (:f0) unless --bind is set,
in which case they use the dialect's positional style.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "schema file (yaml)")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "query file (yaml)")
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "target dialect (overrides config)")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", "", "query time zone (overrides config)")
	cmd.Flags().BoolVar(&opts.Bind, "bind", false, "rewrite placeholders to the dialect's positional style")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	if opts.Dialect != "" {
		cfg.Dialect = opts.Dialect
	}
	if opts.Timezone != "" {
		cfg.Timezone = opts.Timezone
	}
	if err := cfg.Validate(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	schema, err := cubeql.LoadSchemaFile(opts.Schema)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeSchema, err)
	}
	f.VerboseLog("Loaded %d cube(s) from %s", len(schema.Cubes()), opts.Schema)

	q, err := cubeql.LoadQueryFile(opts.Query)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeQuery, err)
	}

	tpl, err := cubeql.NewDialect(cfg.Dialect, cfg)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	result, err := cubeql.Build(cmd.Context(), schema, q, tpl, cfg)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeRender, err)
	}

	out := RenderOutput{Dialect: tpl.Dialect(), SQL: result.SQL}
	for _, name := range result.RequiredParams {
		out.Params = append(out.Params, RenderedParam{Name: name, Value: result.Values[name]})
	}
	for _, c := range result.Columns {
		out.Columns = append(out.Columns, RenderedColumn{Name: c.Name, Member: c.Member, Kind: c.Kind.String(), Type: c.Type})
	}
	if opts.Bind {
		sql, args, err := result.Bind(cubeql.BindStyleFor(tpl.Dialect()))
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeRender, err)
		}
		out.SQL = sql
		out.Params = out.Params[:0]
		for i, arg := range args {
			out.Params = append(out.Params, RenderedParam{Name: strconv.Itoa(i + 1), Value: arg})
		}
	}

	if f.JSON() {
		return f.Success(out)
	}
	w := f.Writer
	fmt.Fprintln(w, out.SQL)
	for _, p := range out.Params {
		name := ":" + p.Name
		if opts.Bind {
			name = "arg " + p.Name
		}
		fmt.Fprintf(w, "-- %s = %s\n", name, formatValue(p.Value))
	}
	return nil
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return fmt.Sprint(v)
}
