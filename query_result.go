package cubeql

// QueryResult contains the rendered SQL query and metadata about its result set.
type QueryResult struct {
	SQL            string
	RequiredParams []string       // Parameter names in order of first appearance
	Values         map[string]any // Bound filter values by parameter name
	Columns        []Column
}

// Column describes one column of the result set.
type Column struct {
	Name   string // Unquoted SQL alias, e.g. "orders__status"
	Member string // Member path or expression name
	Kind   Kind
	Type   string // Dimension or measure type
}

// Args returns the bound values in RequiredParams order.
func (r *QueryResult) Args() []any {
	args := make([]any, len(r.RequiredParams))
	for i, name := range r.RequiredParams {
		args[i] = r.Values[name]
	}
	return args
}

// ColumnNames returns the column aliases in select order.
func (r *QueryResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}
