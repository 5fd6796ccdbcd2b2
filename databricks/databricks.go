// Package databricks provides the Databricks SQL dialect templates for cubeql.
package databricks

import (
	"fmt"
	"strings"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Name is the dialect name.
const Name = "databricks"

// Renderer implements the Databricks SQL dialect templates.
type Renderer struct {
	catalog string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCatalog qualifies schema.table names with a Unity Catalog name.
func WithCatalog(catalog string) Option {
	return func(r *Renderer) {
		r.catalog = catalog
	}
}

// New creates a new Databricks renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dialect returns "databricks".
func (r *Renderer) Dialect() string {
	return Name
}

// Catalog returns the configured catalog, or "".
func (r *Renderer) Catalog() string {
	return r.catalog
}

// QuoteIdentifier quotes with backticks. Names that are already
// backtick-quoted are returned unchanged.
func (r *Renderer) QuoteIdentifier(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") {
		return name
	}
	return render.QuoteWith(name, "`", "`")
}

// QuoteTable quotes a table name. A schema.table name is prefixed with the
// catalog when one is configured; catalog.schema.table names are kept as is.
func (r *Renderer) QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) == 2 && r.catalog != "" {
		parts = append([]string{r.catalog}, parts...)
	}
	for i, part := range parts {
		parts[i] = r.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

// TimeGroupedColumn renders date_trunc with an upper-case unit.
func (r *Renderer) TimeGroupedColumn(g types.Granularity, expr string) (string, error) {
	switch g {
	case types.GranularitySecond, types.GranularityMinute, types.GranularityHour,
		types.GranularityDay, types.GranularityWeek, types.GranularityMonth,
		types.GranularityQuarter, types.GranularityYear:
		return fmt.Sprintf("date_trunc('%s', %s)", strings.ToUpper(string(g)), expr), nil
	default:
		return "", fmt.Errorf("unsupported granularity: %s", g)
	}
}

// ConvertTz renders from_utc_timestamp.
func (r *Renderer) ConvertTz(expr, tz string) (string, error) {
	return fmt.Sprintf("from_utc_timestamp(%s, %s)", expr, render.QuoteString(tz)), nil
}

// Aggregate renders the standard aggregates plus approx_count_distinct.
func (r *Renderer) Aggregate(t types.MeasureType, expr string) (string, error) {
	if t == types.MeasureCountDistinctApprox {
		if expr == "" {
			return "", fmt.Errorf("%s measure requires an expression", t)
		}
		return fmt.Sprintf("approx_count_distinct(%s)", expr), nil
	}
	return render.StandardAggregate(Name, t, expr)
}

// Pagination renders LIMIT and OFFSET.
func (r *Renderer) Pagination(limit, offset *int, _ bool) (string, error) {
	return render.LimitOffset(limit, offset, "")
}

// Capabilities returns the SQL features supported by Databricks.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		GroupByOrdinal:      true,
		TimezoneConversion:  true,
		ApproxCountDistinct: true,
		OffsetWithoutLimit:  true,
	}
}
