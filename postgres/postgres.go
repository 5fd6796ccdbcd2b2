// Package postgres provides the PostgreSQL dialect templates for cubeql.
package postgres

import (
	"fmt"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Name is the dialect name.
const Name = "postgres"

// Renderer implements the PostgreSQL dialect templates.
type Renderer struct{}

// New creates a new PostgreSQL renderer.
func New() *Renderer {
	return &Renderer{}
}

// Dialect returns "postgres".
func (r *Renderer) Dialect() string {
	return Name
}

// QuoteIdentifier quotes a PostgreSQL identifier to handle reserved words and special characters.
func (r *Renderer) QuoteIdentifier(name string) string {
	// Embedded double quotes are escaped by doubling them
	return render.QuoteWith(name, `"`, `"`)
}

// QuoteTable quotes each part of a schema-qualified table name.
func (r *Renderer) QuoteTable(name string) string {
	return render.QuoteDotted(name, r.QuoteIdentifier)
}

// TimeGroupedColumn renders DATE_TRUNC, which supports every granularity.
func (r *Renderer) TimeGroupedColumn(g types.Granularity, expr string) (string, error) {
	switch g {
	case types.GranularitySecond, types.GranularityMinute, types.GranularityHour,
		types.GranularityDay, types.GranularityWeek, types.GranularityMonth,
		types.GranularityQuarter, types.GranularityYear:
		return fmt.Sprintf("date_trunc('%s', %s)", g, expr), nil
	default:
		return "", fmt.Errorf("unsupported granularity: %s", g)
	}
}

// ConvertTz renders AT TIME ZONE over a timestamptz cast.
func (r *Renderer) ConvertTz(expr, tz string) (string, error) {
	return fmt.Sprintf("(%s::timestamptz AT TIME ZONE %s)", expr, render.QuoteString(tz)), nil
}

// Aggregate renders the standard aggregates.
// Approximate distinct counts require the hll extension and are not supported.
func (r *Renderer) Aggregate(t types.MeasureType, expr string) (string, error) {
	if t == types.MeasureCountDistinctApprox {
		return "", render.NewUnsupportedFeatureError(Name, "countDistinctApprox",
			"install the hll extension and use a number measure, or use countDistinct")
	}
	return render.StandardAggregate(Name, t, expr)
}

// Pagination renders LIMIT and OFFSET; PostgreSQL accepts OFFSET alone.
func (r *Renderer) Pagination(limit, offset *int, _ bool) (string, error) {
	return render.LimitOffset(limit, offset, "")
}

// Capabilities returns the SQL features supported by PostgreSQL.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		GroupByOrdinal:      true,
		TimezoneConversion:  true,
		ApproxCountDistinct: false,
		OffsetWithoutLimit:  true,
	}
}
