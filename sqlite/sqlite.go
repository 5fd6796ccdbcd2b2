// Package sqlite provides the SQLite dialect templates for cubeql.
package sqlite

import (
	"fmt"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Name is the dialect name.
const Name = "sqlite"

// noLimit is substituted when only an offset is given; SQLite requires LIMIT before OFFSET.
const noLimit = "-1"

// Renderer implements the SQLite dialect templates.
type Renderer struct{}

// New creates a new SQLite renderer.
func New() *Renderer {
	return &Renderer{}
}

// Dialect returns "sqlite".
func (r *Renderer) Dialect() string {
	return Name
}

// QuoteIdentifier quotes a SQLite identifier with double quotes.
func (r *Renderer) QuoteIdentifier(name string) string {
	return render.QuoteWith(name, `"`, `"`)
}

// QuoteTable quotes each part of a schema-qualified table name.
func (r *Renderer) QuoteTable(name string) string {
	return render.QuoteDotted(name, r.QuoteIdentifier)
}

// TimeGroupedColumn truncates with STRFTIME, producing 'YYYY-MM-DD HH:MM:SS' text.
// Weeks start on Monday.
func (r *Renderer) TimeGroupedColumn(g types.Granularity, expr string) (string, error) {
	switch g {
	case types.GranularityWeek:
		return fmt.Sprintf("STRFTIME('%%Y-%%m-%%d 00:00:00', %s, '-6 days', 'weekday 1')", expr), nil
	case types.GranularityQuarter:
		return fmt.Sprintf(
			"STRFTIME('%%Y-', %s) || PRINTF('%%02d', ((CAST(STRFTIME('%%m', %s) AS INTEGER) - 1) / 3) * 3 + 1) || '-01 00:00:00'",
			expr, expr), nil
	}
	format := truncFormat(g)
	if format == "" {
		return "", fmt.Errorf("unsupported granularity for SQLite: %s", g)
	}
	return fmt.Sprintf("STRFTIME('%s', %s)", format, expr), nil
}

// truncFormat maps a granularity to the strftime format that truncates to it.
func truncFormat(g types.Granularity) string {
	switch g {
	case types.GranularityYear:
		return "%Y-01-01 00:00:00"
	case types.GranularityMonth:
		return "%Y-%m-01 00:00:00"
	case types.GranularityDay:
		return "%Y-%m-%d 00:00:00"
	case types.GranularityHour:
		return "%Y-%m-%d %H:00:00"
	case types.GranularityMinute:
		return "%Y-%m-%d %H:%M:00"
	case types.GranularitySecond:
		return "%Y-%m-%d %H:%M:%S"
	default:
		return ""
	}
}

// ConvertTz is not supported: SQLite has no time zone database.
func (r *Renderer) ConvertTz(_, _ string) (string, error) {
	return "", render.NewUnsupportedFeatureError(Name, "time zone conversion",
		"store timestamps in the target zone or query in UTC")
}

// Aggregate renders the standard aggregates.
func (r *Renderer) Aggregate(t types.MeasureType, expr string) (string, error) {
	return render.StandardAggregate(Name, t, expr)
}

// Pagination renders LIMIT and OFFSET, using LIMIT -1 when only an offset is set.
func (r *Renderer) Pagination(limit, offset *int, _ bool) (string, error) {
	return render.LimitOffset(limit, offset, noLimit)
}

// Capabilities returns the SQL features supported by SQLite.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		GroupByOrdinal:      true,
		TimezoneConversion:  false,
		ApproxCountDistinct: false,
		OffsetWithoutLimit:  false,
	}
}
