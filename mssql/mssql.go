// Package mssql provides the SQL Server dialect templates for cubeql.
package mssql

import (
	"fmt"
	"strings"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Name is the dialect name.
const Name = "mssql"

// Renderer implements the SQL Server dialect templates.
type Renderer struct{}

// New creates a new SQL Server renderer.
func New() *Renderer {
	return &Renderer{}
}

// Dialect returns "mssql".
func (r *Renderer) Dialect() string {
	return Name
}

// QuoteIdentifier quotes a SQL Server identifier with square brackets.
func (r *Renderer) QuoteIdentifier(name string) string {
	return render.QuoteWith(name, "[", "]")
}

// QuoteTable quotes each part of a schema-qualified table name.
func (r *Renderer) QuoteTable(name string) string {
	return render.QuoteDotted(name, r.QuoteIdentifier)
}

// TimeGroupedColumn renders DATETRUNC (SQL Server 2022). Weeks use ISO
// weeks so the result does not depend on SET DATEFIRST.
func (r *Renderer) TimeGroupedColumn(g types.Granularity, expr string) (string, error) {
	part := datePart(g)
	if part == "" {
		return "", fmt.Errorf("unsupported granularity for SQL Server: %s", g)
	}
	return fmt.Sprintf("DATETRUNC(%s, %s)", part, expr), nil
}

// datePart maps a granularity to a DATETRUNC datepart.
func datePart(g types.Granularity) string {
	switch g {
	case types.GranularitySecond, types.GranularityMinute, types.GranularityHour,
		types.GranularityDay, types.GranularityMonth, types.GranularityQuarter,
		types.GranularityYear:
		return string(g)
	case types.GranularityWeek:
		return "iso_week"
	default:
		return ""
	}
}

// ConvertTz interprets expr as UTC and converts it to tz.
// SQL Server expects Windows zone names, e.g. 'Pacific Standard Time'.
func (r *Renderer) ConvertTz(expr, tz string) (string, error) {
	return fmt.Sprintf("CAST(%s AT TIME ZONE 'UTC' AT TIME ZONE %s AS DATETIME2)", expr, render.QuoteString(tz)), nil
}

// Aggregate renders the standard aggregates plus APPROX_COUNT_DISTINCT.
func (r *Renderer) Aggregate(t types.MeasureType, expr string) (string, error) {
	if t == types.MeasureCountDistinctApprox {
		if expr == "" {
			return "", fmt.Errorf("%s measure requires an expression", t)
		}
		return fmt.Sprintf("APPROX_COUNT_DISTINCT(%s)", expr), nil
	}
	return render.StandardAggregate(Name, t, expr)
}

// Pagination renders OFFSET ... ROWS FETCH NEXT ... ROWS ONLY.
// OFFSET requires ORDER BY, so an unordered query gets ORDER BY (SELECT NULL).
func (r *Renderer) Pagination(limit, offset *int, ordered bool) (string, error) {
	if limit == nil && offset == nil {
		return "", nil
	}
	if limit != nil && *limit < 0 {
		return "", fmt.Errorf("limit must be non-negative, got %d", *limit)
	}
	if offset != nil && *offset < 0 {
		return "", fmt.Errorf("offset must be non-negative, got %d", *offset)
	}

	var sql strings.Builder
	if !ordered {
		sql.WriteString(" ORDER BY (SELECT NULL)")
	}
	skip := 0
	if offset != nil {
		skip = *offset
	}
	fmt.Fprintf(&sql, " OFFSET %d ROWS", skip)
	if limit != nil {
		fmt.Fprintf(&sql, " FETCH NEXT %d ROWS ONLY", *limit)
	}
	return sql.String(), nil
}

// Capabilities returns the SQL features supported by SQL Server.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		GroupByOrdinal:      false,
		TimezoneConversion:  true,
		ApproxCountDistinct: true,
		OffsetWithoutLimit:  true,
	}
}
