// Package mariadb provides the MariaDB and MySQL dialect templates for cubeql.
package mariadb

import (
	"fmt"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Name is the dialect name.
const Name = "mariadb"

// noLimit is the largest BIGINT UNSIGNED; MariaDB has no OFFSET without LIMIT.
const noLimit = "18446744073709551615"

// Renderer implements the MariaDB dialect templates.
type Renderer struct{}

// New creates a new MariaDB renderer.
func New() *Renderer {
	return &Renderer{}
}

// Dialect returns "mariadb".
func (r *Renderer) Dialect() string {
	return Name
}

// QuoteIdentifier quotes a MariaDB identifier with backticks.
func (r *Renderer) QuoteIdentifier(name string) string {
	return render.QuoteWith(name, "`", "`")
}

// QuoteTable quotes each part of a database-qualified table name.
func (r *Renderer) QuoteTable(name string) string {
	return render.QuoteDotted(name, r.QuoteIdentifier)
}

// TimeGroupedColumn truncates with DATE_FORMAT and casts back to DATETIME.
// Weeks start on Monday.
func (r *Renderer) TimeGroupedColumn(g types.Granularity, expr string) (string, error) {
	switch g {
	case types.GranularityWeek:
		return fmt.Sprintf("CAST(DATE_FORMAT(DATE_SUB(%s, INTERVAL WEEKDAY(%s) DAY), '%%Y-%%m-%%d 00:00:00') AS DATETIME)", expr, expr), nil
	case types.GranularityQuarter:
		return fmt.Sprintf("CAST(CONCAT(YEAR(%s), '-', LPAD((QUARTER(%s) - 1) * 3 + 1, 2, '0'), '-01 00:00:00') AS DATETIME)", expr, expr), nil
	}
	format := truncFormat(g)
	if format == "" {
		return "", fmt.Errorf("unsupported granularity for MariaDB: %s", g)
	}
	return fmt.Sprintf("CAST(DATE_FORMAT(%s, '%s') AS DATETIME)", expr, format), nil
}

// truncFormat maps a granularity to the DATE_FORMAT pattern that truncates to it.
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
		return "%Y-%m-%d %H:%i:00"
	case types.GranularitySecond:
		return "%Y-%m-%d %H:%i:%s"
	default:
		return ""
	}
}

// ConvertTz renders CONVERT_TZ from UTC. Named zones require the server's
// time zone tables to be loaded.
func (r *Renderer) ConvertTz(expr, tz string) (string, error) {
	return fmt.Sprintf("CONVERT_TZ(%s, '+00:00', %s)", expr, render.QuoteString(tz)), nil
}

// Aggregate renders the standard aggregates.
func (r *Renderer) Aggregate(t types.MeasureType, expr string) (string, error) {
	return render.StandardAggregate(Name, t, expr)
}

// Pagination renders LIMIT and OFFSET.
func (r *Renderer) Pagination(limit, offset *int, _ bool) (string, error) {
	return render.LimitOffset(limit, offset, noLimit)
}

// Capabilities returns the SQL features supported by MariaDB.
func (r *Renderer) Capabilities() render.Capabilities {
	return render.Capabilities{
		GroupByOrdinal:      true,
		TimezoneConversion:  true,
		ApproxCountDistinct: false,
		OffsetWithoutLimit:  false,
	}
}
