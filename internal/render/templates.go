package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/cubeql/internal/types"
)

// Templates supplies the dialect-specific syntax fragments used by SQL nodes.
// One implementation is selected per build for the target dialect and is
// passed unmodified through every render call.
type Templates interface {
	// Dialect returns the dialect name used in error messages.
	Dialect() string

	// QuoteIdentifier quotes a single identifier.
	QuoteIdentifier(name string) string

	// QuoteTable quotes a possibly schema-qualified table name.
	QuoteTable(name string) string

	// TimeGroupedColumn truncates a timestamp expression to a granularity.
	TimeGroupedColumn(g types.Granularity, expr string) (string, error)

	// ConvertTz converts a UTC timestamp expression to the named time zone.
	ConvertTz(expr, tz string) (string, error)

	// Aggregate wraps expr in the aggregation for a measure type.
	// An empty expr is only valid for count and renders COUNT(*).
	Aggregate(t types.MeasureType, expr string) (string, error)

	// Pagination renders the trailing LIMIT/OFFSET clause, including a
	// leading space, or "" when neither is set.
	Pagination(limit, offset *int, ordered bool) (string, error)

	// Capabilities returns the SQL features supported by the dialect.
	Capabilities() Capabilities
}

// QuoteWith wraps name in open/close quote characters, doubling any
// embedded closing quote.
func QuoteWith(name, open, closing string) string {
	return open + strings.ReplaceAll(name, closing, closing+closing) + closing
}

// QuoteDotted quotes each dot-separated part of name.
func QuoteDotted(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = quote(part)
	}
	return strings.Join(parts, ".")
}

// QuoteString renders s as a single-quoted SQL string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// IsUTC reports whether tz names UTC or is empty.
func IsUTC(tz string) bool {
	switch strings.ToUpper(strings.TrimSpace(tz)) {
	case "", "UTC", "ETC/UTC", "Z", "GMT":
		return true
	default:
		return false
	}
}

// ValidTimezone reports whether tz is safe to embed in a string literal.
// Zone names are restricted to IANA-style characters.
func ValidTimezone(tz string) bool {
	if tz == "" || len(tz) > 64 {
		return false
	}
	for i := 0; i < len(tz); i++ {
		c := tz[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '/', c == '_', c == '-', c == '+', c == ':':
		default:
			return false
		}
	}
	return true
}

// StandardAggregate renders the ANSI aggregate for a measure type.
// countDistinctApprox is reported as unsupported; dialects that have an
// approximate distinct count handle it before delegating here.
func StandardAggregate(dialect string, t types.MeasureType, expr string) (string, error) {
	if expr == "" && t != types.MeasureCount {
		return "", fmt.Errorf("%s measure requires an expression", t)
	}
	switch t {
	case types.MeasureCount:
		if expr == "" {
			return "COUNT(*)", nil
		}
		return fmt.Sprintf("COUNT(%s)", expr), nil
	case types.MeasureCountDistinct:
		return fmt.Sprintf("COUNT(DISTINCT %s)", expr), nil
	case types.MeasureSum:
		return fmt.Sprintf("SUM(%s)", expr), nil
	case types.MeasureAvg:
		return fmt.Sprintf("AVG(%s)", expr), nil
	case types.MeasureMin:
		return fmt.Sprintf("MIN(%s)", expr), nil
	case types.MeasureMax:
		return fmt.Sprintf("MAX(%s)", expr), nil
	case types.MeasureNumber:
		return expr, nil
	case types.MeasureCountDistinctApprox:
		return "", NewUnsupportedFeatureError(dialect, "countDistinctApprox", "use countDistinct instead")
	default:
		return "", fmt.Errorf("unsupported measure type: %s", t)
	}
}

// LimitOffset renders a standard " LIMIT n OFFSET m" clause.
// noLimit is substituted for the limit when only an offset is given;
// an empty noLimit omits LIMIT entirely.
func LimitOffset(limit, offset *int, noLimit string) (string, error) {
	if limit != nil && *limit < 0 {
		return "", fmt.Errorf("limit must be non-negative, got %d", *limit)
	}
	if offset != nil && *offset < 0 {
		return "", fmt.Errorf("offset must be non-negative, got %d", *offset)
	}

	var sql strings.Builder
	switch {
	case limit != nil:
		fmt.Fprintf(&sql, " LIMIT %d", *limit)
	case offset != nil && noLimit != "":
		sql.WriteString(" LIMIT ")
		sql.WriteString(noLimit)
	}
	if offset != nil {
		fmt.Fprintf(&sql, " OFFSET %d", *offset)
	}
	return sql.String(), nil
}
