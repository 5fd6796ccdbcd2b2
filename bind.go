package cubeql

import (
	"fmt"
	"strings"
)

// BindStyle is a driver placeholder style.
type BindStyle int

const (
	// BindNamed keeps :name placeholders (sqlx).
	BindNamed BindStyle = iota
	// BindQuestion uses ? (MySQL, MariaDB, SQLite).
	BindQuestion
	// BindDollar uses $1, $2, ... (PostgreSQL).
	BindDollar
	// BindAt uses @p1, @p2, ... (SQL Server).
	BindAt
)

// BindStyleFor returns the placeholder style conventionally used with a dialect's drivers.
func BindStyleFor(dialect string) BindStyle {
	switch dialect {
	case "postgres":
		return BindDollar
	case "mssql":
		return BindAt
	case "databricks", "mariadb", "sqlite":
		return BindQuestion
	default:
		return BindNamed
	}
}

// Bind rewrites the named placeholders in r.SQL to style and returns the
// matching positional arguments. Quoted literals and identifiers, comments,
// and PostgreSQL :: casts are left untouched.
func (r *QueryResult) Bind(style BindStyle) (string, []any, error) {
	if style == BindNamed {
		return r.SQL, r.Args(), nil
	}

	var (
		out  strings.Builder
		args []any
	)
	sql := r.SQL
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || c == '[':
			end := skipQuoted(sql, i)
			out.WriteString(sql[i:end])
			i = end - 1
		case strings.HasPrefix(sql[i:], "--") || strings.HasPrefix(sql[i:], "/*"):
			end := skipComment(sql, i)
			out.WriteString(sql[i:end])
			i = end - 1
		case c == ':' && i+1 < len(sql) && sql[i+1] == ':':
			out.WriteString("::")
			i++
		case c == ':' && i+1 < len(sql) && isParamStart(sql[i+1]):
			j := i + 1
			for j < len(sql) && isParamChar(sql[j]) {
				j++
			}
			name := sql[i+1 : j]
			value, ok := r.Values[name]
			if !ok {
				return "", nil, fmt.Errorf("bind: no value for parameter :%s", name)
			}
			args = append(args, value)
			switch style {
			case BindQuestion:
				out.WriteByte('?')
			case BindDollar:
				fmt.Fprintf(&out, "$%d", len(args))
			case BindAt:
				fmt.Fprintf(&out, "@p%d", len(args))
			default:
				return "", nil, fmt.Errorf("bind: unknown style %d", style)
			}
			i = j - 1
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), args, nil
}

// skipQuoted returns the index just past the quoted section starting at i.
// A doubled closing quote is an escape.
func skipQuoted(sql string, i int) int {
	closing := sql[i]
	if closing == '[' {
		closing = ']'
	}
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != closing {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == closing {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

// skipComment returns the index just past the comment starting at i. A line
// comment ends at the newline; an unterminated block comment runs to the end.
func skipComment(sql string, i int) int {
	if sql[i+1] == '-' {
		if j := strings.IndexByte(sql[i:], '\n'); j >= 0 {
			return i + j
		}
		return len(sql)
	}
	if j := strings.Index(sql[i+2:], "*/"); j >= 0 {
		return i + 2 + j + 2
	}
	return len(sql)
}

func isParamStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isParamChar(c byte) bool {
	return isParamStart(c) || (c >= '0' && c <= '9')
}
