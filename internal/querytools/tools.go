// Package querytools holds the per-build execution context threaded through
// every SQL node: aliasing policy, time zone and pre-rendered references.
package querytools

import (
	"strings"
	"unicode"
)

// QueryTools carries per-build rendering policy.
// It is immutable once constructed; the With* methods return copies.
type QueryTools struct {
	timezone    string
	cubeAliases map[string]string
	references  map[string]string
	refSource   string
}

// Option configures a QueryTools.
type Option func(*QueryTools)

// WithTimezone sets the time zone that time dimensions are converted to.
func WithTimezone(tz string) Option {
	return func(t *QueryTools) {
		t.timezone = tz
	}
}

// WithCubeAlias overrides the SQL alias used for a cube.
func WithCubeAlias(cube, alias string) Option {
	return func(t *QueryTools) {
		t.cubeAliases[cube] = alias
	}
}

// New creates a QueryTools.
func New(opts ...Option) *QueryTools {
	t := &QueryTools{
		cubeAliases: make(map[string]string),
		references:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Timezone returns the configured time zone, or "" for UTC.
func (t *QueryTools) Timezone() string {
	return t.timezone
}

// CubeAlias returns the unquoted SQL alias for a cube.
func (t *QueryTools) CubeAlias(cube string) string {
	if alias, ok := t.cubeAliases[cube]; ok {
		return alias
	}
	return SnakeCase(cube)
}

// MemberAlias returns the unquoted column alias for a member path.
// "orders.createdAt" becomes "orders__created_at".
func (t *QueryTools) MemberAlias(path string) string {
	cube, member, found := strings.Cut(path, ".")
	if !found {
		return SnakeCase(path)
	}
	return t.CubeAlias(cube) + "__" + SnakeCase(strings.ReplaceAll(member, ".", "_"))
}

// WithReferences returns a copy whose references map member paths to
// columns of the relation named source.
func (t *QueryTools) WithReferences(source string, refs map[string]string) *QueryTools {
	cp := &QueryTools{
		timezone:    t.timezone,
		cubeAliases: t.cubeAliases,
		references:  make(map[string]string, len(refs)),
		refSource:   source,
	}
	for k, v := range refs {
		cp.references[k] = v
	}
	return cp
}

// Reference returns the source relation and column a member path has been
// pre-rendered to, if any.
func (t *QueryTools) Reference(path string) (source, column string, ok bool) {
	column, ok = t.references[path]
	if !ok {
		return "", "", false
	}
	return t.refSource, column, true
}

// SnakeCase converts camelCase and PascalCase names to snake_case.
// Names that are already snake_case are returned unchanged.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
