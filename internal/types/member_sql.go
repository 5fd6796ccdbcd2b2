package types

import (
	"fmt"
	"strings"
)

// SQLPart is one segment of a parsed member SQL template.
// A part is either literal text or a reference to a dependency.
type SQLPart struct {
	Literal string
	Ref     string // Reference path as written, e.g. "CUBE" or "orders.amount"
	Dep     int    // Index into MemberSQL.Refs(); -1 for literals
}

// IsRef reports whether the part is a dependency reference.
func (p SQLPart) IsRef() bool {
	return p.Dep >= 0
}

// MemberSQL is a member SQL expression split into literal text and {reference} parts.
type MemberSQL struct {
	Raw   string
	Parts []SQLPart
	refs  []string
}

// ParseMemberSQL parses a member SQL template.
// References are written {name} or {cube.name}; {{ and }} escape literal braces.
func ParseMemberSQL(raw string) (MemberSQL, error) {
	sql := MemberSQL{Raw: raw}
	index := make(map[string]int)

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			sql.Parts = append(sql.Parts, SQLPart{Literal: lit.String(), Dep: -1})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case ch == '{' && i+1 < len(raw) && raw[i+1] == '{':
			lit.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(raw) && raw[i+1] == '}':
			lit.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(raw[i+1:], '}')
			if end == -1 {
				return MemberSQL{}, fmt.Errorf("unterminated reference at offset %d in %q", i, raw)
			}
			ref := strings.TrimSpace(raw[i+1 : i+1+end])
			if !isReferencePath(ref) {
				return MemberSQL{}, fmt.Errorf("invalid reference {%s} in %q", ref, raw)
			}
			flush()
			dep, ok := index[ref]
			if !ok {
				dep = len(sql.refs)
				index[ref] = dep
				sql.refs = append(sql.refs, ref)
			}
			sql.Parts = append(sql.Parts, SQLPart{Ref: ref, Dep: dep})
			i += end + 1
		case ch == '}':
			return MemberSQL{}, fmt.Errorf("unexpected '}' at offset %d in %q", i, raw)
		default:
			lit.WriteByte(ch)
		}
	}
	flush()

	return sql, nil
}

// MustParseMemberSQL is like ParseMemberSQL but panics on error.
func MustParseMemberSQL(raw string) MemberSQL {
	sql, err := ParseMemberSQL(raw)
	if err != nil {
		panic(err)
	}
	return sql
}

// Refs returns the distinct reference paths in order of first appearance.
func (s MemberSQL) Refs() []string {
	out := make([]string, len(s.refs))
	copy(out, s.refs)
	return out
}

// IsEmpty reports whether the template has no content.
func (s MemberSQL) IsEmpty() bool {
	return len(s.Parts) == 0
}

// IsBareIdentifier reports whether the template is a single unqualified column name.
func (s MemberSQL) IsBareIdentifier() bool {
	if len(s.Parts) != 1 || s.Parts[0].IsRef() {
		return false
	}
	return IsIdentifier(strings.TrimSpace(s.Parts[0].Literal))
}

// Identifier returns the trimmed column name of a bare-identifier template.
func (s MemberSQL) Identifier() string {
	if !s.IsBareIdentifier() {
		return ""
	}
	return strings.TrimSpace(s.Parts[0].Literal)
}

// IsIdentifier reports whether s is a plain SQL identifier ([A-Za-z_][A-Za-z0-9_]*).
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isReferencePath(ref string) bool {
	if ref == "" {
		return false
	}
	for _, part := range strings.Split(ref, ".") {
		if !IsIdentifier(part) {
			return false
		}
	}
	return strings.Count(ref, ".") <= 1
}
