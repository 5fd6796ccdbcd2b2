package types

import "fmt"

// Symbol is a resolved node of the member graph.
//
// This is a sealed interface: only the variants in this package implement it.
// Symbols are immutable once constructed and are shared by pointer, so the same
// symbol may be reached from several parents.
type Symbol interface {
	// Kind returns the variant tag used for dispatch.
	Kind() Kind
	// FullName returns the member path, e.g. "orders.status".
	FullName() string
	// Cube returns the name of the owning cube, or "" if the symbol has none.
	Cube() string
	// Dependencies returns the symbols referenced by this symbol.
	Dependencies() []Symbol

	symbol() // Marker method - seals interface to this package
}

// Path joins a cube and member name into a member path.
func Path(cube, member string) string {
	return cube + "." + member
}

// CubeNameSymbol refers to a cube by name; renders as the cube alias.
type CubeNameSymbol struct {
	Name string
}

// NewCubeName creates a cube name symbol.
func NewCubeName(name string) *CubeNameSymbol {
	return &CubeNameSymbol{Name: name}
}

func (*CubeNameSymbol) Kind() Kind { return KindCubeName }
func (s *CubeNameSymbol) FullName() string { return s.Name }
func (s *CubeNameSymbol) Cube() string { return s.Name }
func (*CubeNameSymbol) Dependencies() []Symbol { return nil }
func (*CubeNameSymbol) symbol() {}

// CubeTableSymbol refers to the relation a cube selects from.
// Exactly one of Table and SQL is set.
type CubeTableSymbol struct {
	CubeRef *CubeNameSymbol
	Table   string    // Dotted table name, e.g. "public.orders"
	SQL     MemberSQL // Subquery SQL
	Deps    []Symbol
}

// NewCubeTable creates a cube table symbol backed by a named table.
func NewCubeTable(cube *CubeNameSymbol, table string) *CubeTableSymbol {
	return &CubeTableSymbol{CubeRef: cube, Table: table}
}

// NewCubeSubquery creates a cube table symbol backed by a SQL subquery.
func NewCubeSubquery(cube *CubeNameSymbol, sql MemberSQL, deps []Symbol) (*CubeTableSymbol, error) {
	if err := checkDeps(sql, deps); err != nil {
		return nil, fmt.Errorf("cube %s: %w", cube.Name, err)
	}
	return &CubeTableSymbol{CubeRef: cube, SQL: sql, Deps: deps}, nil
}

func (*CubeTableSymbol) Kind() Kind { return KindCubeTable }
func (s *CubeTableSymbol) FullName() string { return s.Cube() }
func (s *CubeTableSymbol) Cube() string { return cubeOf(s.CubeRef) }
func (s *CubeTableSymbol) Dependencies() []Symbol { return s.Deps }
func (*CubeTableSymbol) symbol() {}

// IsSubquery reports whether the cube selects from a SQL subquery.
func (s *CubeTableSymbol) IsSubquery() bool {
	return s.Table == ""
}

// DimensionSymbol is a resolved dimension.
type DimensionSymbol struct {
	CubeRef    *CubeNameSymbol
	Name       string
	Type       DimensionType
	SQL        MemberSQL
	Deps       []Symbol
	PrimaryKey bool
}

// NewDimension creates a dimension symbol. deps must align with sql.Refs().
func NewDimension(cube *CubeNameSymbol, name string, typ DimensionType, sql MemberSQL, deps []Symbol) (*DimensionSymbol, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("dimension %s: unknown type %q", Path(cubeOf(cube), name), typ)
	}
	if err := checkDeps(sql, deps); err != nil {
		return nil, fmt.Errorf("dimension %s: %w", Path(cubeOf(cube), name), err)
	}
	return &DimensionSymbol{CubeRef: cube, Name: name, Type: typ, SQL: sql, Deps: deps}, nil
}

func (*DimensionSymbol) Kind() Kind { return KindDimension }
func (s *DimensionSymbol) FullName() string { return Path(s.Cube(), s.Name) }
func (s *DimensionSymbol) Cube() string { return cubeOf(s.CubeRef) }
func (s *DimensionSymbol) Dependencies() []Symbol { return s.Deps }
func (*DimensionSymbol) symbol() {}

// TimeDimensionSymbol is a time dimension truncated to a granularity.
type TimeDimensionSymbol struct {
	Base        *DimensionSymbol
	Granularity Granularity
}

// NewTimeDimension creates a time dimension over a dimension of type time.
func NewTimeDimension(base *DimensionSymbol, g Granularity) (*TimeDimensionSymbol, error) {
	if base == nil {
		return nil, fmt.Errorf("time dimension requires a base dimension")
	}
	if base.Type != DimensionTime {
		return nil, fmt.Errorf("dimension %s has type %s, time dimensions require type time", base.FullName(), base.Type)
	}
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, fmt.Errorf("time dimension %s: %w", base.FullName(), err)
	}
	return &TimeDimensionSymbol{Base: base, Granularity: g}, nil
}

func (*TimeDimensionSymbol) Kind() Kind { return KindTimeDimension }
func (s *TimeDimensionSymbol) FullName() string { return s.Base.FullName() + "." + string(s.Granularity) }
func (s *TimeDimensionSymbol) Cube() string { return s.Base.Cube() }
func (s *TimeDimensionSymbol) Dependencies() []Symbol { return []Symbol{s.Base} }
func (*TimeDimensionSymbol) symbol() {}

// MeasureSymbol is a resolved measure.
type MeasureSymbol struct {
	CubeRef *CubeNameSymbol
	Name    string
	Type    MeasureType
	SQL     MemberSQL // Empty for count(*)
	Deps    []Symbol
}

// NewMeasure creates a measure symbol. deps must align with sql.Refs().
func NewMeasure(cube *CubeNameSymbol, name string, typ MeasureType, sql MemberSQL, deps []Symbol) (*MeasureSymbol, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("measure %s: unknown type %q", Path(cubeOf(cube), name), typ)
	}
	if sql.IsEmpty() && typ != MeasureCount {
		return nil, fmt.Errorf("measure %s: type %s requires sql", Path(cubeOf(cube), name), typ)
	}
	if err := checkDeps(sql, deps); err != nil {
		return nil, fmt.Errorf("measure %s: %w", Path(cubeOf(cube), name), err)
	}
	return &MeasureSymbol{CubeRef: cube, Name: name, Type: typ, SQL: sql, Deps: deps}, nil
}

func (*MeasureSymbol) Kind() Kind { return KindMeasure }
func (s *MeasureSymbol) FullName() string { return Path(s.Cube(), s.Name) }
func (s *MeasureSymbol) Cube() string { return cubeOf(s.CubeRef) }
func (s *MeasureSymbol) Dependencies() []Symbol { return s.Deps }
func (*MeasureSymbol) symbol() {}

// MemberExpressionSymbol is an ad-hoc SQL expression defined by a query.
type MemberExpressionSymbol struct {
	CubeRef *CubeNameSymbol // May be nil
	Name    string
	SQL     MemberSQL
	Deps    []Symbol
}

// NewMemberExpression creates an expression symbol. deps must align with sql.Refs().
func NewMemberExpression(cube *CubeNameSymbol, name string, sql MemberSQL, deps []Symbol) (*MemberExpressionSymbol, error) {
	if sql.IsEmpty() {
		return nil, fmt.Errorf("expression %s: sql is required", name)
	}
	if err := checkDeps(sql, deps); err != nil {
		return nil, fmt.Errorf("expression %s: %w", name, err)
	}
	return &MemberExpressionSymbol{CubeRef: cube, Name: name, SQL: sql, Deps: deps}, nil
}

func (*MemberExpressionSymbol) Kind() Kind { return KindMemberExpression }
func (s *MemberExpressionSymbol) FullName() string { return s.Name }
func (s *MemberExpressionSymbol) Cube() string { return cubeOf(s.CubeRef) }
func (s *MemberExpressionSymbol) Dependencies() []Symbol { return s.Deps }
func (*MemberExpressionSymbol) symbol() {}

// TemplateOf returns the SQL template and dependencies of symbols that carry one.
func TemplateOf(sym Symbol) (MemberSQL, []Symbol, bool) {
	switch s := sym.(type) {
	case *DimensionSymbol:
		return s.SQL, s.Deps, true
	case *MeasureSymbol:
		return s.SQL, s.Deps, true
	case *MemberExpressionSymbol:
		return s.SQL, s.Deps, true
	case *CubeTableSymbol:
		return s.SQL, s.Deps, s.IsSubquery()
	default:
		return MemberSQL{}, nil, false
	}
}

// OwningCube returns the cube name symbol that owns sym, if any.
func OwningCube(sym Symbol) *CubeNameSymbol {
	switch s := sym.(type) {
	case *DimensionSymbol:
		return s.CubeRef
	case *MeasureSymbol:
		return s.CubeRef
	case *MemberExpressionSymbol:
		return s.CubeRef
	case *CubeTableSymbol:
		return s.CubeRef
	case *TimeDimensionSymbol:
		return s.Base.CubeRef
	case *CubeNameSymbol:
		return s
	default:
		return nil
	}
}

func cubeOf(c *CubeNameSymbol) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func checkDeps(sql MemberSQL, deps []Symbol) error {
	refs := sql.refs
	if len(refs) != len(deps) {
		return fmt.Errorf("sql has %d reference(s) but %d dependency(ies) were given", len(refs), len(deps))
	}
	for i, dep := range deps {
		if dep == nil {
			return fmt.Errorf("dependency {%s} is nil", refs[i])
		}
	}
	return nil
}
