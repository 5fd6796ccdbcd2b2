package cubeql

import (
	"strings"

	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/types"
)

// cubeRef is the reference name that always denotes the owning cube.
const cubeRef = "CUBE"

// resolver turns one cube definition into a graph of shared symbols.
// Members are resolved on first reference and memoized, so a member reached
// from several parents is one symbol.
type resolver struct {
	cube       *Cube
	dimDefs    map[string]DimensionDefinition
	measDefs   map[string]MeasureDefinition
	inProgress map[string]bool
	path       []string
}

func resolveCube(def CubeDefinition) (*Cube, error) {
	cube := &Cube{
		name:       types.NewCubeName(def.Name),
		dimensions: make(map[string]*types.DimensionSymbol, len(def.Dimensions)),
		measures:   make(map[string]*types.MeasureSymbol, len(def.Measures)),
	}

	table, err := resolveTable(cube.name, def)
	if err != nil {
		return nil, err
	}
	cube.table = table

	r := &resolver{
		cube:       cube,
		dimDefs:    make(map[string]DimensionDefinition, len(def.Dimensions)),
		measDefs:   make(map[string]MeasureDefinition, len(def.Measures)),
		inProgress: make(map[string]bool),
	}
	for _, d := range def.Dimensions {
		if err := r.declare(d.Name); err != nil {
			return nil, err
		}
		if !d.Type.Valid() {
			return nil, schemaErrorf(def.Name, d.Name, "unknown dimension type %q", d.Type)
		}
		r.dimDefs[d.Name] = d
		cube.dimOrder = append(cube.dimOrder, d.Name)
		if d.PrimaryKey {
			cube.primaryKey = append(cube.primaryKey, d.Name)
		}
	}
	for _, m := range def.Measures {
		if err := r.declare(m.Name); err != nil {
			return nil, err
		}
		if !m.Type.Valid() {
			return nil, schemaErrorf(def.Name, m.Name, "unknown measure type %q", m.Type)
		}
		r.measDefs[m.Name] = m
		cube.measOrder = append(cube.measOrder, m.Name)
	}

	if err := checkAliases(def.Name, cube.dimOrder, cube.measOrder); err != nil {
		return nil, err
	}

	for _, name := range cube.dimOrder {
		if _, err := r.resolve(name); err != nil {
			return nil, err
		}
	}
	for _, name := range cube.measOrder {
		if _, err := r.resolve(name); err != nil {
			return nil, err
		}
	}
	return cube, nil
}

// checkAliases rejects members whose snake_case column aliases coincide,
// such as createdAt and created_at.
func checkAliases(cube string, groups ...[]string) error {
	seen := make(map[string]string)
	for _, names := range groups {
		for _, name := range names {
			alias := querytools.SnakeCase(name)
			if other, ok := seen[alias]; ok {
				return schemaErrorf(cube, name, "column alias %s collides with member %s", alias, other)
			}
			seen[alias] = name
		}
	}
	return nil
}

func resolveTable(cube *types.CubeNameSymbol, def CubeDefinition) (*types.CubeTableSymbol, error) {
	switch {
	case def.SQLTable != "" && def.SQL != "":
		return nil, schemaErrorf(def.Name, "", "sql_table and sql are mutually exclusive")
	case def.SQLTable != "":
		for _, part := range strings.Split(def.SQLTable, ".") {
			if part == "" {
				return nil, schemaErrorf(def.Name, "", "invalid sql_table %q", def.SQLTable)
			}
		}
		return types.NewCubeTable(cube, def.SQLTable), nil
	case def.SQL != "":
		sql, err := types.ParseMemberSQL(def.SQL)
		if err != nil {
			return nil, schemaErrorf(def.Name, "", "sql: %v", err)
		}
		if len(sql.Refs()) > 0 {
			return nil, schemaErrorf(def.Name, "", "cube sql may not contain member references")
		}
		table, err := types.NewCubeSubquery(cube, sql, nil)
		if err != nil {
			return nil, schemaErrorf(def.Name, "", "%v", err)
		}
		return table, nil
	default:
		return nil, schemaErrorf(def.Name, "", "one of sql_table or sql is required")
	}
}

func (r *resolver) declare(name string) error {
	cube := r.cube.Name()
	if !types.IsIdentifier(name) {
		return schemaErrorf(cube, name, "invalid member name")
	}
	if name == cubeRef {
		return schemaErrorf(cube, name, "%s is reserved", cubeRef)
	}
	if _, ok := r.dimDefs[name]; ok {
		return schemaErrorf(cube, name, "duplicate member")
	}
	if _, ok := r.measDefs[name]; ok {
		return schemaErrorf(cube, name, "duplicate member")
	}
	return nil
}

// resolve returns the symbol for a member of the cube, building it and its
// dependencies on first use.
func (r *resolver) resolve(name string) (types.Symbol, error) {
	if sym, ok := r.cube.member(name); ok {
		return sym, nil
	}
	if r.inProgress[name] {
		cycle := append(append([]string(nil), r.path...), name)
		return nil, schemaErrorf(r.cube.Name(), name, "circular reference: %s", strings.Join(cycle, " -> "))
	}

	r.inProgress[name] = true
	r.path = append(r.path, name)
	defer func() {
		delete(r.inProgress, name)
		r.path = r.path[:len(r.path)-1]
	}()

	if d, ok := r.dimDefs[name]; ok {
		return r.resolveDimension(d)
	}
	if m, ok := r.measDefs[name]; ok {
		return r.resolveMeasure(m)
	}
	return nil, schemaErrorf(r.cube.Name(), name, "unknown member")
}

func (r *resolver) resolveDimension(d DimensionDefinition) (types.Symbol, error) {
	sql, deps, err := r.template(d.Name, d.SQL, d.Name, false)
	if err != nil {
		return nil, err
	}
	sym, err := types.NewDimension(r.cube.name, d.Name, d.Type, sql, deps)
	if err != nil {
		return nil, schemaErrorf(r.cube.Name(), d.Name, "%v", err)
	}
	sym.PrimaryKey = d.PrimaryKey
	r.cube.dimensions[d.Name] = sym
	return sym, nil
}

func (r *resolver) resolveMeasure(m MeasureDefinition) (types.Symbol, error) {
	fallback := m.Name
	if m.Type == types.MeasureCount {
		fallback = ""
	}
	sql, deps, err := r.template(m.Name, m.SQL, fallback, m.Type == types.MeasureNumber)
	if err != nil {
		return nil, err
	}
	sym, err := types.NewMeasure(r.cube.name, m.Name, m.Type, sql, deps)
	if err != nil {
		return nil, schemaErrorf(r.cube.Name(), m.Name, "%v", err)
	}
	r.cube.measures[m.Name] = sym
	return sym, nil
}

// template parses a member's SQL and resolves its references. Only number
// measures may reference other measures.
func (r *resolver) template(member, raw, fallback string, allowMeasures bool) (types.MemberSQL, []types.Symbol, error) {
	if raw == "" {
		raw = fallback
	}
	if raw == "" {
		return types.MemberSQL{}, nil, nil
	}
	sql, err := types.ParseMemberSQL(raw)
	if err != nil {
		return types.MemberSQL{}, nil, schemaErrorf(r.cube.Name(), member, "sql: %v", err)
	}

	refs := sql.Refs()
	deps := make([]types.Symbol, len(refs))
	for i, ref := range refs {
		dep, err := r.reference(member, ref)
		if err != nil {
			return types.MemberSQL{}, nil, err
		}
		if dep.Kind() == types.KindMeasure && !allowMeasures {
			return types.MemberSQL{}, nil, schemaErrorf(r.cube.Name(), member,
				"{%s} is a measure; only number measures may reference measures", ref)
		}
		deps[i] = dep
	}
	return sql, deps, nil
}

// reference resolves one {ref} written inside member's SQL.
func (r *resolver) reference(member, ref string) (types.Symbol, error) {
	cube := r.cube.Name()
	if ref == cubeRef || ref == cube {
		return r.cube.name, nil
	}
	target := ref
	if owner, name, qualified := strings.Cut(ref, "."); qualified {
		if owner != cube && owner != cubeRef {
			return nil, schemaErrorf(cube, member, "{%s} references cube %s; cross-cube references are not supported", ref, owner)
		}
		target = name
	}
	if _, ok := r.dimDefs[target]; !ok {
		if _, ok := r.measDefs[target]; !ok {
			return nil, schemaErrorf(cube, member, "unknown reference {%s}", ref)
		}
	}
	return r.resolve(target)
}
