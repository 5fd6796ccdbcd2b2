package cubeql

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/cubeql/internal/types"
)

// ErrUnknownMember is returned when a member path does not exist in the schema.
var ErrUnknownMember = errors.New("unknown member")

// CubeDefinition declares a cube: its source and its members.
// Exactly one of SQLTable and SQL must be set.
type CubeDefinition struct {
	Name       string                `yaml:"name" json:"name"`
	SQLTable   string                `yaml:"sql_table,omitempty" json:"sql_table,omitempty"`
	SQL        string                `yaml:"sql,omitempty" json:"sql,omitempty"`
	Dimensions []DimensionDefinition `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Measures   []MeasureDefinition   `yaml:"measures,omitempty" json:"measures,omitempty"`
}

// DimensionDefinition declares a dimension. An empty SQL defaults to the
// column with the dimension's name.
type DimensionDefinition struct {
	Name       string        `yaml:"name" json:"name"`
	SQL        string        `yaml:"sql,omitempty" json:"sql,omitempty"`
	Type       DimensionType `yaml:"type" json:"type"`
	PrimaryKey bool          `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
}

// MeasureDefinition declares a measure. An empty SQL renders COUNT(*) for
// count measures and defaults to the column with the measure's name otherwise.
type MeasureDefinition struct {
	Name string      `yaml:"name" json:"name"`
	SQL  string      `yaml:"sql,omitempty" json:"sql,omitempty"`
	Type MeasureType `yaml:"type" json:"type"`
}

// SchemaError reports an invalid cube or member definition.
type SchemaError struct {
	Cube   string
	Member string
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Cube != "" && e.Member != "":
		return fmt.Sprintf("schema: %s.%s: %s", e.Cube, e.Member, e.Reason)
	case e.Cube != "":
		return fmt.Sprintf("schema: cube %s: %s", e.Cube, e.Reason)
	default:
		return "schema: " + e.Reason
	}
}

func schemaErrorf(cube, member, format string, args ...any) *SchemaError {
	return &SchemaError{Cube: cube, Member: member, Reason: fmt.Sprintf(format, args...)}
}

// Cube is a resolved cube.
type Cube struct {
	name       *types.CubeNameSymbol
	table      *types.CubeTableSymbol
	dimensions map[string]*types.DimensionSymbol
	measures   map[string]*types.MeasureSymbol
	dimOrder   []string
	measOrder  []string
	primaryKey []string
}

// Name returns the cube name.
func (c *Cube) Name() string {
	return c.name.Name
}

// Symbol returns the cube's name symbol.
func (c *Cube) Symbol() *types.CubeNameSymbol {
	return c.name
}

// Table returns the cube's source symbol.
func (c *Cube) Table() *types.CubeTableSymbol {
	return c.table
}

// Dimension returns the named dimension.
func (c *Cube) Dimension(name string) (*types.DimensionSymbol, bool) {
	d, ok := c.dimensions[name]
	return d, ok
}

// Measure returns the named measure.
func (c *Cube) Measure(name string) (*types.MeasureSymbol, bool) {
	m, ok := c.measures[name]
	return m, ok
}

// Dimensions returns the cube's dimensions in declaration order.
func (c *Cube) Dimensions() []*types.DimensionSymbol {
	out := make([]*types.DimensionSymbol, len(c.dimOrder))
	for i, name := range c.dimOrder {
		out[i] = c.dimensions[name]
	}
	return out
}

// Measures returns the cube's measures in declaration order.
func (c *Cube) Measures() []*types.MeasureSymbol {
	out := make([]*types.MeasureSymbol, len(c.measOrder))
	for i, name := range c.measOrder {
		out[i] = c.measures[name]
	}
	return out
}

// PrimaryKey returns the names of the primary key dimensions.
func (c *Cube) PrimaryKey() []string {
	return append([]string(nil), c.primaryKey...)
}

// member returns a dimension or measure by name.
func (c *Cube) member(name string) (types.Symbol, bool) {
	if d, ok := c.dimensions[name]; ok {
		return d, true
	}
	if m, ok := c.measures[name]; ok {
		return m, true
	}
	return nil, false
}

// Schema is a set of resolved cubes. A Schema is immutable and safe for
// concurrent use.
type Schema struct {
	cubes map[string]*Cube
	order []string
}

// NewSchema validates and resolves cube definitions.
func NewSchema(defs ...CubeDefinition) (*Schema, error) {
	s := &Schema{cubes: make(map[string]*Cube, len(defs))}
	for _, def := range defs {
		if !types.IsIdentifier(def.Name) {
			return nil, schemaErrorf("", "", "invalid cube name %q", def.Name)
		}
		if _, dup := s.cubes[def.Name]; dup {
			return nil, schemaErrorf(def.Name, "", "duplicate cube")
		}
		cube, err := resolveCube(def)
		if err != nil {
			return nil, err
		}
		s.cubes[def.Name] = cube
		s.order = append(s.order, def.Name)
	}
	return s, nil
}

// Cube returns the named cube.
func (s *Schema) Cube(name string) (*Cube, bool) {
	c, ok := s.cubes[name]
	return c, ok
}

// Cubes returns all cubes in declaration order.
func (s *Schema) Cubes() []*Cube {
	out := make([]*Cube, len(s.order))
	for i, name := range s.order {
		out[i] = s.cubes[name]
	}
	return out
}

// CubeNames returns the cube names sorted alphabetically.
func (s *Schema) CubeNames() []string {
	names := append([]string(nil), s.order...)
	sort.Strings(names)
	return names
}

// Member returns the resolved symbol for a member path. Paths have the form
// "cube.member"; "cube.member.granularity" names a time dimension.
func (s *Schema) Member(path string) (types.Symbol, error) {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: %q is not a cube.member path", ErrUnknownMember, path)
	}
	cube, ok := s.cubes[parts[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no cube %q", ErrUnknownMember, path, parts[0])
	}
	sym, ok := cube.member(parts[1])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, path)
	}
	if len(parts) == 2 {
		return sym, nil
	}

	dim, ok := sym.(*types.DimensionSymbol)
	if !ok {
		return nil, fmt.Errorf("%s: granularity applies only to time dimensions", path)
	}
	g, err := types.ParseGranularity(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return types.NewTimeDimension(dim, g)
}

// MustMember returns the symbol for path or panics.
func (s *Schema) MustMember(path string) types.Symbol {
	sym, err := s.Member(path)
	if err != nil {
		panic(err)
	}
	return sym
}

// Dimension returns the dimension at path.
func (s *Schema) Dimension(path string) (*types.DimensionSymbol, error) {
	sym, err := s.Member(path)
	if err != nil {
		return nil, err
	}
	d, ok := sym.(*types.DimensionSymbol)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not a dimension", path, sym.Kind())
	}
	return d, nil
}

// Measure returns the measure at path.
func (s *Schema) Measure(path string) (*types.MeasureSymbol, error) {
	sym, err := s.Member(path)
	if err != nil {
		return nil, err
	}
	m, ok := sym.(*types.MeasureSymbol)
	if !ok {
		return nil, fmt.Errorf("%s is a %s, not a measure", path, sym.Kind())
	}
	return m, nil
}
