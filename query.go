package cubeql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator is a filter operator.
type Operator string

// Filter operators.
const (
	Equals         Operator = "equals"
	NotEquals      Operator = "notEquals"
	Contains       Operator = "contains"
	NotContains    Operator = "notContains"
	Gt             Operator = "gt"
	Gte            Operator = "gte"
	Lt             Operator = "lt"
	Lte            Operator = "lte"
	Set            Operator = "set"
	NotSet         Operator = "notSet"
	InDateRange    Operator = "inDateRange"
	NotInDateRange Operator = "notInDateRange"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Query is a semantic query: which members to select, filter and order by.
type Query struct {
	Dimensions     []string        `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Measures       []string        `yaml:"measures,omitempty" json:"measures,omitempty"`
	TimeDimensions []TimeDimension `yaml:"timeDimensions,omitempty" json:"timeDimensions,omitempty"`
	Filters        []Filter        `yaml:"filters,omitempty" json:"filters,omitempty"`
	Expressions    []Expression    `yaml:"expressions,omitempty" json:"expressions,omitempty"`
	Order          []Order         `yaml:"order,omitempty" json:"order,omitempty"`
	Limit          *int            `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset         *int            `yaml:"offset,omitempty" json:"offset,omitempty"`
	Timezone       string          `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

// TimeDimension selects a time dimension at a granularity. Without a
// granularity it only applies its date range.
type TimeDimension struct {
	Dimension   string      `yaml:"dimension" json:"dimension"`
	Granularity Granularity `yaml:"granularity,omitempty" json:"granularity,omitempty"`
	DateRange   []string    `yaml:"dateRange,omitempty" json:"dateRange,omitempty"`
}

// Filter restricts a member. Dimension filters render in WHERE, measure
// filters in HAVING.
type Filter struct {
	Member   string   `yaml:"member" json:"member"`
	Operator Operator `yaml:"operator" json:"operator"`
	Values   []string `yaml:"values,omitempty" json:"values,omitempty"`
}

// Expression is an ad-hoc member defined in the query. Its SQL may reference
// schema members as {cube.member}. A post-aggregate expression is computed
// over the grouped result and may only reference selected members.
type Expression struct {
	Name          string `yaml:"name" json:"name"`
	SQL           string `yaml:"sql" json:"sql"`
	PostAggregate bool   `yaml:"post_aggregate,omitempty" json:"post_aggregate,omitempty"`
}

// Order sorts by a selected member or expression.
type Order struct {
	Member    string    `yaml:"id" json:"id"`
	Direction Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// UnmarshalYAML accepts {id: x, direction: desc}, {id: x, desc: true} and
// the short form "x desc".
func (o *Order) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		fields := strings.Fields(node.Value)
		if len(fields) == 0 || len(fields) > 2 {
			return fmt.Errorf("line %d: invalid order %q", node.Line, node.Value)
		}
		o.Member = fields[0]
		o.Direction = Asc
		if len(fields) == 2 {
			o.Direction = Direction(strings.ToLower(fields[1]))
		}
		return nil
	}

	var raw struct {
		ID        string `yaml:"id"`
		Direction string `yaml:"direction"`
		Desc      bool   `yaml:"desc"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	o.Member = raw.ID
	o.Direction = Direction(strings.ToLower(raw.Direction))
	if raw.Desc {
		o.Direction = Desc
	}
	if o.Direction == "" {
		o.Direction = Asc
	}
	return nil
}

// ParseQuery parses a YAML or JSON query document.
func ParseQuery(data []byte) (*Query, error) {
	var q Query
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&q); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse query: empty document")
		}
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return &q, nil
}

// LoadQueryFile reads and parses a query file.
func LoadQueryFile(path string) (*Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query: %w", err)
	}
	q, err := ParseQuery(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Validate checks the query's shape. Member paths are checked against a
// schema when the query is built.
func (q *Query) Validate() error {
	// A time dimension without a granularity only filters.
	selects := len(q.Dimensions) + len(q.Measures) + len(q.Expressions)
	for _, td := range q.TimeDimensions {
		if td.Granularity != "" {
			selects++
		}
	}
	if selects == 0 {
		return fmt.Errorf("query selects nothing")
	}
	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", *q.Limit)
	}
	if q.Offset != nil && *q.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", *q.Offset)
	}
	for _, td := range q.TimeDimensions {
		if td.Dimension == "" {
			return fmt.Errorf("time dimension requires a dimension")
		}
		if td.Granularity != "" {
			if _, err := ParseGranularity(string(td.Granularity)); err != nil {
				return fmt.Errorf("time dimension %s: %w", td.Dimension, err)
			}
		}
		if td.DateRange != nil && len(td.DateRange) != 2 {
			return fmt.Errorf("time dimension %s: dateRange requires two values", td.Dimension)
		}
	}
	for _, f := range q.Filters {
		if err := f.validate(); err != nil {
			return err
		}
	}
	for _, o := range q.Order {
		if o.Member == "" {
			return fmt.Errorf("order requires a member")
		}
		if o.Direction != "" && o.Direction != Asc && o.Direction != Desc {
			return fmt.Errorf("order %s: invalid direction %q", o.Member, o.Direction)
		}
	}
	return nil
}

func (f Filter) validate() error {
	if f.Member == "" {
		return fmt.Errorf("filter requires a member")
	}
	n := len(f.Values)
	switch f.Operator {
	case Equals, NotEquals, Contains, NotContains:
		if n == 0 {
			return fmt.Errorf("filter %s %s: at least one value is required", f.Member, f.Operator)
		}
	case Gt, Gte, Lt, Lte:
		if n != 1 {
			return fmt.Errorf("filter %s %s: exactly one value is required", f.Member, f.Operator)
		}
	case Set, NotSet:
		if n != 0 {
			return fmt.Errorf("filter %s %s: takes no values", f.Member, f.Operator)
		}
	case InDateRange, NotInDateRange:
		if n != 2 {
			return fmt.Errorf("filter %s %s: two values are required", f.Member, f.Operator)
		}
	default:
		return fmt.Errorf("filter %s: unknown operator %q", f.Member, f.Operator)
	}
	return nil
}
