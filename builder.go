package cubeql

import (
	"context"
	"fmt"
)

// Builder provides a fluent API for constructing queries against a schema.
type Builder struct {
	schema *Schema
	query  *Query
	cfg    Config
	err    error
}

// Select creates a new query builder over schema.
func Select(schema *Schema) *Builder {
	b := &Builder{schema: schema, query: &Query{}, cfg: DefaultConfig()}
	if schema == nil {
		b.err = fmt.Errorf("schema cannot be nil")
	}
	return b
}

// GetError returns the first error recorded by the builder.
func (b *Builder) GetError() error {
	return b.err
}

// Dimensions adds dimensions to select.
func (b *Builder) Dimensions(paths ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, path := range paths {
		if _, err := b.schema.Dimension(path); err != nil {
			b.err = err
			return b
		}
	}
	b.query.Dimensions = append(b.query.Dimensions, paths...)
	return b
}

// Measures adds measures to select.
func (b *Builder) Measures(paths ...string) *Builder {
	if b.err != nil {
		return b
	}
	for _, path := range paths {
		if _, err := b.schema.Measure(path); err != nil {
			b.err = err
			return b
		}
	}
	b.query.Measures = append(b.query.Measures, paths...)
	return b
}

// TimeDimension selects a time dimension truncated to g.
func (b *Builder) TimeDimension(path string, g Granularity) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseGranularity(string(g)); err != nil {
		b.err = fmt.Errorf("TimeDimension(%s): %w", path, err)
		return b
	}
	b.query.TimeDimensions = append(b.query.TimeDimensions, TimeDimension{Dimension: path, Granularity: g})
	return b
}

// DateRange restricts a time dimension to [from, to]. Bare dates cover the whole day.
func (b *Builder) DateRange(path, from, to string) *Builder {
	if b.err != nil {
		return b
	}
	for i := range b.query.TimeDimensions {
		td := &b.query.TimeDimensions[i]
		if td.Dimension == path && td.DateRange == nil {
			td.DateRange = []string{from, to}
			return b
		}
	}
	b.query.TimeDimensions = append(b.query.TimeDimensions, TimeDimension{Dimension: path, DateRange: []string{from, to}})
	return b
}

// Where adds a filter. Filters are combined with AND.
func (b *Builder) Where(f Filter) *Builder {
	if b.err != nil {
		return b
	}
	if err := f.validate(); err != nil {
		b.err = err
		return b
	}
	b.query.Filters = append(b.query.Filters, f)
	return b
}

// WhereMember is a convenience for Where(Filter{...}).
func (b *Builder) WhereMember(path string, op Operator, values ...string) *Builder {
	return b.Where(Filter{Member: path, Operator: op, Values: values})
}

// Expression adds an ad-hoc expression computed alongside the selected members.
func (b *Builder) Expression(name, sql string) *Builder {
	return b.addExpression(Expression{Name: name, SQL: sql})
}

// PostAggregate adds an expression computed over the grouped result.
func (b *Builder) PostAggregate(name, sql string) *Builder {
	return b.addExpression(Expression{Name: name, SQL: sql, PostAggregate: true})
}

func (b *Builder) addExpression(e Expression) *Builder {
	if b.err != nil {
		return b
	}
	if e.Name == "" {
		b.err = fmt.Errorf("expression name cannot be empty")
		return b
	}
	b.query.Expressions = append(b.query.Expressions, e)
	return b
}

// OrderBy adds a sort on a selected member or expression.
func (b *Builder) OrderBy(member string, direction Direction) *Builder {
	if b.err != nil {
		return b
	}
	if direction != Asc && direction != Desc {
		b.err = fmt.Errorf("OrderBy(%s): invalid direction %q", member, direction)
		return b
	}
	b.query.Order = append(b.query.Order, Order{Member: member, Direction: direction})
	return b
}

// Limit sets the row limit.
func (b *Builder) Limit(limit int) *Builder {
	if b.err != nil {
		return b
	}
	if limit < 0 {
		b.err = fmt.Errorf("limit must be non-negative, got %d", limit)
		return b
	}
	b.query.Limit = &limit
	return b
}

// Offset sets the row offset.
func (b *Builder) Offset(offset int) *Builder {
	if b.err != nil {
		return b
	}
	if offset < 0 {
		b.err = fmt.Errorf("offset must be non-negative, got %d", offset)
		return b
	}
	b.query.Offset = &offset
	return b
}

// Timezone sets the time zone that time dimensions are reported in.
func (b *Builder) Timezone(tz string) *Builder {
	if b.err != nil {
		return b
	}
	b.query.Timezone = tz
	return b
}

// WithConfig replaces the build configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	if b.err != nil {
		return b
	}
	if err := cfg.Validate(); err != nil {
		b.err = err
		return b
	}
	b.cfg = cfg
	return b
}

// Query returns the constructed query or an error.
func (b *Builder) Query() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.query.Validate(); err != nil {
		return nil, err
	}
	return b.query, nil
}

// Render builds the query and renders it for the dialect tpl.
func (b *Builder) Render(tpl Templates) (*QueryResult, error) {
	return b.RenderContext(context.Background(), tpl)
}

// RenderContext is Render with a context.
func (b *Builder) RenderContext(ctx context.Context, tpl Templates) (*QueryResult, error) {
	q, err := b.Query()
	if err != nil {
		return nil, err
	}
	return Build(ctx, b.schema, q, tpl, b.cfg)
}

// MustRender builds and renders the query or panics on error.
func (b *Builder) MustRender(tpl Templates) *QueryResult {
	result, err := b.Render(tpl)
	if err != nil {
		panic(err)
	}
	return result
}
