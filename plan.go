package cubeql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zoobzio/cubeql/internal/evaluator"
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/sqlnodes"
	"github.com/zoobzio/cubeql/internal/types"
)

// innerAlias names the grouped subquery when post-aggregate expressions are present.
const innerAlias = "q_0"

// processorGraphs holds the shared, frozen node arena used by every build.
type processorGraphs struct {
	arena      *sqlnodes.Arena
	defaults   sqlnodes.Nodes
	references sqlnodes.Nodes
}

var graphs = newProcessorGraphs()

func newProcessorGraphs() processorGraphs {
	arena := sqlnodes.NewArena()
	g := processorGraphs{
		arena:      arena,
		defaults:   sqlnodes.NewDefaultNodes(arena),
		references: sqlnodes.NewReferenceNodes(arena),
	}
	arena.Freeze()
	return g
}

// selectItem is one rendered column of the SELECT list.
type selectItem struct {
	column  Column
	sql     string
	grouped bool
}

// planner compiles one query. It is discarded after Build returns.
type planner struct {
	ctx     context.Context
	schema  *Schema
	query   *Query
	tpl     Templates
	cfg     Config
	cube    *Cube
	tools   *querytools.QueryTools
	visitor *evaluator.Visitor

	items    []selectItem
	byMember map[string]int
	aliases  map[string]string
	post     []*types.MemberExpressionSymbol

	where  []string
	having []string
	params []string
	values map[string]any
	filter int
}

// Build compiles q against schema into SQL for the dialect tpl.
func Build(ctx context.Context, schema *Schema, q *Query, tpl Templates, cfg Config) (*QueryResult, error) {
	if schema == nil {
		return nil, fmt.Errorf("build query: schema cannot be nil")
	}
	if q == nil {
		return nil, fmt.Errorf("build query: query cannot be nil")
	}
	if tpl == nil {
		return nil, fmt.Errorf("build query: templates cannot be nil")
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tz := q.Timezone
	if tz == "" {
		tz = cfg.Timezone
	}
	if !render.IsUTC(tz) && !render.ValidTimezone(tz) {
		return nil, fmt.Errorf("build query: invalid time zone %q", tz)
	}
	maxDepth := cfg.MaxDepth
	if maxDepth < 1 {
		maxDepth = evaluator.DefaultMaxDepth
	}

	p := &planner{
		ctx:      ctx,
		schema:   schema,
		query:    q,
		tpl:      tpl,
		cfg:      cfg,
		tools:    querytools.New(querytools.WithTimezone(tz)),
		byMember: make(map[string]int),
		aliases:  make(map[string]string),
		values:   make(map[string]any),
	}
	p.visitor = evaluator.New(graphs.arena, p.tools, tpl, evaluator.WithMaxDepth(maxDepth))

	result, err := p.build()
	if err != nil {
		return nil, err
	}
	p.cfg.logger().DebugContext(ctx, "built query",
		"cube", p.cube.Name(),
		"dialect", tpl.Dialect(),
		"columns", len(result.Columns),
		"params", len(result.RequiredParams),
		"post_aggregate", len(p.post) > 0,
	)
	return result, nil
}

func (p *planner) build() (*QueryResult, error) {
	cube, err := p.resolveCube()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	p.cube = cube

	steps := []func() error{p.selectDimensions, p.selectTimeDimensions, p.selectMeasures, p.selectExpressions, p.filters}
	for _, step := range steps {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		if err := step(); err != nil {
			return nil, fmt.Errorf("build query: %w", err)
		}
	}

	grouped, err := p.groupedSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	columns := make([]Column, 0, len(p.items)+len(p.post))
	for _, item := range p.items {
		columns = append(columns, item.column)
	}

	sql := grouped
	if len(p.post) > 0 {
		outer, postColumns, err := p.postAggregate(grouped)
		if err != nil {
			return nil, fmt.Errorf("build query: %w", err)
		}
		sql = outer
		columns = append(columns, postColumns...)
	}

	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	tail, err := p.orderAndPagination(columns)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return &QueryResult{
		SQL:            sql + tail,
		RequiredParams: p.params,
		Values:         p.values,
		Columns:        columns,
	}, nil
}

// resolveCube returns the single cube every referenced member belongs to.
func (p *planner) resolveCube() (*Cube, error) {
	q := p.query
	var paths []string
	paths = append(paths, q.Dimensions...)
	paths = append(paths, q.Measures...)
	for _, td := range q.TimeDimensions {
		paths = append(paths, td.Dimension)
	}
	for _, f := range q.Filters {
		paths = append(paths, f.Member)
	}
	for _, e := range q.Expressions {
		sql, err := types.ParseMemberSQL(e.SQL)
		if err != nil {
			return nil, fmt.Errorf("expression %s: %w", e.Name, err)
		}
		for _, ref := range sql.Refs() {
			if owner, _, ok := strings.Cut(ref, "."); ok && owner != cubeRef {
				paths = append(paths, ref)
			}
		}
	}

	var name string
	for _, path := range paths {
		owner, _, _ := strings.Cut(path, ".")
		switch {
		case name == "":
			name = owner
		case owner != name:
			return nil, fmt.Errorf("query references cubes %s and %s; joins are not supported", name, owner)
		}
	}
	if name == "" {
		return nil, fmt.Errorf("query references no cube members")
	}
	cube, ok := p.schema.Cube(name)
	if !ok {
		return nil, fmt.Errorf("%w: no cube %q", ErrUnknownMember, name)
	}
	return cube, nil
}

func (p *planner) render(sym types.Symbol) (string, error) {
	return p.visitor.Apply(sym, graphs.defaults.Root)
}

func (p *planner) add(item selectItem, keys ...string) error {
	if err := p.claimAlias(item.column); err != nil {
		return err
	}
	p.items = append(p.items, item)
	for _, key := range keys {
		if _, taken := p.byMember[key]; !taken {
			p.byMember[key] = len(p.items) - 1
		}
	}
	return nil
}

// claimAlias reserves the output column name of c. Two members rendering to the
// same alias would make the result columns ambiguous.
func (p *planner) claimAlias(c Column) error {
	if other, taken := p.aliases[c.Name]; taken {
		return fmt.Errorf("%s and %s both render to column %s", other, c.Member, c.Name)
	}
	p.aliases[c.Name] = c.Member
	return nil
}

func (p *planner) selected(key string) bool {
	_, ok := p.byMember[key]
	return ok
}

func (p *planner) selectDimensions() error {
	for _, path := range p.query.Dimensions {
		if p.selected(path) {
			continue
		}
		d, err := p.schema.Dimension(path)
		if err != nil {
			return err
		}
		sql, err := p.localDimension(d)
		if err != nil {
			return err
		}
		if err := p.add(selectItem{
			column:  Column{Name: p.tools.MemberAlias(path), Member: path, Kind: KindDimension, Type: string(d.Type)},
			sql:     sql,
			grouped: true,
		}, path); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) selectTimeDimensions() error {
	for _, td := range p.query.TimeDimensions {
		if td.Granularity == "" {
			continue
		}
		base, err := p.timeDimensionBase(td.Dimension)
		if err != nil {
			return err
		}
		g, err := ParseGranularity(string(td.Granularity))
		if err != nil {
			return err
		}
		sym, err := types.NewTimeDimension(base, g)
		if err != nil {
			return err
		}
		if p.selected(sym.FullName()) {
			continue
		}
		sql, err := p.render(sym)
		if err != nil {
			return err
		}
		if err := p.add(selectItem{
			column:  Column{Name: p.tools.MemberAlias(sym.FullName()), Member: sym.FullName(), Kind: KindTimeDimension, Type: string(TypeTime)},
			sql:     sql,
			grouped: true,
		}, sym.FullName(), td.Dimension); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) timeDimensionBase(path string) (*types.DimensionSymbol, error) {
	d, err := p.schema.Dimension(path)
	if err != nil {
		return nil, err
	}
	if d.Type != types.DimensionTime {
		return nil, fmt.Errorf("%s has type %s; time dimensions require type time", path, d.Type)
	}
	return d, nil
}

func (p *planner) selectMeasures() error {
	for _, path := range p.query.Measures {
		if p.selected(path) {
			continue
		}
		m, err := p.schema.Measure(path)
		if err != nil {
			return err
		}
		sql, err := p.render(m)
		if err != nil {
			return err
		}
		if err := p.add(selectItem{
			column: Column{Name: p.tools.MemberAlias(path), Member: path, Kind: KindMeasure, Type: string(m.Type)},
			sql:    sql,
		}, path); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) selectExpressions() error {
	seen := make(map[string]bool)
	for _, e := range p.query.Expressions {
		if !types.IsIdentifier(e.Name) {
			return fmt.Errorf("invalid expression name %q", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate expression %s", e.Name)
		}
		seen[e.Name] = true

		sym, aggregate, err := p.expression(e)
		if err != nil {
			return err
		}
		if e.PostAggregate {
			p.post = append(p.post, sym)
			continue
		}
		sql, err := p.render(sym)
		if err != nil {
			return err
		}
		if err := p.add(selectItem{
			column:  Column{Name: p.tools.MemberAlias(e.Name), Member: e.Name, Kind: KindMemberExpression},
			sql:     sql,
			grouped: !aggregate,
		}, e.Name); err != nil {
			return err
		}
	}
	return nil
}

// expression resolves an ad-hoc expression. It reports whether the
// expression references a measure and therefore aggregates.
func (p *planner) expression(e Expression) (*types.MemberExpressionSymbol, bool, error) {
	sql, err := types.ParseMemberSQL(e.SQL)
	if err != nil {
		return nil, false, fmt.Errorf("expression %s: %w", e.Name, err)
	}
	if sql.IsEmpty() {
		return nil, false, fmt.Errorf("expression %s: sql is required", e.Name)
	}

	refs := sql.Refs()
	deps := make([]types.Symbol, len(refs))
	aggregate := false
	for i, ref := range refs {
		dep, err := p.expressionRef(ref)
		if err != nil {
			return nil, false, fmt.Errorf("expression %s: %w", e.Name, err)
		}
		if dep.Kind() == types.KindMeasure {
			aggregate = true
		}
		deps[i] = dep
	}
	sym, err := types.NewMemberExpression(p.cube.Symbol(), e.Name, sql, deps)
	if err != nil {
		return nil, false, err
	}
	return sym, aggregate, nil
}

func (p *planner) expressionRef(ref string) (types.Symbol, error) {
	if ref == cubeRef || ref == p.cube.Name() {
		return p.cube.Symbol(), nil
	}
	if owner, name, ok := strings.Cut(ref, "."); ok {
		if owner != cubeRef {
			return p.schema.Member(ref)
		}
		ref = name
	}
	if sym, ok := p.cube.member(ref); ok {
		return sym, nil
	}
	return nil, fmt.Errorf("%w: {%s}", ErrUnknownMember, ref)
}

func (p *planner) filters() error {
	for _, td := range p.query.TimeDimensions {
		if td.DateRange == nil {
			continue
		}
		if err := p.addFilter(Filter{Member: td.Dimension, Operator: InDateRange, Values: td.DateRange}); err != nil {
			return err
		}
	}
	for _, f := range p.query.Filters {
		if err := p.addFilter(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *planner) addFilter(f Filter) error {
	sym, err := p.schema.Member(f.Member)
	if err != nil {
		return err
	}

	var (
		expr    string
		convert func(string, bool) (any, error)
		target  *[]string
	)
	switch s := sym.(type) {
	case *types.DimensionSymbol:
		expr, err = p.localDimension(s)
		convert = dimensionValue(s.Type)
		target = &p.where
	case *types.MeasureSymbol:
		expr, err = p.render(s)
		convert = numberValue
		target = &p.having
	default:
		return fmt.Errorf("filter %s: cannot filter on a %s", f.Member, sym.Kind())
	}
	if err != nil {
		return err
	}

	switch f.Operator {
	case InDateRange, NotInDateRange:
		if d, ok := sym.(*types.DimensionSymbol); !ok || d.Type != types.DimensionTime {
			return fmt.Errorf("filter %s %s: requires a time dimension", f.Member, f.Operator)
		}
	case Contains, NotContains:
		convert = func(s string, _ bool) (any, error) { return "%" + s + "%", nil }
	}

	cond, err := p.condition(expr, f, convert)
	if err != nil {
		return fmt.Errorf("filter %s: %w", f.Member, err)
	}
	*target = append(*target, cond)
	return nil
}

// localDimension renders a dimension as read in the query time zone. Time
// dimensions are converted, so selected values and filter bounds agree.
func (p *planner) localDimension(d *types.DimensionSymbol) (string, error) {
	expr, err := p.render(d)
	if err != nil {
		return "", err
	}
	if d.Type != types.DimensionTime || render.IsUTC(p.tools.Timezone()) {
		return expr, nil
	}
	converted, err := p.tpl.ConvertTz(expr, p.tools.Timezone())
	if err != nil {
		return "", render.WrapGenerationError(d.FullName(), d.Kind().String(), err)
	}
	return converted, nil
}

// condition renders one filter, binding its values as parameters.
func (p *planner) condition(expr string, f Filter, convert func(string, bool) (any, error)) (string, error) {
	index := p.filter
	p.filter++

	bind := func(values []string, end func(i int) bool) ([]string, error) {
		single := len(values) == 1 && f.Operator != InDateRange && f.Operator != NotInDateRange
		placeholders := make([]string, len(values))
		for i, raw := range values {
			v, err := convert(raw, end(i))
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("f%d_%d", index, i)
			if single {
				name = fmt.Sprintf("f%d", index)
			}
			p.params = append(p.params, name)
			p.values[name] = v
			placeholders[i] = ":" + name
		}
		return placeholders, nil
	}
	never := func(int) bool { return false }

	switch f.Operator {
	case Set:
		return expr + " IS NOT NULL", nil
	case NotSet:
		return expr + " IS NULL", nil
	case InDateRange, NotInDateRange:
		ph, err := bind(f.Values, func(i int) bool { return i == 1 })
		if err != nil {
			return "", err
		}
		if f.Operator == InDateRange {
			return fmt.Sprintf("%s >= %s AND %s <= %s", expr, ph[0], expr, ph[1]), nil
		}
		return fmt.Sprintf("(%s < %s OR %s > %s)", expr, ph[0], expr, ph[1]), nil
	case Gt, Gte, Lt, Lte:
		ph, err := bind(f.Values, func(int) bool { return f.Operator == Lte })
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", expr, comparison[f.Operator], ph[0]), nil
	}

	ph, err := bind(f.Values, never)
	if err != nil {
		return "", err
	}
	switch f.Operator {
	case Equals:
		if len(ph) == 1 {
			return fmt.Sprintf("%s = %s", expr, ph[0]), nil
		}
		return fmt.Sprintf("%s IN (%s)", expr, strings.Join(ph, ", ")), nil
	case NotEquals:
		if len(ph) == 1 {
			return fmt.Sprintf("(%s <> %s OR %s IS NULL)", expr, ph[0], expr), nil
		}
		return fmt.Sprintf("(%s NOT IN (%s) OR %s IS NULL)", expr, strings.Join(ph, ", "), expr), nil
	case Contains:
		likes := make([]string, len(ph))
		for i, name := range ph {
			likes[i] = fmt.Sprintf("%s LIKE %s", expr, name)
		}
		if len(likes) == 1 {
			return likes[0], nil
		}
		return "(" + strings.Join(likes, " OR ") + ")", nil
	case NotContains:
		likes := make([]string, len(ph))
		for i, name := range ph {
			likes[i] = fmt.Sprintf("%s NOT LIKE %s", expr, name)
		}
		all := likes[0]
		if len(likes) > 1 {
			all = "(" + strings.Join(likes, " AND ") + ")"
		}
		return fmt.Sprintf("(%s OR %s IS NULL)", all, expr), nil
	default:
		return "", fmt.Errorf("unknown operator %q", f.Operator)
	}
}

var comparison = map[Operator]string{
	Gt:  ">",
	Gte: ">=",
	Lt:  "<",
	Lte: "<=",
}

// dimensionValue returns the converter for filter values of a dimension type.
func dimensionValue(t types.DimensionType) func(string, bool) (any, error) {
	switch t {
	case types.DimensionNumber:
		return numberValue
	case types.DimensionBoolean:
		return func(s string, _ bool) (any, error) {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a boolean", s)
			}
			return b, nil
		}
	case types.DimensionTime:
		return dateValue
	default:
		return func(s string, _ bool) (any, error) { return s, nil }
	}
}

func numberValue(s string, _ bool) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("value %q is not a number", s)
	}
	return f, nil
}

// dateLayouts are the accepted date and timestamp formats, without offsets.
var dateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// dateValue normalizes a date or timestamp to "YYYY-MM-DD HH:MM:SS[.fff]".
// A bare date is the start of the day, or its last millisecond when end is set.
func dateValue(s string, end bool) (any, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if end {
			return t.Format("2006-01-02") + " 23:59:59.999", nil
		}
		return t.Format("2006-01-02") + " 00:00:00", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02 15:04:05.999"), nil
		}
	}
	return nil, fmt.Errorf("value %q is not a date", s)
}

// groupedSQL renders SELECT ... FROM ... WHERE ... GROUP BY ... HAVING.
func (p *planner) groupedSQL() (string, error) {
	table, err := p.render(p.cube.Table())
	if err != nil {
		return "", err
	}
	alias, err := p.render(p.cube.Symbol())
	if err != nil {
		return "", err
	}

	if len(p.items) == 0 {
		return "", fmt.Errorf("post-aggregate expressions require selected members")
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	for i, item := range p.items {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(item.sql)
		sql.WriteString(" AS ")
		sql.WriteString(p.tpl.QuoteIdentifier(item.column.Name))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(table)
	sql.WriteString(" AS ")
	sql.WriteString(alias)

	if len(p.where) > 0 {
		sql.WriteString(" WHERE ")
		sql.WriteString(joinConditions(p.where))
	}

	var groupBy []string
	for i, item := range p.items {
		if !item.grouped {
			continue
		}
		if p.tpl.Capabilities().GroupByOrdinal {
			groupBy = append(groupBy, strconv.Itoa(i+1))
		} else {
			groupBy = append(groupBy, item.sql)
		}
	}
	if len(groupBy) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(groupBy, ", "))
	}

	if len(p.having) > 0 {
		sql.WriteString(" HAVING ")
		sql.WriteString(joinConditions(p.having))
	}
	return sql.String(), nil
}

func joinConditions(conds []string) string {
	if len(conds) == 1 {
		return conds[0]
	}
	wrapped := make([]string, len(conds))
	for i, c := range conds {
		wrapped[i] = "(" + c + ")"
	}
	return strings.Join(wrapped, " AND ")
}

// postAggregate wraps the grouped query and renders post-aggregate
// expressions over its columns.
func (p *planner) postAggregate(inner string) (string, []Column, error) {
	refs := make(map[string]string, len(p.items))
	for _, item := range p.items {
		refs[item.column.Member] = item.column.Name
	}
	refVisitor := p.visitor.WithTools(p.tools.WithReferences(innerAlias, refs))

	source := p.tpl.QuoteIdentifier(innerAlias)
	var sql strings.Builder
	sql.WriteString("SELECT ")
	for i, item := range p.items {
		if i > 0 {
			sql.WriteString(", ")
		}
		column := p.tpl.QuoteIdentifier(item.column.Name)
		sql.WriteString(source + "." + column + " AS " + column)
	}

	columns := make([]Column, 0, len(p.post))
	for _, expr := range p.post {
		for _, dep := range expr.Deps {
			if _, ok := refs[dep.FullName()]; !ok {
				return "", nil, fmt.Errorf("post-aggregate expression %s references %s, which is not selected", expr.Name, dep.FullName())
			}
		}
		rendered, err := refVisitor.Apply(expr, graphs.references.Root)
		if err != nil {
			return "", nil, err
		}
		col := Column{Name: p.tools.MemberAlias(expr.Name), Member: expr.Name, Kind: KindMemberExpression}
		if err := p.claimAlias(col); err != nil {
			return "", nil, err
		}
		sql.WriteString(", " + rendered + " AS " + p.tpl.QuoteIdentifier(col.Name))
		columns = append(columns, col)
	}

	sql.WriteString(" FROM (" + inner + ") AS " + source)
	return sql.String(), columns, nil
}

// orderAndPagination renders ORDER BY with column ordinals, then pagination.
// Without an explicit order the first time dimension sorts ascending, else
// the first measure descending, else the first dimension ascending.
func (p *planner) orderAndPagination(columns []Column) (string, error) {
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c.Member] = i + 1
	}
	for key, idx := range p.byMember {
		if _, ok := position[key]; !ok {
			position[key] = idx + 1
		}
	}

	var terms []string
	for _, o := range p.query.Order {
		pos, ok := position[o.Member]
		if !ok {
			return "", fmt.Errorf("order %s: member is not selected", o.Member)
		}
		dir := "ASC"
		if o.Direction == Desc {
			dir = "DESC"
		}
		terms = append(terms, fmt.Sprintf("%d %s", pos, dir))
	}
	if len(p.query.Order) == 0 {
		if term, ok := defaultOrder(columns); ok {
			terms = append(terms, term)
		}
	}

	var sql strings.Builder
	if len(terms) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(terms, ", "))
	}
	pagination, err := p.tpl.Pagination(p.query.Limit, p.query.Offset, len(terms) > 0)
	if err != nil {
		return "", err
	}
	sql.WriteString(pagination)
	return sql.String(), nil
}

func defaultOrder(columns []Column) (string, bool) {
	for _, kind := range []Kind{KindTimeDimension, KindMeasure, KindDimension} {
		for i, c := range columns {
			if c.Kind != kind {
				continue
			}
			if kind == KindMeasure {
				return fmt.Sprintf("%d DESC", i+1), true
			}
			return fmt.Sprintf("%d ASC", i+1), true
		}
	}
	return "", false
}
