package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// AutoPrefixNode qualifies bare column names with the owning cube's alias.
// "status" on cube orders renders as "orders"."status". Anything else is
// forwarded to the wrapped node.
type AutoPrefixNode struct {
	arena *Arena
	input Ref
}

// NewAutoPrefixNode wraps input.
func NewAutoPrefixNode(arena *Arena, input Ref) *AutoPrefixNode {
	return &AutoPrefixNode{arena: arena, input: input}
}

func (n *AutoPrefixNode) ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	sql, _, ok := types.TemplateOf(sym)
	cube := types.OwningCube(sym)
	if !ok || cube == nil || !sql.IsBareIdentifier() {
		return n.arena.Node(n.input).ToSQL(v, sym, tools, next, tpl)
	}
	switch sym.Kind() {
	case types.KindDimension, types.KindMeasure:
	default:
		return n.arena.Node(n.input).ToSQL(v, sym, tools, next, tpl)
	}

	alias, err := v.Apply(cube, next)
	if err != nil {
		return "", err
	}
	return alias + "." + tpl.QuoteIdentifier(sql.Identifier()), nil
}

// Children returns the wrapped node.
func (n *AutoPrefixNode) Children() []Ref {
	return []Ref{n.input}
}

// Kind returns NodeAutoPrefix.
func (*AutoPrefixNode) Kind() NodeKind {
	return NodeAutoPrefix
}

// Input returns the wrapped node ref.
func (n *AutoPrefixNode) Input() Ref {
	return n.input
}
