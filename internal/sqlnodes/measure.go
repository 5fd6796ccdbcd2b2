package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// MeasureNode wraps a measure's rendered expression in its aggregation.
// Non-measure symbols are forwarded to the wrapped node.
type MeasureNode struct {
	arena *Arena
	input Ref
}

// NewMeasureNode wraps input.
func NewMeasureNode(arena *Arena, input Ref) *MeasureNode {
	return &MeasureNode{arena: arena, input: input}
}

func (n *MeasureNode) ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	m, ok := sym.(*types.MeasureSymbol)
	if !ok {
		return n.arena.Node(n.input).ToSQL(v, sym, tools, next, tpl)
	}

	var expr string
	if !m.SQL.IsEmpty() {
		var err error
		expr, err = n.arena.Node(n.input).ToSQL(v, sym, tools, next, tpl)
		if err != nil {
			return "", err
		}
	}

	out, err := tpl.Aggregate(m.Type, expr)
	if err != nil {
		return "", render.WrapGenerationError(m.FullName(), m.Kind().String(), err)
	}
	return out, nil
}

// Children returns the wrapped node.
func (n *MeasureNode) Children() []Ref {
	return []Ref{n.input}
}

// Kind returns NodeMeasure.
func (*MeasureNode) Kind() NodeKind {
	return NodeMeasure
}

// Input returns the wrapped node ref.
func (n *MeasureNode) Input() Ref {
	return n.input
}
