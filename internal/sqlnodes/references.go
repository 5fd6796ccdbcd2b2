package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// RenderReferencesNode renders members that were already computed by an
// inner query as a column of that query, e.g. "q_0"."orders__count".
// Members without a reference are forwarded to the wrapped node.
type RenderReferencesNode struct {
	arena *Arena
	input Ref
}

// NewRenderReferencesNode wraps input.
func NewRenderReferencesNode(arena *Arena, input Ref) *RenderReferencesNode {
	return &RenderReferencesNode{arena: arena, input: input}
}

func (n *RenderReferencesNode) ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	if source, column, ok := tools.Reference(sym.FullName()); ok {
		return tpl.QuoteIdentifier(source) + "." + tpl.QuoteIdentifier(column), nil
	}
	return n.arena.Node(n.input).ToSQL(v, sym, tools, next, tpl)
}

// Children returns the wrapped node.
func (n *RenderReferencesNode) Children() []Ref {
	return []Ref{n.input}
}

// Kind returns NodeRenderReferences.
func (*RenderReferencesNode) Kind() NodeKind {
	return NodeRenderReferences
}
