package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// CubeNameNode renders a cube reference as its quoted alias.
type CubeNameNode struct{}

// NewCubeNameNode creates a cube name processor.
func NewCubeNameNode() *CubeNameNode {
	return &CubeNameNode{}
}

func (*CubeNameNode) ToSQL(_ Visitor, sym types.Symbol, tools *querytools.QueryTools, _ Ref, tpl render.Templates) (string, error) {
	c, ok := sym.(*types.CubeNameSymbol)
	if !ok {
		return "", render.NewGenerationError(sym.FullName(), sym.Kind().String(), "expected a cube name symbol")
	}
	return tpl.QuoteIdentifier(tools.CubeAlias(c.Name)), nil
}

// Children returns nil.
func (*CubeNameNode) Children() []Ref {
	return nil
}

// Kind returns NodeCubeName.
func (*CubeNameNode) Kind() NodeKind {
	return NodeCubeName
}

// CubeTableNode renders a cube's FROM source: a quoted table name, or a
// parenthesized subquery when the cube is defined by SQL.
type CubeTableNode struct{}

// NewCubeTableNode creates a cube table processor.
func NewCubeTableNode() *CubeTableNode {
	return &CubeTableNode{}
}

func (*CubeTableNode) ToSQL(v Visitor, sym types.Symbol, _ *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	t, ok := sym.(*types.CubeTableSymbol)
	if !ok {
		return "", render.NewGenerationError(sym.FullName(), sym.Kind().String(), "expected a cube table symbol")
	}
	if !t.IsSubquery() {
		if t.Table == "" {
			return "", render.NewGenerationError(t.FullName(), t.Kind().String(), "cube has neither a table nor sql")
		}
		return tpl.QuoteTable(t.Table), nil
	}
	sql, err := RenderTemplate(v, t, next)
	if err != nil {
		return "", err
	}
	return "(" + sql + ")", nil
}

// Children returns nil.
func (*CubeTableNode) Children() []Ref {
	return nil
}

// Kind returns NodeCubeTable.
func (*CubeTableNode) Kind() NodeKind {
	return NodeCubeTable
}
