package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// TimeDimensionNode renders a time dimension as its base dimension converted
// to the query time zone and truncated to the requested granularity.
type TimeDimensionNode struct {
	arena     *Arena
	dimension Ref
}

// NewTimeDimensionNode renders base dimensions through dimension.
func NewTimeDimensionNode(arena *Arena, dimension Ref) *TimeDimensionNode {
	return &TimeDimensionNode{arena: arena, dimension: dimension}
}

func (n *TimeDimensionNode) ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	td, ok := sym.(*types.TimeDimensionSymbol)
	if !ok {
		return n.arena.Node(n.dimension).ToSQL(v, sym, tools, next, tpl)
	}

	expr, err := n.arena.Node(n.dimension).ToSQL(v, td.Base, tools, next, tpl)
	if err != nil {
		return "", err
	}

	if tz := tools.Timezone(); !render.IsUTC(tz) {
		if !render.ValidTimezone(tz) {
			return "", render.NewGenerationError(td.FullName(), td.Kind().String(), "invalid time zone %q", tz)
		}
		expr, err = tpl.ConvertTz(expr, tz)
		if err != nil {
			return "", render.WrapGenerationError(td.FullName(), td.Kind().String(), err)
		}
	}

	out, err := tpl.TimeGroupedColumn(td.Granularity, expr)
	if err != nil {
		return "", render.WrapGenerationError(td.FullName(), td.Kind().String(), err)
	}
	return out, nil
}

// Children returns the dimension processor.
func (n *TimeDimensionNode) Children() []Ref {
	return []Ref{n.dimension}
}

// Kind returns NodeTimeDimension.
func (*TimeDimensionNode) Kind() NodeKind {
	return NodeTimeDimension
}
