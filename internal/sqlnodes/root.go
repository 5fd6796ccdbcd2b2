package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// RootNode routes each symbol to the processor registered for its kind.
// Any kind without an explicit processor goes to the default processor.
type RootNode struct {
	arena         *Arena
	dimension     Ref
	timeDimension Ref
	measure       Ref
	cubeName      Ref
	cubeTable     Ref
	fallback      Ref
}

// NewRootNode creates a dispatcher over six processors.
// The refs are not validated.
func NewRootNode(arena *Arena, dimension, timeDimension, measure, cubeName, cubeTable, fallback Ref) *RootNode {
	return &RootNode{
		arena:         arena,
		dimension:     dimension,
		timeDimension: timeDimension,
		measure:       measure,
		cubeName:      cubeName,
		cubeTable:     cubeTable,
		fallback:      fallback,
	}
}

// ToSQL forwards the call, with identical arguments, to the processor for
// sym's kind. Errors are returned unchanged.
func (r *RootNode) ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error) {
	return r.arena.Node(r.ProcessorFor(sym.Kind())).ToSQL(v, sym, tools, next, tpl)
}

// ProcessorFor returns the processor ref used for kind.
func (r *RootNode) ProcessorFor(kind types.Kind) Ref {
	switch kind {
	case types.KindDimension:
		return r.dimension
	case types.KindTimeDimension:
		return r.timeDimension
	case types.KindMeasure:
		return r.measure
	case types.KindCubeName:
		return r.cubeName
	case types.KindCubeTable:
		return r.cubeTable
	default:
		return r.fallback
	}
}

// Children returns the dimension, measure, cube name and default processors.
// The time dimension and cube table processors are not listed.
func (r *RootNode) Children() []Ref {
	return []Ref{r.dimension, r.measure, r.cubeName, r.fallback}
}

// Kind returns NodeRoot.
func (r *RootNode) Kind() NodeKind {
	return NodeRoot
}

// DimensionProcessor returns the dimension processor ref.
func (r *RootNode) DimensionProcessor() Ref {
	return r.dimension
}

// TimeDimensionProcessor returns the time dimension processor ref.
func (r *RootNode) TimeDimensionProcessor() Ref {
	return r.timeDimension
}

// MeasureProcessor returns the measure processor ref.
func (r *RootNode) MeasureProcessor() Ref {
	return r.measure
}

// CubeNameProcessor returns the cube name processor ref.
func (r *RootNode) CubeNameProcessor() Ref {
	return r.cubeName
}

// CubeTableProcessor returns the cube table processor ref.
func (r *RootNode) CubeTableProcessor() Ref {
	return r.cubeTable
}

// DefaultProcessor returns the default processor ref.
func (r *RootNode) DefaultProcessor() Ref {
	return r.fallback
}
