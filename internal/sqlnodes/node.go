// Package sqlnodes implements the rendering strategies that turn member
// symbols into SQL text.
//
// Every strategy implements Node. Strategies are composed explicitly: a
// decorator holds the Ref of the node it wraps and decides per call whether to
// render directly, forward, or both. The RootNode dispatches each symbol to the
// processor registered for its kind.
//
// Nodes live in an Arena and refer to each other by Ref. The arena owns every
// node of a build; once frozen it is read-only and may be shared.
package sqlnodes

import (
	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Ref addresses a node within an Arena.
type Ref int

// NoRef is the zero-value sentinel for an unset reference.
const NoRef Ref = -1

// Visitor drives traversal of the member graph. Nodes call Apply to render
// child symbols; next is the processor chain the child should go through.
type Visitor interface {
	Apply(sym types.Symbol, next Ref) (string, error)
}

// Node is the rendering capability shared by every strategy.
type Node interface {
	// ToSQL renders sym. next is the caller-supplied chain used for any
	// recursive rendering of child symbols. Implementations must not mutate
	// tools, tpl, or any shared state.
	ToSQL(v Visitor, sym types.Symbol, tools *querytools.QueryTools, next Ref, tpl render.Templates) (string, error)

	// Children returns the refs this node holds directly.
	Children() []Ref

	// Kind identifies the strategy variant for introspection.
	Kind() NodeKind
}

// NodeKind identifies a strategy variant.
type NodeKind int

const (
	NodeCustom NodeKind = iota
	NodeRoot
	NodeEvaluateSQL
	NodeAutoPrefix
	NodeMeasure
	NodeTimeDimension
	NodeCubeName
	NodeCubeTable
	NodeRenderReferences
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeEvaluateSQL:
		return "evaluate_sql"
	case NodeAutoPrefix:
		return "auto_prefix"
	case NodeMeasure:
		return "measure"
	case NodeTimeDimension:
		return "time_dimension"
	case NodeCubeName:
		return "cube_name"
	case NodeCubeTable:
		return "cube_table"
	case NodeRenderReferences:
		return "render_references"
	default:
		return "custom"
	}
}
