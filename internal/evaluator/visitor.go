// Package evaluator drives the traversal of a member graph through a
// processor graph.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/sqlnodes"
	"github.com/zoobzio/cubeql/internal/types"
)

// DefaultMaxDepth bounds member graph recursion.
const DefaultMaxDepth = 64

// ErrMaxDepth is returned when rendering recurses deeper than the visitor allows.
var ErrMaxDepth = errors.New("maximum render depth exceeded")

// Visitor renders symbols through the nodes of one arena.
// A Visitor is not safe for concurrent use; create one per build.
type Visitor struct {
	arena     *sqlnodes.Arena
	tools     *querytools.QueryTools
	templates render.Templates
	maxDepth  int
	depth     int
}

// Option configures a Visitor.
type Option func(*Visitor)

// WithMaxDepth sets the recursion limit. Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(v *Visitor) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// New creates a visitor over arena.
func New(arena *sqlnodes.Arena, tools *querytools.QueryTools, tpl render.Templates, opts ...Option) *Visitor {
	if tools == nil {
		tools = querytools.New()
	}
	v := &Visitor{
		arena:     arena,
		tools:     tools,
		templates: tpl,
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Apply renders sym with the node at next.
func (v *Visitor) Apply(sym types.Symbol, next sqlnodes.Ref) (string, error) {
	if sym == nil {
		return "", render.NewGenerationError("", "", "nil symbol")
	}
	if _, ok := v.arena.Lookup(next); !ok {
		return "", render.NewGenerationError(sym.FullName(), sym.Kind().String(), "no node for ref %d", next)
	}
	if v.depth >= v.maxDepth {
		return "", &render.GenerationError{
			Member: sym.FullName(),
			Kind:   sym.Kind().String(),
			Reason: fmt.Sprintf("depth %d", v.maxDepth),
			Err:    ErrMaxDepth,
		}
	}

	v.depth++
	defer func() { v.depth-- }()
	return v.arena.Node(next).ToSQL(v, sym, v.tools, next, v.templates)
}

// Tools returns the query tools passed to every node.
func (v *Visitor) Tools() *querytools.QueryTools {
	return v.tools
}

// WithTools returns a visitor over the same arena and templates using tools.
func (v *Visitor) WithTools(tools *querytools.QueryTools) *Visitor {
	return &Visitor{
		arena:     v.arena,
		tools:     tools,
		templates: v.templates,
		maxDepth:  v.maxDepth,
	}
}
