package sqlnodes

import (
	"strings"

	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// EvaluateSQLNode renders a symbol's SQL template. It is the terminal node of
// every default chain and the fallback for kinds without a dedicated processor.
type EvaluateSQLNode struct{}

// NewEvaluateSQLNode creates a template evaluator.
func NewEvaluateSQLNode() *EvaluateSQLNode {
	return &EvaluateSQLNode{}
}

// ToSQL substitutes each {reference} in sym's template with the rendering of
// the matching dependency through next.
func (*EvaluateSQLNode) ToSQL(v Visitor, sym types.Symbol, _ *querytools.QueryTools, next Ref, _ render.Templates) (string, error) {
	if _, _, ok := types.TemplateOf(sym); !ok {
		return "", render.NewGenerationError(sym.FullName(), sym.Kind().String(), "symbol has no SQL expression")
	}
	return RenderTemplate(v, sym, next)
}

// Children returns nil.
func (*EvaluateSQLNode) Children() []Ref {
	return nil
}

// Kind returns NodeEvaluateSQL.
func (*EvaluateSQLNode) Kind() NodeKind {
	return NodeEvaluateSQL
}

// RenderTemplate renders the template carried by sym, applying next to each
// dependency. Dependency errors are returned unchanged.
func RenderTemplate(v Visitor, sym types.Symbol, next Ref) (string, error) {
	sql, deps, ok := types.TemplateOf(sym)
	if !ok {
		return "", render.NewGenerationError(sym.FullName(), sym.Kind().String(), "symbol has no SQL expression")
	}

	rendered := make([]string, len(deps))
	for i, dep := range deps {
		out, err := v.Apply(dep, next)
		if err != nil {
			return "", err
		}
		rendered[i] = out
	}

	var b strings.Builder
	for _, part := range sql.Parts {
		if part.IsRef() {
			b.WriteString(rendered[part.Dep])
			continue
		}
		b.WriteString(part.Literal)
	}
	return b.String(), nil
}
