package evaluator

import (
	"errors"
	"testing"

	"github.com/zoobzio/cubeql/internal/querytools"
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/sqlnodes"
	"github.com/zoobzio/cubeql/internal/types"
	"github.com/zoobzio/cubeql/sqlite"
)

func chain(t *testing.T, depth int) (types.Symbol, *types.CubeNameSymbol) {
	t.Helper()
	cube := types.NewCubeName("events")
	var prev *types.DimensionSymbol
	for i := 0; i < depth; i++ {
		var (
			d   *types.DimensionSymbol
			err error
		)
		if prev == nil {
			d, err = types.NewDimension(cube, "d0", types.DimensionNumber, types.MustParseMemberSQL("value"), nil)
		} else {
			d, err = types.NewDimension(cube, "d", types.DimensionNumber, types.MustParseMemberSQL("{prev} + 1"), []types.Symbol{prev})
		}
		if err != nil {
			t.Fatalf("NewDimension() error = %v", err)
		}
		prev = d
	}
	return prev, cube
}

func TestVisitor_Apply(t *testing.T) {
	arena := sqlnodes.NewArena()
	nodes := sqlnodes.NewDefaultNodes(arena)
	arena.Freeze()

	sym, _ := chain(t, 3)
	v := New(arena, nil, sqlite.New())
	got, err := v.Apply(sym, nodes.Root)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if want := `"events"."value" + 1 + 1`; got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}
	if v.depth != 0 {
		t.Errorf("depth = %d after Apply, want 0", v.depth)
	}
}

func TestVisitor_MaxDepth(t *testing.T) {
	arena := sqlnodes.NewArena()
	nodes := sqlnodes.NewDefaultNodes(arena)
	arena.Freeze()

	sym, _ := chain(t, 5)
	v := New(arena, querytools.New(), sqlite.New(), WithMaxDepth(3))
	_, err := v.Apply(sym, nodes.Root)
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("expected ErrMaxDepth, got %v", err)
	}
	if !errors.Is(err, render.ErrGeneration) {
		t.Errorf("expected generation error, got %v", err)
	}
	if v.depth != 0 {
		t.Errorf("depth = %d after failed Apply, want 0", v.depth)
	}
}

func TestVisitor_InvalidInput(t *testing.T) {
	arena := sqlnodes.NewArena()
	nodes := sqlnodes.NewDefaultNodes(arena)
	v := New(arena, nil, sqlite.New())

	if _, err := v.Apply(nil, nodes.Root); !errors.Is(err, render.ErrGeneration) {
		t.Errorf("Apply(nil) error = %v, want generation error", err)
	}
	cube := types.NewCubeName("events")
	if _, err := v.Apply(cube, sqlnodes.Ref(arena.Len())); !errors.Is(err, render.ErrGeneration) {
		t.Errorf("Apply(bad ref) error = %v, want generation error", err)
	}
}

func TestVisitor_WithTools(t *testing.T) {
	arena := sqlnodes.NewArena()
	nodes := sqlnodes.NewDefaultNodes(arena)
	base := New(arena, nil, sqlite.New())
	aliased := base.WithTools(querytools.New(querytools.WithCubeAlias("events", "e")))

	cube := types.NewCubeName("events")
	got, err := aliased.Apply(cube, nodes.Root)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got != `"e"` {
		t.Errorf("Apply() = %q, want %q", got, `"e"`)
	}
	if base.Tools() == aliased.Tools() {
		t.Error("WithTools should not change the original visitor")
	}
}

func TestWithMaxDepth_IgnoresNonPositive(t *testing.T) {
	v := New(sqlnodes.NewArena(), nil, sqlite.New(), WithMaxDepth(0))
	if v.maxDepth != DefaultMaxDepth {
		t.Errorf("maxDepth = %d, want %d", v.maxDepth, DefaultMaxDepth)
	}
}
