package sqlnodes

// Nodes is a built processor graph. Root dispatches every symbol; the other
// refs expose the individual processors for composition and inspection.
type Nodes struct {
	Arena         *Arena
	Root          Ref
	Evaluate      Ref
	Dimension     Ref
	TimeDimension Ref
	Measure       Ref
	CubeName      Ref
	CubeTable     Ref
}

// NewDefaultNodes builds the standard processor graph into arena:
//
//	dimension      AutoPrefix(EvaluateSQL)
//	time dimension TimeDimension(dimension)
//	measure        Measure(AutoPrefix(EvaluateSQL))
//	cube name      CubeName
//	cube table     CubeTable
//	default        EvaluateSQL
//
// The EvaluateSQL node is shared by every chain.
func NewDefaultNodes(arena *Arena) Nodes {
	evaluate := arena.Add(NewEvaluateSQLNode())
	dimension := arena.Add(NewAutoPrefixNode(arena, evaluate))
	timeDimension := arena.Add(NewTimeDimensionNode(arena, dimension))
	measure := arena.Add(NewMeasureNode(arena, arena.Add(NewAutoPrefixNode(arena, evaluate))))
	cubeName := arena.Add(NewCubeNameNode())
	cubeTable := arena.Add(NewCubeTableNode())
	root := arena.Add(NewRootNode(arena, dimension, timeDimension, measure, cubeName, cubeTable, evaluate))

	return Nodes{
		Arena:         arena,
		Root:          root,
		Evaluate:      evaluate,
		Dimension:     dimension,
		TimeDimension: timeDimension,
		Measure:       measure,
		CubeName:      cubeName,
		CubeTable:     cubeTable,
	}
}

// NewReferenceNodes builds a graph for queries over a pre-aggregated inner
// query. Dimensions, time dimensions, measures and expressions that the
// query tools hold a reference for render as inner columns; anything else
// falls through to the default processors.
func NewReferenceNodes(arena *Arena) Nodes {
	base := NewDefaultNodes(arena)
	dimension := arena.Add(NewRenderReferencesNode(arena, base.Dimension))
	timeDimension := arena.Add(NewRenderReferencesNode(arena, base.TimeDimension))
	measure := arena.Add(NewRenderReferencesNode(arena, base.Measure))
	fallback := arena.Add(NewRenderReferencesNode(arena, base.Evaluate))
	root := arena.Add(NewRootNode(arena, dimension, timeDimension, measure, base.CubeName, base.CubeTable, fallback))

	return Nodes{
		Arena:         arena,
		Root:          root,
		Evaluate:      base.Evaluate,
		Dimension:     dimension,
		TimeDimension: timeDimension,
		Measure:       measure,
		CubeName:      base.CubeName,
		CubeTable:     base.CubeTable,
	}
}
