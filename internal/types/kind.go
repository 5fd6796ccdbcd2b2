package types

// Kind identifies the variant of a member symbol.
type Kind int

const (
	KindDimension Kind = iota
	KindTimeDimension
	KindMeasure
	KindCubeName
	KindCubeTable
	KindMemberExpression
)

// String returns the kind name used in error messages and introspection output.
func (k Kind) String() string {
	switch k {
	case KindDimension:
		return "dimension"
	case KindTimeDimension:
		return "time_dimension"
	case KindMeasure:
		return "measure"
	case KindCubeName:
		return "cube_name"
	case KindCubeTable:
		return "cube_table"
	case KindMemberExpression:
		return "member_expression"
	default:
		return "unknown"
	}
}

// AllKinds returns every symbol kind in declaration order.
// New kinds must be appended here; dispatch tests enumerate this list.
func AllKinds() []Kind {
	return []Kind{
		KindDimension,
		KindTimeDimension,
		KindMeasure,
		KindCubeName,
		KindCubeTable,
		KindMemberExpression,
	}
}

// DimensionType represents the declared type of a dimension.
type DimensionType string

const (
	DimensionString  DimensionType = "string"
	DimensionNumber  DimensionType = "number"
	DimensionTime    DimensionType = "time"
	DimensionBoolean DimensionType = "boolean"
)

// Valid reports whether t is a known dimension type.
func (t DimensionType) Valid() bool {
	switch t {
	case DimensionString, DimensionNumber, DimensionTime, DimensionBoolean:
		return true
	default:
		return false
	}
}

// MeasureType represents the aggregation a measure applies.
type MeasureType string

const (
	MeasureCount               MeasureType = "count"
	MeasureCountDistinct       MeasureType = "countDistinct"
	MeasureCountDistinctApprox MeasureType = "countDistinctApprox"
	MeasureSum                 MeasureType = "sum"
	MeasureAvg                 MeasureType = "avg"
	MeasureMin                 MeasureType = "min"
	MeasureMax                 MeasureType = "max"
	// MeasureNumber is a calculated measure; its SQL is not aggregated.
	MeasureNumber MeasureType = "number"
)

// Valid reports whether t is a known measure type.
func (t MeasureType) Valid() bool {
	switch t {
	case MeasureCount, MeasureCountDistinct, MeasureCountDistinctApprox,
		MeasureSum, MeasureAvg, MeasureMin, MeasureMax, MeasureNumber:
		return true
	default:
		return false
	}
}

// Aggregated reports whether the measure wraps its SQL in an aggregate function.
func (t MeasureType) Aggregated() bool {
	return t != MeasureNumber
}
