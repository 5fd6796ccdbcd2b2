// Package cubeql compiles semantic-layer queries into dialect-specific SQL.
//
// A Schema describes cubes: a source table plus the dimensions and measures
// defined over it. Every member's SQL is resolved eagerly into a graph of
// symbols. Queries select members by path ("orders.status") and are rendered
// by walking that graph through a set of SQL nodes, one processor per member
// kind, with the syntax supplied by a dialect's templates.
//
// # Basic Usage
//
//	schema, err := cubeql.LoadSchemaFile("cubes.yml")
//	if err != nil {
//		return err
//	}
//
//	result, err := cubeql.Select(schema).
//		Dimensions("orders.status").
//		Measures("orders.count").
//		TimeDimension("orders.createdAt", cubeql.Month).
//		Limit(100).
//		Render(postgres.New())
//	// result.SQL: SELECT "orders"."status" AS "orders__status", ...
//	// result.RequiredParams: []string{"f0", ...}
//
// # Dialects
//
// Dialects implement Templates. Available: postgres, sqlite, mssql, mariadb,
// databricks. NewDialect selects one by name.
//
// # Output Format
//
// Filter values are bound as named parameters (`:f0`) in the manner of
// sqlx. QueryResult.Bind rewrites them to a driver's positional style.
// Identifiers are always quoted.
package cubeql

import (
	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

// Templates supplies dialect-specific SQL syntax.
type Templates = render.Templates

// Capabilities describes the SQL features a dialect supports.
type Capabilities = render.Capabilities

// GenerationError is returned when a member cannot be rendered.
type GenerationError = render.GenerationError

// UnsupportedFeatureError indicates a feature not supported by the dialect.
type UnsupportedFeatureError = render.UnsupportedFeatureError

// ErrGeneration matches any GenerationError via errors.Is.
var ErrGeneration = render.ErrGeneration

// Symbol is a resolved member of a schema.
type Symbol = types.Symbol

// Kind identifies the kind of a Symbol.
type Kind = types.Kind

// Re-export kind constants for public API.
const (
	KindDimension        = types.KindDimension
	KindTimeDimension    = types.KindTimeDimension
	KindMeasure          = types.KindMeasure
	KindCubeName         = types.KindCubeName
	KindCubeTable        = types.KindCubeTable
	KindMemberExpression = types.KindMemberExpression
)

// DimensionType is the declared type of a dimension.
type DimensionType = types.DimensionType

// Re-export dimension type constants for public API.
const (
	TypeString  = types.DimensionString
	TypeNumber  = types.DimensionNumber
	TypeTime    = types.DimensionTime
	TypeBoolean = types.DimensionBoolean
)

// MeasureType is the aggregation a measure applies.
type MeasureType = types.MeasureType

// Re-export measure type constants for public API.
const (
	Count               = types.MeasureCount
	CountDistinct       = types.MeasureCountDistinct
	CountDistinctApprox = types.MeasureCountDistinctApprox
	Sum                 = types.MeasureSum
	Avg                 = types.MeasureAvg
	Min                 = types.MeasureMin
	Max                 = types.MeasureMax
	Number              = types.MeasureNumber
)

// Granularity is the truncation applied to a time dimension.
type Granularity = types.Granularity

// Re-export granularity constants for public API.
const (
	Second  = types.GranularitySecond
	Minute  = types.GranularityMinute
	Hour    = types.GranularityHour
	Day     = types.GranularityDay
	Week    = types.GranularityWeek
	Month   = types.GranularityMonth
	Quarter = types.GranularityQuarter
	Year    = types.GranularityYear
)

// ParseGranularity parses a granularity name, ignoring case.
func ParseGranularity(s string) (Granularity, error) {
	return types.ParseGranularity(s)
}
