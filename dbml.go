package cubeql

import (
	"fmt"
	"strings"

	"github.com/zoobzio/cubeql/internal/types"
	"github.com/zoobzio/dbml"
)

// NewFromDBML scaffolds a schema from a DBML project: one cube per table,
// one dimension per column and a count measure per cube. A column named id
// becomes the primary key.
func NewFromDBML(project *dbml.Project) (*Schema, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	defs := make([]CubeDefinition, 0, len(project.Tables))
	for _, table := range project.Tables {
		def := CubeDefinition{
			Name:     table.Name,
			SQLTable: table.Name,
			Measures: []MeasureDefinition{{Name: "count", Type: types.MeasureCount}},
		}
		for _, col := range table.Columns {
			def.Dimensions = append(def.Dimensions, DimensionDefinition{
				Name:       col.Name,
				SQL:        col.Name,
				Type:       columnDimensionType(col.Type),
				PrimaryKey: col.Name == "id",
			})
		}
		defs = append(defs, def)
	}
	return NewSchema(defs...)
}

// columnDimensionType maps a DBML column type to a dimension type.
// Unknown types map to string.
func columnDimensionType(columnType string) types.DimensionType {
	t := strings.ToLower(strings.TrimSpace(columnType))
	if i := strings.IndexAny(t, "( "); i > 0 {
		t = t[:i]
	}
	switch t {
	case "timestamp", "timestamptz", "datetime", "datetime2", "date":
		return types.DimensionTime
	case "int", "integer", "smallint", "bigint", "tinyint", "int2", "int4", "int8",
		"serial", "bigserial", "decimal", "numeric", "real", "float", "float4", "float8",
		"double", "money":
		return types.DimensionNumber
	case "bool", "boolean", "bit":
		return types.DimensionBoolean
	default:
		return types.DimensionString
	}
}
