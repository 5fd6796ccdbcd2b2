package render

// Capabilities describes the SQL features supported by a dialect.
type Capabilities struct {
	GroupByOrdinal      bool `json:"group_by_ordinal"`      // GROUP BY 1, 2
	TimezoneConversion  bool `json:"timezone_conversion"`   // Converting UTC timestamps to a named zone
	ApproxCountDistinct bool `json:"approx_count_distinct"` // Approximate distinct counts
	OffsetWithoutLimit  bool `json:"offset_without_limit"`  // OFFSET without a LIMIT
}
