package types

import (
	"fmt"
	"strings"
)

// Granularity represents the truncation applied to a time dimension.
type Granularity string

const (
	GranularitySecond  Granularity = "second"
	GranularityMinute  Granularity = "minute"
	GranularityHour    Granularity = "hour"
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Granularities returns all supported granularities from finest to coarsest.
func Granularities() []Granularity {
	return []Granularity{
		GranularitySecond,
		GranularityMinute,
		GranularityHour,
		GranularityDay,
		GranularityWeek,
		GranularityMonth,
		GranularityQuarter,
		GranularityYear,
	}
}

// ParseGranularity parses a granularity name, ignoring case.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Granularities() {
		if g == known {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}
