package cubeql_test

import (
	"strings"
	"testing"

	"github.com/zoobzio/cubeql"
	"github.com/zoobzio/cubeql/postgres"
	cqtesting "github.com/zoobzio/cubeql/testing"
)

func TestBuilder_Render(t *testing.T) {
	result, err := cubeql.Select(cqtesting.TestSchema(t)).
		Dimensions("orders.status").
		Measures("orders.count").
		WhereMember("orders.status", cubeql.Equals, "paid").
		OrderBy("orders.count", cubeql.Desc).
		Limit(10).
		Render(postgres.New())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	cqtesting.AssertSQL(t, `SELECT "orders"."status" AS "orders__status", COUNT(*) AS "orders__count" FROM "orders" AS "orders" WHERE "orders"."status" = :f0 GROUP BY 1 ORDER BY 2 DESC LIMIT 10`, result.SQL)
	cqtesting.AssertParams(t, []string{"f0"}, result.RequiredParams)
	cqtesting.AssertColumns(t, result, "orders__status", "orders__count")
}

func TestBuilder_TimeDimensionAndDateRange(t *testing.T) {
	q, err := cubeql.Select(cqtesting.TestSchema(t)).
		TimeDimension("orders.createdAt", cubeql.Week).
		DateRange("orders.createdAt", "2024-01-01", "2024-02-01").
		DateRange("users.createdAt", "2024-01-01", "2024-02-01").
		Query()
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(q.TimeDimensions) != 2 {
		t.Fatalf("len(TimeDimensions) = %d, want 2", len(q.TimeDimensions))
	}
	if q.TimeDimensions[0].Granularity != cubeql.Week || len(q.TimeDimensions[0].DateRange) != 2 {
		t.Errorf("TimeDimensions[0] = %+v", q.TimeDimensions[0])
	}
	if q.TimeDimensions[1].Granularity != "" {
		t.Errorf("TimeDimensions[1] should be filter-only, got %+v", q.TimeDimensions[1])
	}
}

func TestBuilder_PostAggregate(t *testing.T) {
	result := cubeql.Select(cqtesting.TestSchema(t)).
		Dimensions("orders.status").
		Measures("orders.revenue").
		PostAggregate("doubled", "{orders.revenue} * 2").
		MustRender(postgres.New())
	if !strings.HasPrefix(result.SQL, `SELECT "q_0"."orders__status" AS "orders__status"`) {
		t.Errorf("SQL = %s", result.SQL)
	}
	cqtesting.AssertColumns(t, result, "orders__status", "orders__revenue", "doubled")
}

func TestBuilder_Expression(t *testing.T) {
	result := cubeql.Select(cqtesting.TestSchema(t)).
		Measures("orders.count").
		Expression("upperStatus", "UPPER({orders.status})").
		MustRender(postgres.New())
	cqtesting.AssertSQL(t, `SELECT COUNT(*) AS "orders__count", UPPER("orders"."status") AS "upper_status" FROM "orders" AS "orders" GROUP BY 2 ORDER BY 1 DESC`, result.SQL)
}

func TestBuilder_Errors(t *testing.T) {
	schema := cqtesting.TestSchema(t)
	tests := []struct {
		name    string
		builder *cubeql.Builder
		want    string
	}{
		{"nil schema", cubeql.Select(nil).Dimensions("orders.status"), "schema cannot be nil"},
		{"unknown dimension", cubeql.Select(schema).Dimensions("orders.nope"), "unknown member"},
		{"measure as dimension", cubeql.Select(schema).Dimensions("orders.count"), "not a dimension"},
		{"dimension as measure", cubeql.Select(schema).Measures("orders.status"), "not a measure"},
		{"bad granularity", cubeql.Select(schema).TimeDimension("orders.createdAt", "fortnight"), "unknown granularity"},
		{"bad filter", cubeql.Select(schema).Measures("orders.count").WhereMember("orders.status", cubeql.Gt), "exactly one value"},
		{"empty expression name", cubeql.Select(schema).Expression("", "1"), "name cannot be empty"},
		{"bad direction", cubeql.Select(schema).Measures("orders.count").OrderBy("orders.count", "sideways"), "invalid direction"},
		{"negative limit", cubeql.Select(schema).Measures("orders.count").Limit(-1), "non-negative"},
		{"negative offset", cubeql.Select(schema).Measures("orders.count").Offset(-1), "non-negative"},
		{"bad config", cubeql.Select(schema).WithConfig(cubeql.Config{Dialect: "oracle", MaxDepth: 1}), "unknown dialect"},
		{"empty query", cubeql.Select(schema), "selects nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Render(postgres.New())
			cqtesting.AssertErrorContains(t, err, tt.want)
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	b := cubeql.Select(cqtesting.TestSchema(t)).
		Dimensions("orders.nope").
		Limit(-1)
	if err := b.GetError(); err == nil || !strings.Contains(err.Error(), "orders.nope") {
		t.Errorf("GetError() = %v, want the first error", err)
	}
}

func TestBuilder_MustRenderPanics(t *testing.T) {
	cqtesting.AssertPanics(t, func() {
		cubeql.Select(cqtesting.TestSchema(t)).Dimensions("orders.nope").MustRender(postgres.New())
	})
}

func TestBuilder_WithConfig(t *testing.T) {
	cfg := cubeql.DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	result := cubeql.Select(cqtesting.TestSchema(t)).
		TimeDimension("orders.createdAt", cubeql.Day).
		Measures("orders.count").
		WithConfig(cfg).
		MustRender(postgres.New())
	if !strings.Contains(result.SQL, "AT TIME ZONE 'Europe/Berlin'") {
		t.Errorf("SQL = %s", result.SQL)
	}

	override := cubeql.Select(cqtesting.TestSchema(t)).
		TimeDimension("orders.createdAt", cubeql.Day).
		Measures("orders.count").
		WithConfig(cfg).
		Timezone("UTC").
		MustRender(postgres.New())
	if strings.Contains(override.SQL, "AT TIME ZONE") {
		t.Errorf("query time zone should override config: %s", override.SQL)
	}
}
