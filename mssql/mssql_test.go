package mssql

import (
	"testing"

	"github.com/zoobzio/cubeql/internal/render"
	"github.com/zoobzio/cubeql/internal/types"
)

var _ render.Templates = (*Renderer)(nil)

func intPtr(n int) *int { return &n }

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.Dialect() != "mssql" {
		t.Errorf("Dialect() = %q, want mssql", r.Dialect())
	}
}

func TestQuoting(t *testing.T) {
	r := New()
	// SQL Server uses square brackets for quoting
	if got := r.QuoteIdentifier("status"); got != "[status]" {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
	if got := r.QuoteIdentifier("a]b"); got != "[a]]b]" {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
	if got := r.QuoteTable("dbo.orders"); got != "[dbo].[orders]" {
		t.Errorf("QuoteTable() = %q", got)
	}
}

func TestTimeGroupedColumn(t *testing.T) {
	r := New()
	got, err := r.TimeGroupedColumn(types.GranularityMonth, "[o].[ts]")
	if err != nil {
		t.Fatalf("TimeGroupedColumn() error = %v", err)
	}
	if got != "DATETRUNC(month, [o].[ts])" {
		t.Errorf("TimeGroupedColumn() = %q", got)
	}
	got, err = r.TimeGroupedColumn(types.GranularityWeek, "[o].[ts]")
	if err != nil {
		t.Fatalf("TimeGroupedColumn() error = %v", err)
	}
	if got != "DATETRUNC(iso_week, [o].[ts])" {
		t.Errorf("TimeGroupedColumn() = %q", got)
	}
}

func TestConvertTz(t *testing.T) {
	got, err := New().ConvertTz("[o].[ts]", "Pacific Standard Time")
	if err != nil {
		t.Fatalf("ConvertTz() error = %v", err)
	}
	want := "CAST([o].[ts] AT TIME ZONE 'UTC' AT TIME ZONE 'Pacific Standard Time' AS DATETIME2)"
	if got != want {
		t.Errorf("ConvertTz() = %q, want %q", got, want)
	}
}

func TestAggregate_Approx(t *testing.T) {
	got, err := New().Aggregate(types.MeasureCountDistinctApprox, "[o].[user_id]")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != "APPROX_COUNT_DISTINCT([o].[user_id])" {
		t.Errorf("Aggregate() = %q", got)
	}
}

func TestPagination(t *testing.T) {
	r := New()
	tests := []struct {
		name          string
		limit, offset *int
		ordered       bool
		want          string
	}{
		{"none", nil, nil, false, ""},
		{"limit ordered", intPtr(10), nil, true, " OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY"},
		{"limit unordered", intPtr(10), nil, false, " ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY"},
		{"offset only", nil, intPtr(5), true, " OFFSET 5 ROWS"},
		{"both", intPtr(10), intPtr(5), true, " OFFSET 5 ROWS FETCH NEXT 10 ROWS ONLY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Pagination(tt.limit, tt.offset, tt.ordered)
			if err != nil {
				t.Fatalf("Pagination() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Pagination() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := r.Pagination(intPtr(-1), nil, true); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestCapabilities(t *testing.T) {
	caps := New().Capabilities()
	if caps.GroupByOrdinal {
		t.Error("SQL Server does not support GROUP BY ordinals")
	}
	if !caps.ApproxCountDistinct {
		t.Error("SQL Server supports APPROX_COUNT_DISTINCT")
	}
}
