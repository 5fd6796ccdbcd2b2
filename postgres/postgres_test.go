package postgres

import (
	"errors"
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
	if r.Dialect() != "postgres" {
		t.Errorf("Dialect() = %q, want postgres", r.Dialect())
	}
}

func TestQuoting(t *testing.T) {
	r := New()
	if got := r.QuoteIdentifier("status"); got != `"status"` {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
	if got := r.QuoteIdentifier(`a"b`); got != `"a""b"` {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
	if got := r.QuoteTable("public.orders"); got != `"public"."orders"` {
		t.Errorf("QuoteTable() = %q", got)
	}
}

func TestTimeGroupedColumn(t *testing.T) {
	r := New()
	for _, g := range types.Granularities() {
		got, err := r.TimeGroupedColumn(g, `"orders"."created_at"`)
		if err != nil {
			t.Fatalf("TimeGroupedColumn(%s) error = %v", g, err)
		}
		want := "date_trunc('" + string(g) + `', "orders"."created_at")`
		if got != want {
			t.Errorf("TimeGroupedColumn(%s) = %q, want %q", g, got, want)
		}
	}
	if _, err := r.TimeGroupedColumn("fortnight", "x"); err == nil {
		t.Error("expected error for unknown granularity")
	}
}

func TestConvertTz(t *testing.T) {
	got, err := New().ConvertTz(`"orders"."created_at"`, "America/New_York")
	if err != nil {
		t.Fatalf("ConvertTz() error = %v", err)
	}
	want := `("orders"."created_at"::timestamptz AT TIME ZONE 'America/New_York')`
	if got != want {
		t.Errorf("ConvertTz() = %q, want %q", got, want)
	}
}

func TestAggregate(t *testing.T) {
	r := New()
	got, err := r.Aggregate(types.MeasureSum, `"orders"."amount"`)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != `SUM("orders"."amount")` {
		t.Errorf("Aggregate() = %q", got)
	}

	_, err = r.Aggregate(types.MeasureCountDistinctApprox, "x")
	var ufErr render.UnsupportedFeatureError
	if !errors.As(err, &ufErr) {
		t.Fatalf("expected UnsupportedFeatureError, got %v", err)
	}
}

func TestPagination(t *testing.T) {
	r := New()
	tests := []struct {
		name          string
		limit, offset *int
		want          string
	}{
		{"none", nil, nil, ""},
		{"limit", intPtr(10), nil, " LIMIT 10"},
		{"offset only", nil, intPtr(5), " OFFSET 5"},
		{"both", intPtr(10), intPtr(5), " LIMIT 10 OFFSET 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Pagination(tt.limit, tt.offset, true)
			if err != nil {
				t.Fatalf("Pagination() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Pagination() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	caps := New().Capabilities()
	if !caps.GroupByOrdinal || !caps.TimezoneConversion || !caps.OffsetWithoutLimit {
		t.Errorf("unexpected capabilities: %+v", caps)
	}
	if caps.ApproxCountDistinct {
		t.Error("PostgreSQL should not report approximate distinct counts")
	}
}
