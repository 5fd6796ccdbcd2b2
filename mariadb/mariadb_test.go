package mariadb

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
	if r.Dialect() != "mariadb" {
		t.Errorf("Dialect() = %q, want mariadb", r.Dialect())
	}
}

func TestQuoting(t *testing.T) {
	r := New()
	// MariaDB uses backticks for quoting
	if got := r.QuoteIdentifier("status"); got != "`status`" {
		t.Errorf("QuoteIdentifier() = %q", got)
	}
	if got := r.QuoteTable("shop.orders"); got != "`shop`.`orders`" {
		t.Errorf("QuoteTable() = %q", got)
	}
}

func TestTimeGroupedColumn(t *testing.T) {
	r := New()
	tests := []struct {
		g    types.Granularity
		want string
	}{
		{types.GranularityDay, "CAST(DATE_FORMAT(ts, '%Y-%m-%d 00:00:00') AS DATETIME)"},
		{types.GranularityMinute, "CAST(DATE_FORMAT(ts, '%Y-%m-%d %H:%i:00') AS DATETIME)"},
		{types.GranularityWeek, "CAST(DATE_FORMAT(DATE_SUB(ts, INTERVAL WEEKDAY(ts) DAY), '%Y-%m-%d 00:00:00') AS DATETIME)"},
		{types.GranularityQuarter, "CAST(CONCAT(YEAR(ts), '-', LPAD((QUARTER(ts) - 1) * 3 + 1, 2, '0'), '-01 00:00:00') AS DATETIME)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.g), func(t *testing.T) {
			got, err := r.TimeGroupedColumn(tt.g, "ts")
			if err != nil {
				t.Fatalf("TimeGroupedColumn() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("TimeGroupedColumn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertTz(t *testing.T) {
	got, err := New().ConvertTz("ts", "Europe/Berlin")
	if err != nil {
		t.Fatalf("ConvertTz() error = %v", err)
	}
	if got != "CONVERT_TZ(ts, '+00:00', 'Europe/Berlin')" {
		t.Errorf("ConvertTz() = %q", got)
	}
}

func TestAggregate_ApproxUnsupported(t *testing.T) {
	_, err := New().Aggregate(types.MeasureCountDistinctApprox, "x")
	var ufErr render.UnsupportedFeatureError
	if !errors.As(err, &ufErr) {
		t.Fatalf("expected UnsupportedFeatureError, got %v", err)
	}
}

func TestPagination_OffsetOnly(t *testing.T) {
	got, err := New().Pagination(nil, intPtr(30), true)
	if err != nil {
		t.Fatalf("Pagination() error = %v", err)
	}
	if got != " LIMIT 18446744073709551615 OFFSET 30" {
		t.Errorf("Pagination() = %q", got)
	}
}
