package cubeql_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/cubeql"
)

func TestQueryResult_Bind(t *testing.T) {
	result := &cubeql.QueryResult{
		SQL:            `SELECT "a:b" FROM t WHERE x::text = :f0 AND y IN (:f1_0, :f1_1) AND z = ':f9' AND [w:x] = :f0`,
		RequiredParams: []string{"f0", "f1_0", "f1_1"},
		Values:         map[string]any{"f0": "paid", "f1_0": int64(1), "f1_1": int64(2)},
	}

	tests := []struct {
		style cubeql.BindStyle
		sql   string
		args  []any
	}{
		{cubeql.BindNamed, result.SQL, []any{"paid", int64(1), int64(2)}},
		{cubeql.BindQuestion, `SELECT "a:b" FROM t WHERE x::text = ? AND y IN (?, ?) AND z = ':f9' AND [w:x] = ?`, []any{"paid", int64(1), int64(2), "paid"}},
		{cubeql.BindDollar, `SELECT "a:b" FROM t WHERE x::text = $1 AND y IN ($2, $3) AND z = ':f9' AND [w:x] = $4`, []any{"paid", int64(1), int64(2), "paid"}},
		{cubeql.BindAt, `SELECT "a:b" FROM t WHERE x::text = @p1 AND y IN (@p2, @p3) AND z = ':f9' AND [w:x] = @p4`, []any{"paid", int64(1), int64(2), "paid"}},
	}
	for _, tt := range tests {
		sql, args, err := result.Bind(tt.style)
		if err != nil {
			t.Fatalf("Bind(%d) error = %v", tt.style, err)
		}
		if sql != tt.sql {
			t.Errorf("Bind(%d) sql =\n%s\nwant\n%s", tt.style, sql, tt.sql)
		}
		if diff := cmp.Diff(tt.args, args); diff != "" {
			t.Errorf("Bind(%d) args mismatch (-want +got):\n%s", tt.style, diff)
		}
	}
}

func TestQueryResult_BindEscapedQuote(t *testing.T) {
	result := &cubeql.QueryResult{
		SQL:    `SELECT 'it'':s' WHERE a = :f0`,
		Values: map[string]any{"f0": 1},
	}
	sql, args, err := result.Bind(cubeql.BindDollar)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if sql != `SELECT 'it'':s' WHERE a = $1` || len(args) != 1 {
		t.Errorf("Bind() = %q, %v", sql, args)
	}
}

func TestQueryResult_BindComments(t *testing.T) {
	result := &cubeql.QueryResult{
		SQL:    "SELECT a /* don't :f9 */ FROM t -- it's :f8\nWHERE a = :f0 AND b = :f1",
		Values: map[string]any{"f0": 1, "f1": 2},
	}
	sql, args, err := result.Bind(cubeql.BindDollar)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	want := "SELECT a /* don't :f9 */ FROM t -- it's :f8\nWHERE a = $1 AND b = $2"
	if sql != want {
		t.Errorf("Bind() sql =\n%s\nwant\n%s", sql, want)
	}
	if diff := cmp.Diff([]any{1, 2}, args); diff != "" {
		t.Errorf("Bind() args mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryResult_BindMissingValue(t *testing.T) {
	result := &cubeql.QueryResult{SQL: "SELECT 1 WHERE a = :f0"}
	if _, _, err := result.Bind(cubeql.BindQuestion); err == nil {
		t.Error("expected error for missing value")
	}
}

func TestBindStyleFor(t *testing.T) {
	tests := map[string]cubeql.BindStyle{
		"postgres":   cubeql.BindDollar,
		"mssql":      cubeql.BindAt,
		"sqlite":     cubeql.BindQuestion,
		"mariadb":    cubeql.BindQuestion,
		"databricks": cubeql.BindQuestion,
		"other":      cubeql.BindNamed,
	}
	for dialect, want := range tests {
		if got := cubeql.BindStyleFor(dialect); got != want {
			t.Errorf("BindStyleFor(%q) = %d, want %d", dialect, got, want)
		}
	}
}

func TestQueryResult_Args(t *testing.T) {
	result := &cubeql.QueryResult{
		RequiredParams: []string{"f1", "f0"},
		Values:         map[string]any{"f0": "a", "f1": "b"},
		Columns:        []cubeql.Column{{Name: "x"}, {Name: "y"}},
	}
	if diff := cmp.Diff([]any{"b", "a"}, result.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, result.ColumnNames()); diff != "" {
		t.Errorf("ColumnNames() mismatch (-want +got):\n%s", diff)
	}
}
