// Package testing provides test utilities for cubeql.
package testing

import (
	"strings"
	"testing"

	"github.com/zoobzio/cubeql"
	"github.com/zoobzio/dbml"
)

// SchemaYAML is the fixture schema shared by the test suites. The orders cube
// carries derived dimensions and measures; products is defined by a subquery.
const SchemaYAML = `
cubes:
  - name: orders
    sql_table: orders
    dimensions:
      - name: id
        type: number
        primary_key: true
      - name: userId
        sql: user_id
        type: number
      - name: status
        type: string
      - name: total
        type: number
      - name: createdAt
        sql: created_at
        type: time
      - name: size
        sql: "CASE WHEN {total} >= 100 THEN 'large' ELSE 'small' END"
        type: string
    measures:
      - name: count
        type: count
      - name: revenue
        sql: total
        type: sum
      - name: averageTotal
        sql: total
        type: avg
      - name: maxTotal
        sql: total
        type: max
      - name: buyers
        sql: user_id
        type: countDistinct
      - name: revenuePerOrder
        sql: "{revenue} / NULLIF({count}, 0)"
        type: number
  - name: users
    sql_table: users
    dimensions:
      - name: id
        type: number
        primary_key: true
      - name: username
        type: string
      - name: age
        type: number
      - name: active
        type: boolean
      - name: createdAt
        sql: created_at
        type: time
    measures:
      - name: count
        type: count
  - name: products
    sql: "SELECT * FROM products WHERE stock > 0"
    dimensions:
      - name: id
        type: number
        primary_key: true
      - name: name
        type: string
      - name: category
        type: string
      - name: price
        type: number
    measures:
      - name: count
        type: count
      - name: averagePrice
        sql: price
        type: avg
`

// TestSchema returns the resolved fixture schema.
func TestSchema(t testing.TB) *cubeql.Schema {
	t.Helper()
	schema, err := cubeql.LoadSchema([]byte(SchemaYAML))
	if err != nil {
		t.Fatalf("Failed to load test schema: %v", err)
	}
	return schema
}

// TestProject returns a DBML project describing the fixture tables.
func TestProject() *dbml.Project {
	project := dbml.NewProject("test")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "bigint"))
	users.AddColumn(dbml.NewColumn("username", "varchar"))
	users.AddColumn(dbml.NewColumn("age", "int"))
	users.AddColumn(dbml.NewColumn("active", "boolean"))
	users.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(users)

	orders := dbml.NewTable("orders")
	orders.AddColumn(dbml.NewColumn("id", "bigint"))
	orders.AddColumn(dbml.NewColumn("user_id", "bigint"))
	orders.AddColumn(dbml.NewColumn("total", "numeric"))
	orders.AddColumn(dbml.NewColumn("status", "varchar"))
	orders.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	project.AddTable(orders)

	return project
}

// AssertSQL compares expected and actual SQL, reporting detailed differences.
func AssertSQL(t testing.TB, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Errorf("SQL mismatch:\nExpected: %s\nActual:   %s", expected, actual)
	}
}

// AssertParams checks that the required params match expected, in order.
func AssertParams(t testing.TB, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("Param count mismatch: expected %d, got %d\nExpected: %v\nActual: %v",
			len(expected), len(actual), expected, actual)
		return
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("Param %d: expected %q, got %q\nExpected: %v\nActual: %v", i, expected[i], actual[i], expected, actual)
		}
	}
}

// AssertContainsParam checks that a specific param is in the list.
func AssertContainsParam(t testing.TB, params []string, param string) {
	t.Helper()
	for _, p := range params {
		if p == param {
			return
		}
	}
	t.Errorf("Expected param %q not found in %v", param, params)
}

// AssertColumns checks the result's column aliases in select order.
func AssertColumns(t testing.TB, result *cubeql.QueryResult, expected ...string) {
	t.Helper()
	actual := result.ColumnNames()
	if strings.Join(actual, ",") != strings.Join(expected, ",") {
		t.Errorf("Column mismatch:\nExpected: %v\nActual:   %v", expected, actual)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorContains checks that error message contains substr.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}

// AssertPanics verifies that a function panics.
func AssertPanics(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic but function completed normally")
		}
	}()
	fn()
}
