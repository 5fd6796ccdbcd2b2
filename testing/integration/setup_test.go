// Package integration runs cubeql queries against real databases.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mariadb"
	"github.com/testcontainers/testcontainers-go/modules/mssql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zoobzio/cubeql"
	cqtesting "github.com/zoobzio/cubeql/testing"
)

// Shared containers - lazily initialized
var (
	sharedPgContainer      *PostgresContainer
	sharedMariaDBContainer *MariaDBContainer
	sharedMSSQLContainer   *MSSQLContainer

	pgOnce      sync.Once
	mariadbOnce sync.Once
	mssqlOnce   sync.Once

	// Track which containers were started for cleanup
	containersStarted = struct {
		pg      bool
		mariadb bool
		mssql   bool
	}{}
)

// TestMain sets up shared containers for all integration tests.
func TestMain(m *testing.M) {
	// Note: We can't check testing.Short() here because flag.Parse() hasn't been called yet.
	// The individual tests check for short mode themselves.

	// Run tests
	code := m.Run()

	// Cleanup any containers that were started
	ctx := context.Background()

	if containersStarted.pg && sharedPgContainer != nil {
		if sharedPgContainer.conn != nil {
			_ = sharedPgContainer.conn.Close(ctx)
		}
		if sharedPgContainer.container != nil {
			_ = sharedPgContainer.container.Terminate(ctx)
		}
	}

	if containersStarted.mariadb && sharedMariaDBContainer != nil {
		if sharedMariaDBContainer.db != nil {
			_ = sharedMariaDBContainer.db.Close()
		}
		if sharedMariaDBContainer.container != nil {
			_ = sharedMariaDBContainer.container.Terminate(ctx)
		}
	}

	if containersStarted.mssql && sharedMSSQLContainer != nil {
		if sharedMSSQLContainer.db != nil {
			_ = sharedMSSQLContainer.db.Close()
		}
		if sharedMSSQLContainer.container != nil {
			_ = sharedMSSQLContainer.container.Terminate(ctx)
		}
	}

	os.Exit(code)
}

// getPostgresContainer returns the shared PostgreSQL container, starting it if needed.
func getPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	pgOnce.Do(func() {
		ctx := context.Background()

		container, err := postgres.Run(ctx,
			"docker.io/postgres:16-alpine",
			postgres.WithDatabase("cubeql_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start postgres container: %v", err)
		}

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}

		conn, err := pgx.Connect(ctx, connStr)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}

		sharedPgContainer = &PostgresContainer{
			container: container,
			conn:      conn,
			connStr:   connStr,
		}
		containersStarted.pg = true
	})

	return sharedPgContainer
}

// getMariaDBContainer returns the shared MariaDB container, starting it if needed.
func getMariaDBContainer(t *testing.T) *MariaDBContainer {
	t.Helper()

	mariadbOnce.Do(func() {
		ctx := context.Background()

		container, err := mariadb.Run(ctx,
			"docker.io/mariadb:11",
			mariadb.WithDatabase("cubeql_test"),
			mariadb.WithUsername("test"),
			mariadb.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("mariadbd: ready for connections").
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start mariadb container: %v", err)
		}

		connStr, err := container.ConnectionString(ctx)
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}

		db, err := sql.Open("mysql", connStr)
		if err != nil {
			log.Fatalf("Failed to connect to mariadb: %v", err)
		}

		// Wait for connection to be ready
		for i := 0; i < 30; i++ {
			if err := db.Ping(); err == nil {
				break
			}
			time.Sleep(time.Second)
		}

		sharedMariaDBContainer = &MariaDBContainer{
			container: container,
			db:        db,
			connStr:   connStr,
		}
		containersStarted.mariadb = true
	})

	return sharedMariaDBContainer
}

// getMSSQLContainer returns the shared MSSQL container, starting it if needed.
func getMSSQLContainer(t *testing.T) *MSSQLContainer {
	t.Helper()

	mssqlOnce.Do(func() {
		ctx := context.Background()

		container, err := mssql.Run(ctx,
			"mcr.microsoft.com/mssql/server:2022-latest",
			mssql.WithAcceptEULA(),
			mssql.WithPassword("Test@12345"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("SQL Server is now ready for client connections").
					WithStartupTimeout(120*time.Second),
			),
		)
		if err != nil {
			log.Fatalf("Failed to start mssql container: %v", err)
		}

		connStr, err := container.ConnectionString(ctx)
		if err != nil {
			log.Fatalf("Failed to get connection string: %v", err)
		}

		db, err := sql.Open("sqlserver", connStr)
		if err != nil {
			log.Fatalf("Failed to connect to mssql: %v", err)
		}

		// Wait for connection to be ready
		for i := 0; i < 60; i++ {
			if err := db.Ping(); err == nil {
				break
			}
			time.Sleep(time.Second)
		}

		sharedMSSQLContainer = &MSSQLContainer{
			container: container,
			db:        db,
			connStr:   connStr,
		}
		containersStarted.mssql = true
	})

	return sharedMSSQLContainer
}

// columnTypes are the per-database column types of the fixture tables.
type columnTypes struct {
	id, integer, text, timestamp string
}

// fixtureDDL returns the CREATE TABLE statement for the orders table.
func fixtureDDL(ct columnTypes) string {
	return fmt.Sprintf(`CREATE TABLE orders (
		id %s PRIMARY KEY,
		user_id %s NOT NULL,
		total %s NOT NULL,
		status %s NOT NULL,
		created_at %s NOT NULL
	)`, ct.id, ct.integer, ct.integer, ct.text, ct.timestamp)
}

// fixtureRows seeds the orders table. Totals are integers so aggregates
// compare equal across databases.
const fixtureRows = `INSERT INTO orders (id, user_id, total, status, created_at) VALUES
	(1, 1, 50, 'paid', '2024-01-05 10:00:00'),
	(2, 1, 150, 'paid', '2024-01-20 12:00:00'),
	(3, 2, 200, 'shipped', '2024-02-03 09:30:00'),
	(4, 3, 20, 'pending', '2024-02-14 18:00:00'),
	(5, 2, 80, 'paid', '2024-03-01 00:00:00'),
	(6, 4, 10, 'cancelled', '2024-03-15 08:00:00')`

// scenario is a query whose result is identical on every database.
type scenario struct {
	name  string
	build func(*cubeql.Builder) *cubeql.Builder
	want  [][]string
}

var scenarios = []scenario{
	{
		name: "count by status",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.status").Measures("orders.count").OrderBy("orders.status", cubeql.Asc)
		},
		want: [][]string{{"cancelled", "1"}, {"paid", "3"}, {"pending", "1"}, {"shipped", "1"}},
	},
	{
		name: "revenue by month",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.TimeDimension("orders.createdAt", cubeql.Month).Measures("orders.revenue")
		},
		want: [][]string{
			{"2024-01-01 00:00:00", "200"},
			{"2024-02-01 00:00:00", "220"},
			{"2024-03-01 00:00:00", "90"},
		},
	},
	{
		name: "dimension filters",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.status").
				Measures("orders.count", "orders.revenue").
				WhereMember("orders.status", cubeql.Equals, "paid", "shipped").
				WhereMember("orders.total", cubeql.Gt, "60").
				OrderBy("orders.status", cubeql.Asc)
		},
		want: [][]string{{"paid", "2", "230"}, {"shipped", "1", "200"}},
	},
	{
		name: "date range",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Measures("orders.count").DateRange("orders.createdAt", "2024-01-01", "2024-01-31")
		},
		want: [][]string{{"2"}},
	},
	{
		name: "measure filter",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.status").Measures("orders.count").WhereMember("orders.count", cubeql.Gte, "2")
		},
		want: [][]string{{"paid", "3"}},
	},
	{
		name: "derived dimension",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.size").Measures("orders.count").OrderBy("orders.size", cubeql.Asc)
		},
		want: [][]string{{"large", "2"}, {"small", "4"}},
	},
	{
		name: "post-aggregate expression",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.status").
				Measures("orders.revenue", "orders.count").
				PostAggregate("spread", "{orders.revenue} - {orders.count}").
				WhereMember("orders.status", cubeql.Equals, "paid")
		},
		want: [][]string{{"paid", "280", "3", "277"}},
	},
	{
		name: "pagination",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Dimensions("orders.status").OrderBy("orders.status", cubeql.Asc).Limit(2).Offset(1)
		},
		want: [][]string{{"paid"}, {"pending"}},
	},
	{
		name: "count distinct",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Measures("orders.buyers")
		},
		want: [][]string{{"4"}},
	},
	{
		name: "contains",
		build: func(b *cubeql.Builder) *cubeql.Builder {
			return b.Measures("orders.count").WhereMember("orders.status", cubeql.Contains, "ip")
		},
		want: [][]string{{"1"}},
	},
}

// runScenarios renders every scenario for tpl and compares the rows returned by query.
func runScenarios(t *testing.T, tpl cubeql.Templates, query func(t *testing.T, stmt string, args []any) [][]string) {
	t.Helper()
	schema := cqtesting.TestSchema(t)
	style := cubeql.BindStyleFor(tpl.Dialect())

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			result, err := sc.build(cubeql.Select(schema)).Render(tpl)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			stmt, args, err := result.Bind(style)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			got := query(t, stmt, args)
			if fmt.Sprint(got) != fmt.Sprint(sc.want) {
				t.Errorf("rows mismatch\nSQL:  %s\nArgs: %v\nGot:  %v\nWant: %v", stmt, args, got, sc.want)
			}
		})
	}
}

// stringify normalizes a scanned driver value for comparison.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(val)
	}
}

// scanRows reads all rows from a database/sql result as strings.
func scanRows(t *testing.T, rows *sql.Rows) [][]string {
	t.Helper()
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	var out [][]string
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = stringify(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	return out
}
