package cubeql_test

import (
	"context"
	"fmt"

	"github.com/zoobzio/cubeql"
	"github.com/zoobzio/cubeql/mssql"
	"github.com/zoobzio/cubeql/postgres"
)

const exampleSchema = `
cubes:
  - name: orders
    sql_table: public.orders
    dimensions:
      - name: status
        type: string
      - name: createdAt
        sql: created_at
        type: time
    measures:
      - name: count
        type: count
      - name: revenue
        sql: amount
        type: sum
`

func Example() {
	schema, err := cubeql.LoadSchema([]byte(exampleSchema))
	if err != nil {
		panic(err)
	}

	result, err := cubeql.Select(schema).
		Dimensions("orders.status").
		Measures("orders.revenue").
		WhereMember("orders.status", cubeql.Equals, "paid", "shipped").
		Limit(10).
		Render(postgres.New())
	if err != nil {
		panic(err)
	}

	fmt.Println(result.SQL)
	fmt.Println(result.RequiredParams)
	// Output:
	// SELECT "orders"."status" AS "orders__status", SUM("orders"."amount") AS "orders__revenue" FROM "public"."orders" AS "orders" WHERE "orders"."status" IN (:f0_0, :f0_1) GROUP BY 1 ORDER BY 2 DESC LIMIT 10
	// [f0_0 f0_1]
}

func ExampleQueryResult_Bind() {
	schema, err := cubeql.LoadSchema([]byte(exampleSchema))
	if err != nil {
		panic(err)
	}

	result := cubeql.Select(schema).
		Measures("orders.count").
		WhereMember("orders.status", cubeql.Equals, "paid").
		MustRender(mssql.New())

	sql, args, err := result.Bind(cubeql.BindAt)
	if err != nil {
		panic(err)
	}
	fmt.Println(sql)
	fmt.Println(args)
	// Output:
	// SELECT COUNT(*) AS [orders__count] FROM [public].[orders] AS [orders] WHERE [orders].[status] = @p1 ORDER BY 1 DESC
	// [paid]
}

func ExampleParseQuery() {
	schema, err := cubeql.LoadSchema([]byte(exampleSchema))
	if err != nil {
		panic(err)
	}
	q, err := cubeql.ParseQuery([]byte(`
measures: [orders.count]
timeDimensions:
  - dimension: orders.createdAt
    granularity: month
`))
	if err != nil {
		panic(err)
	}

	tpl, err := cubeql.NewDialect("sqlite", cubeql.DefaultConfig())
	if err != nil {
		panic(err)
	}
	result, err := cubeql.Build(context.Background(), schema, q, tpl, cubeql.DefaultConfig())
	if err != nil {
		panic(err)
	}
	fmt.Println(result.SQL)
	// Output:
	// SELECT STRFTIME('%Y-%m-01 00:00:00', "orders"."created_at") AS "orders__created_at_month", COUNT(*) AS "orders__count" FROM "public"."orders" AS "orders" GROUP BY 1 ORDER BY 1 ASC
}
