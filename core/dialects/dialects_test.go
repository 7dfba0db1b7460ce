package dialects_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/sqljson/core/dialects"
	"github.com/stokaro/sqljson/core/platform"
)

func TestForDBMS(t *testing.T) {
	tests := []struct {
		name     string
		dbms     string
		expected string
	}{
		{name: "postgres product name", dbms: "PostgreSQL", expected: platform.Postgres},
		{name: "pgx driver", dbms: "pgx", expected: platform.Postgres},
		{name: "oracle", dbms: "Oracle Database 19c", expected: platform.Oracle},
		{name: "mysql", dbms: "MySQL", expected: platform.MySQL},
		{name: "mariadb", dbms: "MariaDB", expected: platform.MariaDB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			d, err := dialects.ForDBMS(tt.dbms, 2)
			c.Assert(err, qt.IsNil)
			c.Assert(d.Name(), qt.Equals, tt.expected)
		})
	}
}

func TestForDBMS_Unsupported(t *testing.T) {
	c := qt.New(t)
	_, err := dialects.ForDBMS("DB2", 2)
	c.Assert(err, qt.ErrorMatches, `unsupported DBMS "DB2"`)
}

func TestIdentifierQuote(t *testing.T) {
	tests := []struct {
		dbms     string
		expected string
	}{
		{dbms: "postgres", expected: `"`},
		{dbms: "oracle", expected: `"`},
		{dbms: "mysql", expected: "`"},
		{dbms: "mariadb", expected: "`"},
	}

	for _, tt := range tests {
		t.Run(tt.dbms, func(t *testing.T) {
			c := qt.New(t)
			d, err := dialects.ForDBMS(tt.dbms, 2)
			c.Assert(err, qt.IsNil)
			c.Assert(d.IdentifierQuote(), qt.Equals, tt.expected)
		})
	}
}

func TestRowObjectExpression_BacktickKeys(t *testing.T) {
	c := qt.New(t)
	d, err := dialects.ForDBMS("mysql", 2)
	c.Assert(err, qt.IsNil)
	c.Assert(d.RowObjectExpression([]string{"`id`", "`a``b`"}, "q"), qt.Equals,
		"json_object(\n  'id', q.`id`,\n  'a`b', q.`a``b`\n)")
}

func TestRowObjectExpression(t *testing.T) {
	cols := []string{"id", `"Name"`}
	tests := []struct {
		dbms     string
		expected string
	}{
		{
			dbms:     "postgres",
			expected: "jsonb_build_object(\n  'id', q.id,\n  'Name', q.\"Name\"\n)",
		},
		{
			dbms:     "oracle",
			expected: "json_object(\n  'id' value q.id,\n  'Name' value q.\"Name\"\n  returning clob\n)",
		},
		{
			dbms:     "mysql",
			expected: "json_object(\n  'id', q.id,\n  'Name', q.\"Name\"\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.dbms, func(t *testing.T) {
			c := qt.New(t)
			d, err := dialects.ForDBMS(tt.dbms, 2)
			c.Assert(err, qt.IsNil)
			c.Assert(d.RowObjectExpression(cols, "q"), qt.Equals, tt.expected)
		})
	}
}

func TestAggregates(t *testing.T) {
	tests := []struct {
		dbms      string
		orderBy   string
		rows      string
		values    string
		orderable bool
	}{
		{
			dbms:      "postgres",
			orderBy:   "$$.name",
			rows:      "coalesce(jsonb_agg(jsonb_build_object(\n  'name', q.name\n) order by q.name),'[]'::jsonb)",
			values:    "coalesce(jsonb_agg(q.name order by q.name),'[]'::jsonb)",
			orderable: true,
		},
		{
			dbms:      "oracle",
			rows:      "treat(coalesce(json_arrayagg(json_object(\n  'name' value q.name\n  returning clob\n) returning clob), to_clob('[]')) as json)",
			values:    "treat(coalesce(json_arrayagg(q.name returning clob), to_clob('[]')) as json)",
			orderable: true,
		},
		{
			dbms:   "mysql",
			rows:   "coalesce(json_arrayagg(json_object(\n  'name', q.name\n)), json_array())",
			values: "coalesce(json_arrayagg(q.name), json_array())",
		},
		{
			dbms:      "mariadb",
			orderBy:   "$$.name desc",
			rows:      "coalesce(json_arrayagg(json_object(\n  'name', q.name\n) order by q.name desc), json_array())",
			values:    "coalesce(json_arrayagg(q.name order by q.name desc), json_array())",
			orderable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dbms, func(t *testing.T) {
			c := qt.New(t)
			d, err := dialects.ForDBMS(tt.dbms, 2)
			c.Assert(err, qt.IsNil)
			c.Assert(d.SupportsAggregateOrderBy(), qt.Equals, tt.orderable)
			c.Assert(d.AggregatedRowObjectsExpression([]string{"name"}, tt.orderBy, "q"), qt.Equals, tt.rows)
			c.Assert(d.AggregatedColumnValuesExpression("name", tt.orderBy, "q"), qt.Equals, tt.values)
		})
	}
}
