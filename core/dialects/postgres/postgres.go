package postgres

import (
	"strings"

	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/platform"
	"github.com/stokaro/sqljson/core/sqlutil"
)

var (
	_ types.Dialect = (*Dialect)(nil)
)

// Dialect builds PostgreSQL jsonb expressions
type Dialect struct {
	indent int
}

// New creates a new PostgreSQL dialect indenting object members by indent spaces
func New(indent int) *Dialect {
	return &Dialect{indent: indent}
}

func (d *Dialect) Name() string {
	return platform.Postgres
}

func (d *Dialect) IdentifierQuote() string {
	return sqlutil.DoubleQuote
}

func (d *Dialect) SupportsAggregateOrderBy() bool {
	return true
}

// RowObjectExpression renders jsonb_build_object('key', alias.col, ...)
func (d *Dialect) RowObjectExpression(columns []string, fromAlias string) string {
	decls := make([]string, len(columns))
	for i, col := range columns {
		decls[i] = "'" + sqlutil.UnquoteIdentifier(col) + "', " + fromAlias + "." + col
	}
	return "jsonb_build_object(\n" +
		sqlutil.IndentLines(strings.Join(decls, ",\n"), d.indent, true) + "\n" +
		")"
}

func (d *Dialect) AggregatedRowObjectsExpression(columns []string, orderBy, fromAlias string) string {
	return "coalesce(jsonb_agg(" +
		d.RowObjectExpression(columns, fromAlias) +
		orderByClause(orderBy, fromAlias) +
		"),'[]'::jsonb)"
}

func (d *Dialect) AggregatedColumnValuesExpression(column, orderBy, fromAlias string) string {
	return "coalesce(jsonb_agg(" +
		fromAlias + "." + column +
		orderByClause(orderBy, fromAlias) +
		"),'[]'::jsonb)"
}

func orderByClause(orderBy, fromAlias string) string {
	if orderBy == "" {
		return ""
	}
	return " order by " + sqlutil.SubstituteAlias(orderBy, sqlutil.DefaultAliasPlaceholder, fromAlias)
}
