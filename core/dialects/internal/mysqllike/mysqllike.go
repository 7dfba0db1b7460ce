// Package mysqllike holds the JSON expressions shared by MySQL and MariaDB.
package mysqllike

import (
	"strings"

	"github.com/stokaro/sqljson/core/sqlutil"
)

// Dialect implements the JSON functions common to MySQL-family databases.
type Dialect struct {
	name       string
	indent     int
	aggOrderBy bool
}

// New creates a MySQL-family dialect. aggOrderBy tells whether json_arrayagg
// accepts an ORDER BY clause (MariaDB does, MySQL does not).
func New(name string, indent int, aggOrderBy bool) *Dialect {
	return &Dialect{name: name, indent: indent, aggOrderBy: aggOrderBy}
}

func (d *Dialect) Name() string {
	return d.name
}

// IdentifierQuote returns the backtick; double quotes are string literals
// unless ANSI_QUOTES is set.
func (d *Dialect) IdentifierQuote() string {
	return sqlutil.Backtick
}

func (d *Dialect) SupportsAggregateOrderBy() bool {
	return d.aggOrderBy
}

func (d *Dialect) RowObjectExpression(columns []string, fromAlias string) string {
	decls := make([]string, len(columns))
	for i, col := range columns {
		decls[i] = "'" + sqlutil.UnquoteIdentifier(col) + "', " + fromAlias + "." + col
	}
	return "json_object(\n" +
		sqlutil.IndentLines(strings.Join(decls, ",\n"), d.indent, true) + "\n" +
		")"
}

func (d *Dialect) AggregatedRowObjectsExpression(columns []string, orderBy, fromAlias string) string {
	return d.arrayAgg(d.RowObjectExpression(columns, fromAlias), orderBy, fromAlias)
}

func (d *Dialect) AggregatedColumnValuesExpression(column, orderBy, fromAlias string) string {
	return d.arrayAgg(fromAlias+"."+column, orderBy, fromAlias)
}

// arrayAgg drops orderBy when the dialect cannot express it; callers reject
// such specifications before rendering.
func (d *Dialect) arrayAgg(value, orderBy, fromAlias string) string {
	var ob string
	if orderBy != "" && d.aggOrderBy {
		ob = " order by " + sqlutil.SubstituteAlias(orderBy, sqlutil.DefaultAliasPlaceholder, fromAlias)
	}
	return "coalesce(json_arrayagg(" + value + ob + "), json_array())"
}
