package oracle

import (
	"strings"

	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/platform"
	"github.com/stokaro/sqljson/core/sqlutil"
)

var (
	_ types.Dialect = (*Dialect)(nil)
)

// Dialect builds Oracle SQL/JSON expressions. Objects and arrays are returned
// as CLOBs so large documents are not truncated to VARCHAR2 limits.
type Dialect struct {
	indent int
}

// New creates a new Oracle dialect
func New(indent int) *Dialect {
	return &Dialect{indent: indent}
}

func (d *Dialect) Name() string {
	return platform.Oracle
}

func (d *Dialect) IdentifierQuote() string {
	return sqlutil.DoubleQuote
}

func (d *Dialect) SupportsAggregateOrderBy() bool {
	return true
}

// RowObjectExpression renders json_object('key' value alias.col, ... returning clob)
func (d *Dialect) RowObjectExpression(columns []string, fromAlias string) string {
	decls := make([]string, len(columns))
	for i, col := range columns {
		decls[i] = "'" + sqlutil.UnquoteIdentifier(col) + "' value " + fromAlias + "." + col
	}
	return "json_object(\n" +
		sqlutil.IndentLines(strings.Join(decls, ",\n"), d.indent, true) + "\n" +
		strings.Repeat(" ", d.indent) + "returning clob\n" +
		")"
}

func (d *Dialect) AggregatedRowObjectsExpression(columns []string, orderBy, fromAlias string) string {
	return arrayAgg(d.RowObjectExpression(columns, fromAlias), orderBy, fromAlias)
}

func (d *Dialect) AggregatedColumnValuesExpression(column, orderBy, fromAlias string) string {
	return arrayAgg(fromAlias+"."+column, orderBy, fromAlias)
}

func arrayAgg(value, orderBy, fromAlias string) string {
	var ob string
	if orderBy != "" {
		ob = " order by " + sqlutil.SubstituteAlias(orderBy, sqlutil.DefaultAliasPlaceholder, fromAlias)
	}
	return "treat(coalesce(json_arrayagg(" + value + ob + " returning clob), to_clob('[]')) as json)"
}
