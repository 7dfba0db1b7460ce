// Package types declares the interface every SQL dialect implements.
package types

// Dialect builds the DBMS-specific JSON expressions of generated queries.
//
// Column names passed in are already quoted as needed with IdentifierQuote;
// object keys are the column names with their quotes removed. An orderBy text may
// refer to the aggregated source through the "$$" placeholder and is empty
// when no ordering is wanted.
type Dialect interface {
	// Name returns the platform name (see core/platform).
	Name() string

	// IdentifierQuote returns the character quoting identifiers.
	IdentifierQuote() string

	// RowObjectExpression builds a JSON object with one key per column, read
	// from the given source alias.
	RowObjectExpression(columns []string, fromAlias string) string

	// AggregatedRowObjectsExpression aggregates the row objects of all source
	// rows into a JSON array. No rows yield an empty array, never NULL.
	AggregatedRowObjectsExpression(columns []string, orderBy, fromAlias string) string

	// AggregatedColumnValuesExpression aggregates the bare values of one column
	// into a JSON array. No rows yield an empty array, never NULL.
	AggregatedColumnValuesExpression(column, orderBy, fromAlias string) string

	// SupportsAggregateOrderBy reports whether the aggregates accept an ORDER BY.
	SupportsAggregateOrderBy() bool
}
