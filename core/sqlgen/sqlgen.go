// Package sqlgen composes the SQL of a query from its table output
// specification tree.
//
// Each tree node becomes a query block selecting from the node's table. Inline
// parents are joined in as derived tables whose columns are re-exposed flat,
// referenced parents become correlated JSON object subqueries and child
// collections become correlated JSON array subqueries. The top-level block is
// then wrapped according to the requested result representation.
package sqlgen

import (
	"fmt"
	"slices"

	"github.com/stokaro/sqljson/core/dialects"
	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/resolve"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/dbmd"
)

// Options configure a Generator.
type Options struct {
	// DefaultSchema qualifies unqualified table names; the metadata schema is
	// used when empty.
	DefaultSchema string

	// UnqualifiedSchemas lists schemas whose tables are written without a
	// schema qualifier.
	UnqualifiedSchemas []string

	PropertyNameFn naming.PropertyNameFunc // camel case when nil
	ParamStyle     ParamStyle              // named when empty
	IndentSpaces   int                     // 2 when zero

	// Dialect overrides the dialect chosen from the metadata's DBMS name.
	Dialect types.Dialect
}

// Statement is one named query to render.
type Statement struct {
	Name      string
	Table     spec.TableOutputSpec
	OrderBy   string // may refer to the top table through "$$"
	ForUpdate bool

	// PropertyNameFn overrides the generator's naming function when set.
	PropertyNameFn naming.PropertyNameFunc
}

// Generator renders statements against one database metadata. It holds no
// per-statement state and may be used concurrently.
type Generator struct {
	md           *dbmd.DatabaseMetadata
	resolver     *resolve.Resolver
	dialect      types.Dialect
	unqualified  map[string]struct{}
	propNameFn   naming.PropertyNameFunc
	paramStyle   ParamStyle
	indentSpaces int
}

// New creates a Generator.
func New(md *dbmd.DatabaseMetadata, opts Options) (*Generator, error) {
	indent := opts.IndentSpaces
	if indent <= 0 {
		indent = 2
	}
	dialect := opts.Dialect
	if dialect == nil {
		var err error
		if dialect, err = dialects.ForDBMS(md.DBMSName(), indent); err != nil {
			return nil, fmt.Errorf("failed to select SQL dialect: %w", err)
		}
	}
	propNameFn := opts.PropertyNameFn
	if propNameFn == nil {
		propNameFn = naming.CamelCase.Func()
	}
	paramStyle := opts.ParamStyle
	switch paramStyle {
	case "":
		paramStyle = NamedParams
	case NamedParams, PositionalParams:
	default:
		return nil, fmt.Errorf("unknown parameter style %q", paramStyle)
	}

	unqualified := make(map[string]struct{}, len(opts.UnqualifiedSchemas))
	for _, s := range opts.UnqualifiedSchemas {
		unqualified[md.NormalizeName(s)] = struct{}{}
	}

	return &Generator{
		md:           md,
		resolver:     resolve.New(md, opts.DefaultSchema),
		dialect:      dialect,
		unqualified:  unqualified,
		propNameFn:   propNameFn,
		paramStyle:   paramStyle,
		indentSpaces: indent,
	}, nil
}

// Dialect returns the dialect the generator renders JSON expressions with.
func (g *Generator) Dialect() types.Dialect { return g.dialect }

// quote quotes an identifier as needed with the dialect's quote character.
func (g *Generator) quote(id string) string {
	return g.md.QuoteIfNeededWith(id, g.dialect.IdentifierQuote())
}

// BuildResultSQL renders the statement in the given result representation.
func (g *Generator) BuildResultSQL(stmt Statement, repr spec.ResultRepr) (string, error) {
	sql, _, err := g.build(stmt, repr)
	return sql, err
}

// ParamNames returns the statement's parameter names in the order their
// placeholders appear in the rendered SQL. With positional parameters a name
// is repeated for every placeholder binding it; with named parameters each
// name is listed once. The order is the same for every representation.
func (g *Generator) ParamNames(stmt Statement) ([]string, error) {
	_, params, err := g.build(stmt, spec.MultiColumnRows)
	if err != nil {
		return nil, err
	}
	if g.paramStyle == PositionalParams {
		return params, nil
	}
	var names []string
	for _, p := range params {
		if !slices.Contains(names, p) {
			names = append(names, p)
		}
	}
	return names, nil
}

func (g *Generator) build(stmt Statement, repr spec.ResultRepr) (string, []string, error) {
	b := &builder{Generator: g, propNameFn: g.propNameFn}
	if stmt.PropertyNameFn != nil {
		b.propNameFn = stmt.PropertyNameFn
	}
	loc := spec.At(stmt.Name)

	if stmt.ForUpdate && repr != spec.MultiColumnRows {
		return "", nil, spec.Errorf(loc.Add("for update clause"), spec.KindForUpdateNotSupported,
			"FOR UPDATE is only allowed with %s, not %s", spec.MultiColumnRows, repr)
	}

	tableLoc := loc.Add("table '" + stmt.Table.Table + "'")
	scope := newAliasScope()
	switch repr {
	case spec.MultiColumnRows:
		bq, err := b.baseQuery(stmt.Table, tableLoc, nil, nil, stmt.OrderBy, scope)
		if err != nil {
			return "", nil, err
		}
		if stmt.ForUpdate {
			return bq.sql + "\nfor update", bq.params, nil
		}
		return bq.sql, bq.params, nil
	case spec.JSONObjectRows:
		return b.jsonObjectRows(stmt.Table, tableLoc, nil, stmt.OrderBy, scope)
	case spec.JSONArrayRow:
		return b.jsonArrayRow(stmt.Table, tableLoc, nil, false, stmt.OrderBy, scope)
	default:
		return "", nil, spec.Errorf(loc, spec.KindInvalidSpecification, "unknown result representation %q", repr)
	}
}
