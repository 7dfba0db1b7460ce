package sqlgen

import (
	"fmt"
	"slices"

	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/resolve"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/sqlutil"
	"github.com/stokaro/sqljson/dbmd"
)

// hiddenPrefix marks the output names of fields exported only for joining.
const hiddenPrefix = "_"

// builder renders one statement.
type builder struct {
	*Generator
	propNameFn naming.PropertyNameFunc
}

// baseQuery is a rendered query block.
type baseQuery struct {
	sql     string
	columns []string // result column names, hidden exports excluded
	params  []string // parameter names in placeholder order
}

// baseQuery renders the block for one tree node. loc names the node. link, when
// set, correlates the block with the enclosing one. hidden lists fields of the
// node's table to export under hiddenPrefix names for an enclosing join. The
// block's aliases are allocated from scope.
func (b *builder) baseQuery(tos spec.TableOutputSpec, loc spec.Location, link *linkCondition, hidden []string,
	orderBy string, scope aliasScope) (baseQuery, error) {
	rel, err := b.resolver.Table(loc, tos.Table)
	if err != nil {
		return baseQuery{}, err
	}

	var q sqlParts
	if link != nil {
		scope.add(link.otherAlias)
	}
	alias := scope.makeAliasFor(rel.RelationID.Name)
	q.froms = append(q.froms, b.relIdentifier(rel.RelationID)+" "+alias)

	for _, name := range hidden {
		q.selects = append(q.selects, selectEntry{
			expr:   alias + "." + b.quote(name),
			name:   b.quote(hiddenPrefix + name),
			hidden: true,
		})
	}

	fields, err := b.fieldEntries(tos, rel, alias, loc)
	if err != nil {
		return baseQuery{}, err
	}
	q.selects = append(q.selects, fields...)

	var inlineParams, refParams, childParams []string
	for _, ip := range tos.InlineParents() {
		parts, params, err := b.inlineParent(ip, rel, alias, loc, scope)
		if err != nil {
			return baseQuery{}, err
		}
		q.addParts(parts)
		inlineParams = append(inlineParams, params...)
	}
	for _, rp := range tos.ReferencedParents() {
		entry, params, err := b.referencedParent(rp, rel, alias, loc, scope)
		if err != nil {
			return baseQuery{}, err
		}
		q.selects = append(q.selects, entry)
		refParams = append(refParams, params...)
	}
	for _, cc := range tos.ChildCollections {
		entry, params, err := b.childCollection(cc, rel, alias, loc, scope)
		if err != nil {
			return baseQuery{}, err
		}
		q.selects = append(q.selects, entry)
		childParams = append(childParams, params...)
	}

	if link != nil {
		q.wheres = append(q.wheres, link.render(b.quote, alias))
	}
	condParams, err := b.conditions(&q, tos, rel, alias, loc)
	if err != nil {
		return baseQuery{}, err
	}

	if orderBy != "" {
		q.orderBy = sqlutil.SubstituteAlias(orderBy, sqlutil.DefaultAliasPlaceholder, alias)
	}

	// Select entries precede the from clause, which precedes the where clause.
	params := slices.Concat(refParams, childParams, inlineParams, condParams)

	return baseQuery{sql: q.toSQL(b.indentSpaces), columns: q.resultColumns(), params: params}, nil
}

func (b *builder) fieldEntries(tos spec.TableOutputSpec, rel *dbmd.RelMetadata, alias string, loc spec.Location) ([]selectEntry, error) {
	var simple []string
	for i, fe := range tos.FieldExpressions {
		if err := resolve.CheckFieldExpr(loc.Add(fmt.Sprintf("field expression #%d", i+1)), fe); err != nil {
			return nil, err
		}
		if fe.Field != "" {
			simple = append(simple, fe.Field)
		}
	}
	if err := b.resolver.CheckFields(loc, rel, simple); err != nil {
		return nil, err
	}

	entries := make([]selectEntry, len(tos.FieldExpressions))
	for i, fe := range tos.FieldExpressions {
		expr := alias + "." + fe.Field
		if fe.Expression != "" {
			expr = sqlutil.SubstituteAlias(fe.Expression, fe.AliasPlaceholder, alias)
		}
		entries[i] = selectEntry{expr: expr, name: b.quote(resolve.PropertyName(fe, b.propNameFn))}
	}
	return entries, nil
}

// conditions adds the node's field conditions and raw condition to q's where
// clause, in that order, and returns their parameter names.
func (b *builder) conditions(q *sqlParts, tos spec.TableOutputSpec, rel *dbmd.RelMetadata, alias string, loc spec.Location) ([]string, error) {
	var params []string
	if len(tos.FieldConditions) > 0 {
		condLoc := loc.Add("field conditions")
		fields := make([]string, len(tos.FieldConditions))
		for i, fc := range tos.FieldConditions {
			if !fc.Operator().Valid() {
				return nil, spec.Errorf(condLoc, spec.KindInvalidSpecification, "unknown operator %q on field %s", fc.Op, fc.Field)
			}
			fields[i] = fc.Field
		}
		if err := b.resolver.CheckFields(condLoc, rel, fields); err != nil {
			return nil, err
		}
		for _, fc := range tos.FieldConditions {
			sql, ps := fieldConditionSQL(fc, tos.Table, alias, b.paramStyle)
			q.wheres = append(q.wheres, sql)
			params = append(params, ps...)
		}
	}

	if rc := tos.RawCondition; rc != nil {
		if rc.AliasPlaceholder != "" {
			if err := sqlutil.ValidateAliasPlaceholder(rc.AliasPlaceholder); err != nil {
				return nil, spec.Wrap(loc.Add("record condition"), spec.KindInvalidAliasPlaceholder, err)
			}
		}
		q.wheres = append(q.wheres, rawConditionSQL(*rc, alias))
		params = append(params, rc.ParamNames...)
	}
	return params, nil
}

// inlineParent joins the parent's block as a derived table and re-exposes its
// result columns in the enclosing block.
func (b *builder) inlineParent(ip spec.InlineParent, child *dbmd.RelMetadata, childAlias string, loc spec.Location,
	scope aliasScope) (sqlParts, []string, error) {
	loc = loc.Add("inline parent '" + ip.Spec.Table + "'")
	parent, err := b.resolver.Table(loc, ip.Spec.Table)
	if err != nil {
		return sqlParts{}, nil, err
	}
	comps, err := b.resolver.Join(loc, child, parent, ip.JoinSpec())
	if err != nil {
		return sqlParts{}, nil, err
	}

	parentScope := scope.clone()
	pq, err := b.baseQuery(ip.Spec, loc, nil, joinTargetFields(parent, comps), "", parentScope)
	if err != nil {
		return sqlParts{}, nil, err
	}
	scope.merge(parentScope)
	fromAlias := scope.mint("q")

	var parts sqlParts
	for i, col := range pq.columns {
		e := selectEntry{expr: fromAlias + "." + col, name: col}
		if i == 0 {
			e.comment = "-- field(s) inlined from parent table '" + ip.Spec.Table + "'"
		}
		parts.selects = append(parts.selects, e)
	}
	parts.froms = append(parts.froms,
		"-- parent table '"+ip.Spec.Table+"', joined for inlined fields\n"+
			"left join (\n"+
			b.indent(pq.sql)+"\n"+
			") "+fromAlias+" on "+joinEquation(b.quote, comps, childAlias, fromAlias, hiddenPrefix))
	return parts, pq.params, nil
}

// joinTargetFields returns the parent's primary key fields followed by any
// other parent fields the join equates.
func joinTargetFields(parent *dbmd.RelMetadata, comps []dbmd.ForeignKeyComponent) []string {
	var names []string
	for _, f := range parent.PrimaryKeyFields() {
		names = append(names, f.Name)
	}
	for _, c := range comps {
		if !slices.Contains(names, c.PrimaryKeyFieldName) {
			names = append(names, c.PrimaryKeyFieldName)
		}
	}
	return names
}

func (b *builder) referencedParent(rp spec.ReferencedParent, child *dbmd.RelMetadata, childAlias string, loc spec.Location,
	scope aliasScope) (selectEntry, []string, error) {
	loc = loc.Add("referenced parent '" + rp.Spec.Table + "'")
	parent, err := b.resolver.Table(loc, rp.Spec.Table)
	if err != nil {
		return selectEntry{}, nil, err
	}
	comps, err := b.resolver.Join(loc, child, parent, rp.JoinSpec())
	if err != nil {
		return selectEntry{}, nil, err
	}

	link := &linkCondition{otherAlias: childAlias, components: comps}
	sub := scope.clone()
	sql, params, err := b.jsonObjectRows(rp.Spec, loc, link, "", sub)
	if err != nil {
		return selectEntry{}, nil, err
	}
	scope.merge(sub)
	return selectEntry{
		comment: "-- parent table '" + rp.Spec.Table + "' referenced as '" + rp.Name + "'",
		expr:    "(\n" + b.indent(sql) + "\n)",
		name:    b.quote(rp.Name),
	}, params, nil
}

func (b *builder) childCollection(cc spec.ChildCollectionSpec, parent *dbmd.RelMetadata, parentAlias string, loc spec.Location,
	scope aliasScope) (selectEntry, []string, error) {
	loc = loc.Add("child collection '" + cc.Name + "'")
	child, err := b.resolver.Table(loc, cc.Spec.Table)
	if err != nil {
		return selectEntry{}, nil, err
	}
	comps, err := b.resolver.Join(loc, child, parent, cc.JoinSpec())
	if err != nil {
		return selectEntry{}, nil, err
	}

	link := &linkCondition{otherAlias: parentAlias, components: comps, otherIsParent: true}
	sub := scope.clone()
	sql, params, err := b.jsonArrayRow(cc.Spec, loc, link, cc.Unwrap, cc.OrderBy, sub)
	if err != nil {
		return selectEntry{}, nil, err
	}
	scope.merge(sub)
	return selectEntry{
		comment: "-- records from child table '" + cc.Spec.Table + "' as collection '" + cc.Name + "'",
		expr:    "(\n" + b.indent(sql) + "\n)",
		name:    b.quote(cc.Name),
	}, params, nil
}

// jsonObjectRows renders a query returning one JSON object per row of the node's
// block.
func (b *builder) jsonObjectRows(tos spec.TableOutputSpec, loc spec.Location, link *linkCondition, orderBy string,
	scope aliasScope) (string, []string, error) {
	fromAlias := scope.mint("q")
	bq, err := b.baseQuery(tos, loc, link, nil, "", scope)
	if err != nil {
		return "", nil, err
	}

	sql := "select\n" +
		b.indent("-- row object builder for table '"+tos.Table+"'") + "\n" +
		b.indent(b.dialect.RowObjectExpression(bq.columns, fromAlias)) + " json\n" +
		"from (\n" +
		b.indent("-- base query for table '"+tos.Table+"'") + "\n" +
		b.indent(bq.sql) + "\n" +
		") " + fromAlias
	if orderBy != "" {
		sql += "\norder by " + sqlutil.SubstituteAlias(orderBy, sqlutil.DefaultAliasPlaceholder, fromAlias)
	}
	return sql, bq.params, nil
}

// jsonArrayRow renders a query returning a single row holding the JSON array of
// the block's row objects, or of its single column's values when unwrap is set.
func (b *builder) jsonArrayRow(tos spec.TableOutputSpec, loc spec.Location, link *linkCondition, unwrap bool,
	orderBy string, scope aliasScope) (string, []string, error) {
	if orderBy != "" && !b.dialect.SupportsAggregateOrderBy() {
		return "", nil, spec.Errorf(loc, spec.KindUnsupportedByDialect,
			"%s cannot order the elements of an aggregated JSON array", b.dialect.Name())
	}
	fromAlias := scope.mint("q")
	bq, err := b.baseQuery(tos, loc, link, nil, "", scope)
	if err != nil {
		return "", nil, err
	}

	var agg string
	if unwrap {
		if len(bq.columns) != 1 {
			return "", nil, spec.Errorf(loc, spec.KindInvalidUnwrap,
				"an unwrapped collection needs exactly one output property, table '%s' has %d", tos.Table, len(bq.columns))
		}
		agg = b.dialect.AggregatedColumnValuesExpression(bq.columns[0], orderBy, fromAlias)
	} else {
		agg = b.dialect.AggregatedRowObjectsExpression(bq.columns, orderBy, fromAlias)
	}

	sql := "select\n" +
		b.indent("-- aggregated row objects builder for table '"+tos.Table+"'") + "\n" +
		b.indent(agg) + " json\n" +
		"from (\n" +
		b.indent("-- base query for table '"+tos.Table+"'") + "\n" +
		b.indent(bq.sql) + "\n" +
		") " + fromAlias
	return sql, bq.params, nil
}

// relIdentifier renders a table reference, leaving out the schema for schemas
// configured as unqualified.
func (b *builder) relIdentifier(id dbmd.RelID) string {
	if _, skip := b.unqualified[id.Schema]; id.Schema == "" || skip {
		return b.quote(id.Name)
	}
	return b.quote(id.Schema) + "." + b.quote(id.Name)
}

func (b *builder) indent(s string) string {
	return sqlutil.IndentLines(s, b.indentSpaces, true)
}
