package sqlgen_test

import (
	"regexp"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-extras/go-kit/must"

	"github.com/stokaro/sqljson/core/dialects/mysql"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/sqlgen"
	"github.com/stokaro/sqljson/dbmd"
	"github.com/stokaro/sqljson/internal/testfixtures"
)

func newGenerator(c *qt.C, opts sqlgen.Options) *sqlgen.Generator {
	if opts.UnqualifiedSchemas == nil {
		opts.UnqualifiedSchemas = []string{testfixtures.Schema}
	}
	g, err := sqlgen.New(testfixtures.DrugsMetadata(), opts)
	c.Assert(err, qt.IsNil)
	return g
}

func brandsChild(fields ...string) spec.ChildCollectionSpec {
	return spec.ChildCollectionSpec{
		Name: "brands",
		Spec: spec.TableOutputSpec{Table: "brand", FieldExpressions: spec.Fields(fields...)},
	}
}

func TestBuildResultSQL_MultiColumnRowsByID(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	stmt := sqlgen.Statement{
		Name: "drug by id",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id", "name", "mesh_id"),
			FieldConditions:  []spec.FieldParamCondition{{Field: "id"}},
		},
	}

	sql, err := g.BuildResultSQL(stmt, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, `select
  d.id as id,
  d.name as name,
  d.mesh_id "meshId"
from
  drug d
where (
  d.id = :drugId
)`)

	params, err := g.ParamNames(stmt)
	c.Assert(err, qt.IsNil)
	c.Assert(params, qt.DeepEquals, []string{"drugId"})
}

func TestBuildResultSQL_SchemaQualification(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{UnqualifiedSchemas: []string{}})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name:    "drugs",
		Table:   spec.TableOutputSpec{Table: "drug", FieldExpressions: spec.Fields("id")},
		OrderBy: "$$.name desc",
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, "select\n  d.id as id\nfrom\n  drugs.drug d\norder by d.name desc")
}

func TestBuildResultSQL_ChildCollectionArrayRow(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "drugs with brands",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			ChildCollections: []spec.ChildCollectionSpec{brandsChild("brand_name")},
		},
	}, spec.JSONArrayRow)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, `select
  -- aggregated row objects builder for table 'drug'
  coalesce(jsonb_agg(jsonb_build_object(
    'id', q.id,
    'brands', q.brands
  )),'[]'::jsonb) json
from (
  -- base query for table 'drug'
  select
    d.id as id,
    -- records from child table 'brand' as collection 'brands'
    (
      select
        -- aggregated row objects builder for table 'brand'
        coalesce(jsonb_agg(jsonb_build_object(
          'brandName', q1."brandName"
        )),'[]'::jsonb) json
      from (
        -- base query for table 'brand'
        select
          b.brand_name "brandName"
        from
          brand b
        where (
          b.drug_id = d.id
        )
      ) q1
    ) as brands
  from
    drug d
) q`)
}

func TestBuildResultSQL_InlineParent(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "drugs with compound",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			Parents: []spec.ParentRef{
				spec.InlineParent{Spec: spec.TableOutputSpec{Table: "compound", FieldExpressions: spec.Fields("display_name")}},
			},
		},
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, `select
  d.id as id,
  -- field(s) inlined from parent table 'compound'
  q."displayName" "displayName"
from
  drug d
  -- parent table 'compound', joined for inlined fields
  left join (
    select
      c.id "_id",
      c.display_name "displayName"
    from
      compound c
  ) q on d.compound_id = q."_id"`)
}

func TestBuildResultSQL_ReferencedParent(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "drugs with registrant",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			Parents: []spec.ParentRef{
				spec.ReferencedParent{
					Name: "registeredBy",
					Spec: spec.TableOutputSpec{Table: "analyst", FieldExpressions: spec.Fields("short_name")},
				},
			},
		},
		OrderBy: "$$.id",
	}, spec.JSONObjectRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, `select
  -- row object builder for table 'drug'
  jsonb_build_object(
    'id', q.id,
    'registeredBy', q."registeredBy"
  ) json
from (
  -- base query for table 'drug'
  select
    d.id as id,
    -- parent table 'analyst' referenced as 'registeredBy'
    (
      select
        -- row object builder for table 'analyst'
        jsonb_build_object(
          'shortName', q1."shortName"
        ) json
      from (
        -- base query for table 'analyst'
        select
          a.short_name "shortName"
        from
          analyst a
        where (
          d.registered_by = a.id
        )
      ) q1
    ) "registeredBy"
  from
    drug d
) q
order by q.id`)
}

// backticked turns the ´ marks of a raw string into backticks.
func backticked(s string) string {
	return strings.ReplaceAll(s, "´", "`")
}

func TestBuildResultSQL_MySQLQuoting(t *testing.T) {
	c := qt.New(t)
	doc := testfixtures.DrugsDocument()
	doc.DBMSName = "MySQL"
	doc.CaseSensitivity = dbmd.InsensitiveStoredMixed
	g, err := sqlgen.New(dbmd.New(doc), sqlgen.Options{
		UnqualifiedSchemas: []string{testfixtures.Schema},
		ParamStyle:         sqlgen.PositionalParams,
	})
	c.Assert(err, qt.IsNil)

	stmt := sqlgen.Statement{
		Name: "drugs with brands",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			FieldConditions:  []spec.FieldParamCondition{{Field: "id"}},
			ChildCollections: []spec.ChildCollectionSpec{brandsChild("brand_name")},
		},
	}
	sql, err := g.BuildResultSQL(stmt, spec.JSONObjectRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, backticked(`select
  -- row object builder for table 'drug'
  json_object(
    'id', q.´id´,
    'brands', q.´brands´
  ) json
from (
  -- base query for table 'drug'
  select
    d.id ´id´,
    -- records from child table 'brand' as collection 'brands'
    (
      select
        -- aggregated row objects builder for table 'brand'
        coalesce(json_arrayagg(json_object(
          'brandName', q1.´brandName´
        )), json_array()) json
      from (
        -- base query for table 'brand'
        select
          b.brand_name ´brandName´
        from
          ´brand´ b
        where (
          b.´drug_id´ = d.´id´
        )
      ) q1
    ) ´brands´
  from
    ´drug´ d
  where (
    d.id = ?
  )
) q`))
	c.Assert(sql, qt.Not(qt.Contains), `"`)

	params, err := g.ParamNames(stmt)
	c.Assert(err, qt.IsNil)
	c.Assert(params, qt.DeepEquals, []string{"drugId"})
}

func TestBuildResultSQL_MariaDBInlineParentQuoting(t *testing.T) {
	c := qt.New(t)
	doc := testfixtures.DrugsDocument()
	doc.DBMSName = "MariaDB"
	doc.CaseSensitivity = dbmd.InsensitiveStoredMixed
	g, err := sqlgen.New(dbmd.New(doc), sqlgen.Options{UnqualifiedSchemas: []string{testfixtures.Schema}})
	c.Assert(err, qt.IsNil)

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "drugs with compound",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			Parents: []spec.ParentRef{
				spec.InlineParent{Spec: spec.TableOutputSpec{Table: "compound", FieldExpressions: spec.Fields("display_name")}},
			},
		},
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Contains, backticked("  ) q on d.´compound_id´ = q.´_id´"))
	c.Assert(sql, qt.Contains, backticked("      c.´id´ ´_id´,\n"))
	c.Assert(sql, qt.Contains, backticked("  q.´displayName´ ´displayName´\n"))
	c.Assert(sql, qt.Not(qt.Contains), `"`)
}

var (
	tableAliasLine   = regexp.MustCompile(`(?m)^\s*[a-z_.]+ ([a-z][a-z0-9]*)$`)
	derivedAliasLine = regexp.MustCompile(`(?m)^\s*\) (q[0-9]*)(?: on .*)?$`)
)

func TestBuildResultSQL_AliasesAreUnique(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	advisories := spec.ChildCollectionSpec{
		Name: "advisories",
		Spec: spec.TableOutputSpec{
			Table:            "advisory",
			FieldExpressions: spec.Fields("text"),
			Parents: []spec.ParentRef{
				spec.InlineParent{Spec: spec.TableOutputSpec{
					Table:            "advisory_type",
					FieldExpressions: []spec.FieldExpr{{Field: "name", OutputName: "advisoryTypeName"}},
					Parents: []spec.ParentRef{
						spec.InlineParent{Spec: spec.TableOutputSpec{
							Table:            "authority",
							FieldExpressions: []spec.FieldExpr{{Field: "name", OutputName: "authorityName"}},
						}},
					},
				}},
			},
		},
	}
	stmt := sqlgen.Statement{
		Name: "drug advisories",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			ChildCollections: []spec.ChildCollectionSpec{brandsChild("brand_name"), advisories},
			Parents: []spec.ParentRef{
				spec.ReferencedParent{Name: "registeredBy", Spec: spec.TableOutputSpec{Table: "analyst", FieldExpressions: spec.Fields("id")}},
			},
		},
	}

	for _, repr := range spec.AllResultReprs {
		c.Run(string(repr), func(c *qt.C) {
			sql, err := g.BuildResultSQL(stmt, repr)
			c.Assert(err, qt.IsNil)

			var aliases []string
			for _, m := range tableAliasLine.FindAllStringSubmatch(sql, -1) {
				aliases = append(aliases, m[1])
			}
			for _, m := range derivedAliasLine.FindAllStringSubmatch(sql, -1) {
				aliases = append(aliases, m[1])
			}
			c.Assert(len(aliases) >= 7, qt.IsTrue, qt.Commentf("aliases %v in\n%s", aliases, sql))
			seen := map[string]bool{}
			for _, a := range aliases {
				c.Assert(seen[a], qt.IsFalse, qt.Commentf("alias %q repeated in\n%s", a, sql))
				seen[a] = true
			}
		})
	}

	sql, err := g.BuildResultSQL(stmt, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Contains, "advisory a1")
	c.Assert(sql, qt.Contains, "authority a2")
	c.Assert(sql, qt.Contains, `at1.authority_id = q3."_id"`)
	c.Assert(sql, qt.Contains, `a1.advisory_type_id = q4."_id"`)
}

func TestBuildResultSQL_Deterministic(t *testing.T) {
	c := qt.New(t)

	stmt := sqlgen.Statement{
		Name: "drugs",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id", "name"),
			ChildCollections: []spec.ChildCollectionSpec{brandsChild("brand_name", "language_code")},
			Parents: []spec.ParentRef{
				spec.InlineParent{Spec: spec.TableOutputSpec{Table: "compound", FieldExpressions: spec.Fields("cas")}},
			},
		},
	}
	for _, repr := range spec.AllResultReprs {
		first := must.Must(newGenerator(c, sqlgen.Options{}).BuildResultSQL(stmt, repr))
		second := must.Must(newGenerator(c, sqlgen.Options{}).BuildResultSQL(stmt, repr))
		c.Assert(second, qt.Equals, first)
	}
}

func TestBuildResultSQL_Expressions(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "expressions",
		Table: spec.TableOutputSpec{
			Table: "drug",
			FieldExpressions: []spec.FieldExpr{
				{Expression: "$$.cid + 1000", OutputName: "cidPlus1000"},
				{Expression: "upper(@t.name)", AliasPlaceholder: "@t", OutputName: "upper_name"},
			},
			RawCondition: &spec.RawCondition{SQL: "$$.cid > :minCid", ParamNames: []string{"minCid"}},
		},
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Equals, `select
  d.cid + 1000 "cidPlus1000",
  upper(d.name) as upper_name
from
  drug d
where (
  (d.cid > :minCid)
)`)
}

func TestBuildResultSQL_CustomJoinChild(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name: "custom",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			ChildCollections: []spec.ChildCollectionSpec{{
				Name: "advisories",
				Spec: spec.TableOutputSpec{Table: "advisory", FieldExpressions: spec.Fields("text")},
				Join: spec.CustomJoin{Pairs: []spec.FieldPair{{ChildField: "drug_id", ParentField: "id"}}},
			}},
		},
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Contains, "a.drug_id = d.id")
}

func TestBuildResultSQL_Unwrap(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})

	child := brandsChild("brand_name")
	child.Unwrap = true
	child.OrderBy = `$$."brandName"`
	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name:  "brand names",
		Table: spec.TableOutputSpec{Table: "drug", FieldExpressions: spec.Fields("id"), ChildCollections: []spec.ChildCollectionSpec{child}},
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(sql, qt.Contains, `coalesce(jsonb_agg(q."brandName" order by q."brandName"),'[]'::jsonb) json`)
}

func TestParamNames(t *testing.T) {
	stmt := sqlgen.Statement{
		Name: "params",
		Table: spec.TableOutputSpec{
			Table:            "drug",
			FieldExpressions: spec.Fields("id"),
			FieldConditions:  []spec.FieldParamCondition{{Field: "id", Op: spec.OpIN}},
			RawCondition:     &spec.RawCondition{SQL: "$$.cid > ?", ParamNames: []string{"minCid"}},
			Parents: []spec.ParentRef{
				spec.InlineParent{Spec: spec.TableOutputSpec{
					Table:            "compound",
					FieldExpressions: spec.Fields("cas"),
					FieldConditions:  []spec.FieldParamCondition{{Field: "display_name"}},
				}},
				spec.ReferencedParent{Name: "registeredBy", Spec: spec.TableOutputSpec{
					Table:            "analyst",
					FieldExpressions: spec.Fields("id"),
					FieldConditions:  []spec.FieldParamCondition{{Field: "short_name", ParamName: "analystName"}},
				}},
			},
			ChildCollections: []spec.ChildCollectionSpec{{
				Name: "brands",
				Spec: spec.TableOutputSpec{
					Table:            "brand",
					FieldExpressions: spec.Fields("brand_name"),
					FieldConditions:  []spec.FieldParamCondition{{Field: "language_code", Op: spec.OpEQIfParamNonNull}},
				},
			}},
		},
	}

	tests := []struct {
		name     string
		style    sqlgen.ParamStyle
		expected []string
	}{
		{
			name:     "named",
			style:    sqlgen.NamedParams,
			expected: []string{"analystName", "brandLanguageCode", "compoundDisplayName", "drugIdList", "minCid"},
		},
		{
			name:     "positional",
			style:    sqlgen.PositionalParams,
			expected: []string{"analystName", "brandLanguageCode", "brandLanguageCode", "compoundDisplayName", "drugIdList", "minCid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			g := newGenerator(c, sqlgen.Options{ParamStyle: tt.style})

			params, err := g.ParamNames(stmt)
			c.Assert(err, qt.IsNil)
			c.Assert(params, qt.DeepEquals, tt.expected)

			if tt.style == sqlgen.PositionalParams {
				sql := must.Must(g.BuildResultSQL(stmt, spec.MultiColumnRows))
				c.Assert(sql, qt.Contains, "d.id IN (?)")
				c.Assert(sql, qt.Contains, "(? is null or b.language_code = ?)")
				c.Assert(strings.Count(sql, "?"), qt.Equals, len(tt.expected))
			}
		})
	}
}

func TestFieldConditionOperators(t *testing.T) {
	tests := []struct {
		op       spec.Operator
		expected string
	}{
		{op: spec.OpEQ, expected: "d.cid = :drugCid"},
		{op: spec.OpNE, expected: "d.cid <> :drugCid"},
		{op: spec.OpLT, expected: "d.cid < :drugCid"},
		{op: spec.OpLE, expected: "d.cid <= :drugCid"},
		{op: spec.OpGT, expected: "d.cid > :drugCid"},
		{op: spec.OpGE, expected: "d.cid >= :drugCid"},
		{op: spec.OpIN, expected: "d.cid IN (:drugCidList)"},
		{op: spec.OpNotIN, expected: "d.cid NOT IN (:drugCidList)"},
		{op: spec.OpEQIfParamNonNull, expected: "(:drugCid is null or d.cid = :drugCid)"},
		{op: spec.OpIsNull, expected: "d.cid is null"},
		{op: spec.OpIsNotNull, expected: "d.cid is not null"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			c := qt.New(t)
			g := newGenerator(c, sqlgen.Options{})
			sql, err := g.BuildResultSQL(sqlgen.Statement{
				Name: "op",
				Table: spec.TableOutputSpec{
					Table:            "drug",
					FieldExpressions: spec.Fields("id"),
					FieldConditions:  []spec.FieldParamCondition{{Field: "cid", Op: tt.op}},
				},
			}, spec.MultiColumnRows)
			c.Assert(err, qt.IsNil)
			c.Assert(strings.HasSuffix(sql, "where (\n  "+tt.expected+"\n)"), qt.IsTrue, qt.Commentf("sql:\n%s", sql))
		})
	}
}

func TestBuildResultSQL_Errors(t *testing.T) {
	table := func(name string, fields ...string) spec.TableOutputSpec {
		return spec.TableOutputSpec{Table: name, FieldExpressions: spec.Fields(fields...)}
	}

	tests := []struct {
		name       string
		stmt       sqlgen.Statement
		repr       spec.ResultRepr
		opts       sqlgen.Options
		kind       error
		errorRegex string
	}{
		{
			name:       "unknown table",
			stmt:       sqlgen.Statement{Name: "s", Table: table("drugz", "id")},
			kind:       spec.ErrTableNotFound,
			errorRegex: `statement "s" at table 'drugz': TableNotFound: table drugs.drugz not found in database metadata`,
		},
		{
			name:       "unknown fields",
			stmt:       sqlgen.Statement{Name: "s", Table: table("drug", "id", "nme", "mesh")},
			kind:       spec.ErrUnknownField,
			errorRegex: `statement "s" at table 'drug': UnknownField: field\(s\) not found in table drugs.drug: nme, mesh`,
		},
		{
			name: "unknown condition field",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "drug",
				FieldExpressions: spec.Fields("id"),
				FieldConditions:  []spec.FieldParamCondition{{Field: "idd"}},
			}},
			kind:       spec.ErrUnknownField,
			errorRegex: `statement "s" at table 'drug' / field conditions: UnknownField: field\(s\) not found in table drugs.drug: idd`,
		},
		{
			name: "ambiguous foreign key",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "compound",
				FieldExpressions: spec.Fields("id"),
				Parents:          []spec.ParentRef{spec.ReferencedParent{Name: "analyst", Spec: table("analyst", "short_name")}},
			}},
			kind:       spec.ErrAmbiguousForeignKey,
			errorRegex: `statement "s" at table 'compound' / referenced parent 'analyst': AmbiguousForeignKey: child table drugs.compound has multiple foreign keys to parent table drugs.analyst .*`,
		},
		{
			name: "foreign key not found",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "brand",
				FieldExpressions: spec.Fields("brand_name"),
				Parents:          []spec.ParentRef{spec.InlineParent{Spec: table("analyst", "short_name")}},
			}},
			kind:       spec.ErrForeignKeyNotFound,
			errorRegex: `statement "s" at table 'brand' / inline parent 'analyst': ForeignKeyNotFound: .*`,
		},
		{
			name: "unknown custom join field",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "drug",
				FieldExpressions: spec.Fields("id"),
				Parents: []spec.ParentRef{spec.InlineParent{
					Spec: table("compound", "cas"),
					Join: spec.CustomJoin{Pairs: []spec.FieldPair{{ChildField: "cmpd_id", ParentField: "id"}}},
				}},
			}},
			kind:       spec.ErrUnknownJoinField,
			errorRegex: `statement "s" at table 'drug' / inline parent 'compound' / custom join condition: UnknownJoinField: .*cmpd_id`,
		},
		{
			name: "invalid unwrap",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "drug",
				FieldExpressions: spec.Fields("id"),
				ChildCollections: []spec.ChildCollectionSpec{{
					Name: "brands", Spec: table("brand", "brand_name", "language_code"), Unwrap: true,
				}},
			}},
			kind:       spec.ErrInvalidUnwrap,
			errorRegex: `statement "s" at table 'drug' / child collection 'brands': InvalidUnwrap: .*has 2`,
		},
		{
			name:       "for update on json rows",
			stmt:       sqlgen.Statement{Name: "s", Table: table("drug", "id"), ForUpdate: true},
			repr:       spec.JSONObjectRows,
			kind:       spec.ErrForUpdateNotSupported,
			errorRegex: `statement "s" at for update clause: ForUpdateNotSupported: .*`,
		},
		{
			name: "invalid raw condition placeholder",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "drug",
				FieldExpressions: spec.Fields("id"),
				RawCondition:     &spec.RawCondition{SQL: "d.cid > 0", AliasPlaceholder: "d"},
			}},
			kind:       spec.ErrInvalidAliasPlaceholder,
			errorRegex: `statement "s" at table 'drug' / record condition: InvalidAliasPlaceholder: .*`,
		},
		{
			name: "aggregate order by on mysql",
			stmt: sqlgen.Statement{Name: "s", Table: spec.TableOutputSpec{
				Table:            "drug",
				FieldExpressions: spec.Fields("id"),
				ChildCollections: []spec.ChildCollectionSpec{{
					Name: "brands", Spec: table("brand", "brand_name"), OrderBy: "$$.brand_name",
				}},
			}},
			opts:       sqlgen.Options{Dialect: mysql.New(2)},
			kind:       spec.ErrUnsupportedByDialect,
			errorRegex: `statement "s" at table 'drug' / child collection 'brands': UnsupportedByDialect: mysql cannot order .*`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			repr := tt.repr
			if repr == "" {
				repr = spec.MultiColumnRows
			}
			_, err := newGenerator(c, tt.opts).BuildResultSQL(tt.stmt, repr)
			c.Assert(err, qt.ErrorIs, tt.kind)
			c.Assert(err, qt.ErrorMatches, tt.errorRegex)
		})
	}
}

func TestBuildResultSQL_ForUpdate(t *testing.T) {
	c := qt.New(t)
	g := newGenerator(c, sqlgen.Options{})
	sql, err := g.BuildResultSQL(sqlgen.Statement{
		Name:      "lock drug",
		Table:     spec.TableOutputSpec{Table: "drug", FieldExpressions: spec.Fields("id")},
		ForUpdate: true,
	}, spec.MultiColumnRows)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.HasSuffix(sql, "\nfor update"), qt.IsTrue)
}

func TestNew_UnsupportedDBMS(t *testing.T) {
	c := qt.New(t)
	doc := testfixtures.DrugsDocument()
	doc.DBMSName = "DB2"
	_, err := sqlgen.New(dbmd.New(doc), sqlgen.Options{})
	c.Assert(err, qt.ErrorMatches, `failed to select SQL dialect: unsupported DBMS "DB2"`)

	_, err = sqlgen.New(testfixtures.DrugsMetadata(), sqlgen.Options{ParamStyle: "numbered"})
	c.Assert(err, qt.ErrorMatches, `unknown parameter style "numbered"`)
}
