package dbmd_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/sqljson/core/sqlutil"
	"github.com/stokaro/sqljson/dbmd"
	"github.com/stokaro/sqljson/internal/testfixtures"
)

func TestNew_SortsAndIndexes(t *testing.T) {
	c := qt.New(t)
	md := testfixtures.DrugsMetadata()

	var ids []string
	for _, rel := range md.Relations() {
		ids = append(ids, rel.RelationID.IDString())
	}
	c.Assert(ids[0], qt.Equals, "drugs.advisory")
	c.Assert(ids[len(ids)-1], qt.Equals, "drugs.reference")

	fks := md.ForeignKeys()
	c.Assert(fks[0].SourceRelationID.Name, qt.Equals, "advisory")
	c.Assert(fks[0].TargetRelationID.Name, qt.Equals, "advisory_type")

	// compound's keys to analyst are ordered by source field name
	var compoundFields []string
	for _, fk := range fks {
		if fk.SourceRelationID.Name == "compound" {
			compoundFields = append(compoundFields, fk.SourceFieldNames()[0])
		}
	}
	c.Assert(compoundFields, qt.DeepEquals, []string{"approved_by", "entered_by"})

	rel, ok := md.Relation(dbmd.RelID{Schema: "drugs", Name: "brand"})
	c.Assert(ok, qt.IsTrue)
	c.Assert(len(rel.Fields), qt.Equals, 4)

	_, ok = md.Relation(dbmd.RelID{Name: "brand"})
	c.Assert(ok, qt.IsFalse)
}

func TestNew_DoesNotAliasInput(t *testing.T) {
	c := qt.New(t)
	doc := testfixtures.DrugsDocument()
	first := doc.Relations[0].RelationID

	dbmd.New(doc)
	c.Assert(doc.Relations[0].RelationID, qt.Equals, first)
}

func TestPrimaryKeyFields(t *testing.T) {
	c := qt.New(t)
	md := testfixtures.DrugsMetadata()

	var names []string
	for _, f := range md.PrimaryKeyFields(dbmd.RelID{Schema: "drugs", Name: "drug_functional_category"}) {
		names = append(names, f.Name)
	}
	c.Assert(names, qt.DeepEquals, []string{"drug_id", "functional_category_id", "authority_id"})
	c.Assert(md.PrimaryKeyFields(dbmd.RelID{Name: "nope"}), qt.IsNil)
}

func TestRelIDFor(t *testing.T) {
	md := testfixtures.DrugsMetadata()

	tests := []struct {
		name          string
		table         string
		defaultSchema string
		expected      dbmd.RelID
	}{
		{name: "unqualified uses document schema", table: "Drug", expected: dbmd.RelID{Schema: "drugs", Name: "drug"}},
		{name: "unqualified uses default schema", table: "drug", defaultSchema: "Public", expected: dbmd.RelID{Schema: "public", Name: "drug"}},
		{name: "qualified keeps order", table: "OTHER.Brand", defaultSchema: "drugs", expected: dbmd.RelID{Schema: "other", Name: "brand"}},
		{name: "quoted name kept", table: `"MixedCase"`, expected: dbmd.RelID{Schema: "drugs", Name: `"MixedCase"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(md.RelIDFor(tt.table, tt.defaultSchema), qt.Equals, tt.expected)
		})
	}
}

func TestQuoteIfNeededAndNormalize(t *testing.T) {
	lower := dbmd.New(dbmd.Document{CaseSensitivity: dbmd.InsensitiveStoredLower})
	upper := dbmd.New(dbmd.Document{CaseSensitivity: dbmd.InsensitiveStoredUpper})
	sensitive := dbmd.New(dbmd.Document{CaseSensitivity: dbmd.Sensitive})

	tests := []struct {
		name       string
		md         *dbmd.DatabaseMetadata
		id         string
		quoted     string
		normalized string
	}{
		{name: "lower bare", md: lower, id: "mesh_id", quoted: "mesh_id", normalized: "mesh_id"},
		{name: "lower mixed", md: lower, id: "meshId", quoted: `"meshId"`, normalized: "meshid"},
		{name: "lower with digit", md: lower, id: "col2", quoted: `"col2"`, normalized: "col2"},
		{name: "leading underscore", md: lower, id: "_id", quoted: `"_id"`, normalized: "_id"},
		{name: "already quoted", md: lower, id: `"Id"`, quoted: `"Id"`, normalized: `"Id"`},
		{name: "interior quote", md: lower, id: `a"b`, quoted: `"a""b"`, normalized: `a"b`},
		{name: "upper bare", md: upper, id: "MESH_ID", quoted: "MESH_ID", normalized: "MESH_ID"},
		{name: "upper lowercase", md: upper, id: "mesh_id", quoted: `"mesh_id"`, normalized: "MESH_ID"},
		{name: "sensitive always quoted", md: sensitive, id: "name", quoted: `"name"`, normalized: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(tt.md.QuoteIfNeeded(tt.id), qt.Equals, tt.quoted)
			c.Assert(tt.md.NormalizeName(tt.id), qt.Equals, tt.normalized)
		})
	}
}

func TestQuoteIfNeededWith(t *testing.T) {
	lower := dbmd.New(dbmd.Document{CaseSensitivity: dbmd.InsensitiveStoredLower})
	mixed := dbmd.New(dbmd.Document{DBMSName: "MySQL", CaseSensitivity: dbmd.InsensitiveStoredMixed})

	tests := []struct {
		name   string
		md     *dbmd.DatabaseMetadata
		id     string
		quoted string
	}{
		{name: "mixed stored always quoted", md: mixed, id: "drug", quoted: "`drug`"},
		{name: "hidden field", md: mixed, id: "_id", quoted: "`_id`"},
		{name: "interior backtick", md: mixed, id: "a`b", quoted: "`a``b`"},
		{name: "double quoted requoted", md: mixed, id: `"Id"`, quoted: "`Id`"},
		{name: "backtick quoted kept", md: mixed, id: "`Id`", quoted: "`Id`"},
		{name: "lower bare left alone", md: lower, id: "mesh_id", quoted: "mesh_id"},
		{name: "lower mixed case", md: lower, id: "meshId", quoted: "`meshId`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(tt.md.QuoteIfNeededWith(tt.id, sqlutil.Backtick), qt.Equals, tt.quoted)
		})
	}
}
