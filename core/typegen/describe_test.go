package typegen_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/typegen"
)

func ptr[T any](v T) *T { return &v }

func TestDescribe(t *testing.T) {
	c := qt.New(t)

	overrides := []spec.TypeOverride{{Language: "Go", Type: "int64"}}
	tos := spec.TableOutputSpec{
		Table: "drug",
		FieldExpressions: []spec.FieldExpr{
			{Field: "id"},
			{Expression: "$$.cid + 1", OutputName: "nextCid", TypeOverrides: overrides},
		},
		Parents: []spec.ParentRef{
			spec.ReferencedParent{Name: "registeredBy", Spec: table("analyst", "short_name")},
		},
		ChildCollections: []spec.ChildCollectionSpec{
			{Name: "brandNames", Spec: table("brand", "brand_name"), Unwrap: true},
		},
	}

	types, _, err := newGenerator().Generate("s", tos, typegen.EmptyScope())
	c.Assert(err, qt.IsNil)

	c.Assert(typegen.Describe(types), qt.DeepEquals, []typegen.TypeDescriptor{
		{
			Name: "Drug",
			Properties: []typegen.PropertyDescriptor{
				{
					Name: "id", Kind: typegen.FieldKind, DatabaseType: "int4", TypeCode: ptr(4),
					Precision: ptr(32), FractionalDigits: ptr(0), Nullable: false,
				},
				{
					Name: "nextCid", Kind: typegen.ExpressionKind, Expression: "$$.cid + 1",
					TypeOverrides: overrides, Nullable: true,
				},
				{Name: "registeredBy", Kind: typegen.ParentReferenceKind, NestedType: "Analyst"},
				{Name: "brandNames", Kind: typegen.ChildCollectionKind, NestedType: "Brand"},
			},
		},
		{
			Name: "Analyst",
			Properties: []typegen.PropertyDescriptor{
				{Name: "shortName", Kind: typegen.FieldKind, DatabaseType: "varchar", TypeCode: ptr(12), Length: ptr(50)},
			},
		},
		{
			Name:      "Brand",
			Unwrapped: true,
			Properties: []typegen.PropertyDescriptor{
				{Name: "brandName", Kind: typegen.FieldKind, DatabaseType: "varchar", TypeCode: ptr(12), Length: ptr(200)},
			},
		},
	})
}
