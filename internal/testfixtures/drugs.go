// Package testfixtures provides the metadata of a small pharmaceutical schema
// shared by the package tests.
package testfixtures

import (
	"github.com/stokaro/sqljson/dbmd"
)

// Type codes as reported by JDBC-style metadata.
const (
	Integer = 4
	Varchar = 12
	Date    = 91
	Numeric = 2
)

const Schema = "drugs"

func ptr[T any](v T) *T { return &v }

func pk(name string, part int) dbmd.Field {
	return dbmd.Field{Name: name, TypeCode: Integer, DatabaseType: "int4", Precision: ptr(32),
		FractionalDigits: ptr(0), Nullable: ptr(false), PrimaryKeyPartNumber: ptr(part)}
}

func intField(name string, nullable bool) dbmd.Field {
	return dbmd.Field{Name: name, TypeCode: Integer, DatabaseType: "int4", Precision: ptr(32),
		FractionalDigits: ptr(0), Nullable: ptr(nullable)}
}

func textField(name string, length int, nullable bool) dbmd.Field {
	return dbmd.Field{Name: name, TypeCode: Varchar, DatabaseType: "varchar", Length: ptr(length), Nullable: ptr(nullable)}
}

func table(name string, fields ...dbmd.Field) dbmd.RelMetadata {
	return dbmd.RelMetadata{RelationID: dbmd.RelID{Schema: Schema, Name: name}, RelationType: dbmd.Table, Fields: fields}
}

func fk(child, parent string, pairs ...string) dbmd.ForeignKey {
	res := dbmd.ForeignKey{
		ConstraintName:   child + "_" + pairs[0] + "_fk",
		SourceRelationID: dbmd.RelID{Schema: Schema, Name: child},
		TargetRelationID: dbmd.RelID{Schema: Schema, Name: parent},
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		res.Components = append(res.Components, dbmd.ForeignKeyComponent{
			ForeignKeyFieldName: pairs[i],
			PrimaryKeyFieldName: pairs[i+1],
		})
	}
	return res
}

// DrugsDocument returns the metadata document of the drugs schema. Relations and
// foreign keys are deliberately listed out of order.
func DrugsDocument() dbmd.Document {
	return dbmd.Document{
		SchemaName:       Schema,
		DBMSName:         "PostgreSQL",
		DBMSVersion:      "16.2",
		DBMSMajorVersion: 16,
		DBMSMinorVersion: 2,
		CaseSensitivity:  dbmd.InsensitiveStoredLower,
		Relations: []dbmd.RelMetadata{
			table("drug",
				pk("id", 1),
				textField("name", 500, false),
				intField("compound_id", true),
				textField("mesh_id", 7, true),
				intField("cid", true),
				intField("registered_by", false),
				dbmd.Field{Name: "market_entry_date", TypeCode: Date, DatabaseType: "date", Nullable: ptr(true)},
				textField("therapeutic_indications", 4000, true),
			),
			table("brand",
				pk("drug_id", 1),
				dbmd.Field{Name: "brand_name", TypeCode: Varchar, DatabaseType: "varchar", Length: ptr(200),
					Nullable: ptr(false), PrimaryKeyPartNumber: ptr(2)},
				textField("language_code", 10, true),
				intField("manufacturer_id", true),
			),
			table("manufacturer",
				pk("id", 1),
				textField("name", 200, false),
			),
			table("analyst",
				pk("id", 1),
				textField("short_name", 50, false),
			),
			table("compound",
				pk("id", 1),
				textField("display_name", 50, true),
				textField("nctr_isis_id", 100, true),
				textField("cas", 50, true),
				intField("entered_by", false),
				intField("approved_by", true),
			),
			table("advisory",
				pk("id", 1),
				intField("drug_id", false),
				intField("advisory_type_id", false),
				textField("text", 2000, false),
			),
			table("advisory_type",
				pk("id", 1),
				textField("name", 50, false),
				intField("authority_id", false),
			),
			table("authority",
				pk("id", 1),
				textField("name", 200, false),
				textField("url", 500, true),
				textField("description", 2000, true),
				dbmd.Field{Name: "weight", TypeCode: Numeric, DatabaseType: "numeric", Precision: ptr(10),
					FractionalDigits: ptr(2), Nullable: ptr(true)},
			),
			table("functional_category",
				pk("id", 1),
				textField("name", 500, false),
				textField("description", 2000, true),
				intField("parent_functional_category_id", true),
			),
			table("drug_functional_category",
				pk("drug_id", 1),
				pk("functional_category_id", 2),
				pk("authority_id", 3),
			),
			table("reference",
				pk("id", 1),
				textField("publication", 2000, false),
			),
			table("drug_reference",
				pk("drug_id", 1),
				pk("reference_id", 2),
				intField("priority", true),
			),
		},
		ForeignKeys: []dbmd.ForeignKey{
			fk("drug", "compound", "compound_id", "id"),
			fk("drug", "analyst", "registered_by", "id"),
			fk("brand", "drug", "drug_id", "id"),
			fk("brand", "manufacturer", "manufacturer_id", "id"),
			fk("compound", "analyst", "entered_by", "id"),
			fk("compound", "analyst", "approved_by", "id"),
			fk("advisory", "drug", "drug_id", "id"),
			fk("advisory", "advisory_type", "advisory_type_id", "id"),
			fk("advisory_type", "authority", "authority_id", "id"),
			fk("functional_category", "functional_category", "parent_functional_category_id", "id"),
			fk("drug_functional_category", "drug", "drug_id", "id"),
			fk("drug_functional_category", "functional_category", "functional_category_id", "id"),
			fk("drug_functional_category", "authority", "authority_id", "id"),
			fk("drug_reference", "drug", "drug_id", "id"),
			fk("drug_reference", "reference", "reference_id", "id"),
			// references a relation outside the document
			fk("drug", "external_registry", "cid", "cid"),
		},
	}
}

// DrugsMetadata returns the indexed metadata of the drugs schema.
func DrugsMetadata() *dbmd.DatabaseMetadata {
	return dbmd.New(DrugsDocument())
}
