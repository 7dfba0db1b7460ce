// Package dbmd models the relational metadata document the generators work from:
// relations, their fields, foreign keys and the identifier case conventions of the
// database they were read from.
package dbmd

import (
	"slices"
	"strings"
)

// CaseSensitivity describes how the database folds and stores unquoted identifiers.
type CaseSensitivity string

const (
	InsensitiveStoredLower CaseSensitivity = "INSENSITIVE_STORED_LOWER"
	InsensitiveStoredUpper CaseSensitivity = "INSENSITIVE_STORED_UPPER"
	InsensitiveStoredMixed CaseSensitivity = "INSENSITIVE_STORED_MIXED"
	Sensitive              CaseSensitivity = "SENSITIVE"
)

// RelationType distinguishes tables from views.
type RelationType string

const (
	Table          RelationType = "Table"
	View           RelationType = "View"
	UnknownRelType RelationType = "Unknown"
)

// ForeignKeyScope restricts foreign key lookups to keys whose both ends are
// relations present in the metadata, or not.
type ForeignKeyScope int

const (
	RegisteredTablesOnly ForeignKeyScope = iota
	AllTables
)

// RelID identifies a relation. An empty Schema means the relation is unqualified.
// Both parts are stored in normalized form.
type RelID struct {
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name"`
}

// IDString renders the id as "schema.name", or just the name when unqualified.
func (id RelID) IDString() string {
	if id.Schema == "" {
		return id.Name
	}
	return id.Schema + "." + id.Name
}

func (id RelID) String() string { return id.IDString() }

// Field is a column of a relation.
type Field struct {
	Name                 string `json:"name"`
	TypeCode             int    `json:"jdbcTypeCode"` // java.sql.Types style code
	DatabaseType         string `json:"databaseType"`
	Length               *int   `json:"length,omitempty"`
	Precision            *int   `json:"precision,omitempty"`
	FractionalDigits     *int   `json:"fractionalDigits,omitempty"`
	Nullable             *bool  `json:"nullable,omitempty"`             // nil when unknown
	PrimaryKeyPartNumber *int   `json:"primaryKeyPartNumber,omitempty"` // 1-based
	Comment              string `json:"comment,omitempty"`
}

// IsPrimaryKey reports whether the field is part of its relation's primary key.
func (f Field) IsPrimaryKey() bool { return f.PrimaryKeyPartNumber != nil }

// KnownNotNull reports whether the field is known to never hold nulls.
func (f Field) KnownNotNull() bool { return f.Nullable != nil && !*f.Nullable }

// RelMetadata describes a table or view.
type RelMetadata struct {
	RelationID   RelID        `json:"relationId"`
	RelationType RelationType `json:"relationType"`
	Comment      string       `json:"comment,omitempty"`
	Fields       []Field      `json:"fields"`
}

// Field returns the field with the given (normalized) name.
func (r *RelMetadata) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PrimaryKeyFields returns the primary key fields ordered by their key position.
func (r *RelMetadata) PrimaryKeyFields() []Field {
	var pks []Field
	for _, f := range r.Fields {
		if f.IsPrimaryKey() {
			pks = append(pks, f)
		}
	}
	slices.SortStableFunc(pks, func(a, b Field) int {
		return *a.PrimaryKeyPartNumber - *b.PrimaryKeyPartNumber
	})
	return pks
}

// ForeignKeyComponent equates one child (source) field with one parent (target) field.
type ForeignKeyComponent struct {
	ForeignKeyFieldName string `json:"foreignKeyFieldName"`
	PrimaryKeyFieldName string `json:"primaryKeyFieldName"`
}

// ForeignKey links a child relation to a parent relation.
type ForeignKey struct {
	ConstraintName   string                `json:"constraintName,omitempty"`
	SourceRelationID RelID                 `json:"foreignKeyRelationId"`
	TargetRelationID RelID                 `json:"primaryKeyRelationId"`
	Components       []ForeignKeyComponent `json:"foreignKeyComponents"`
}

// SourceFieldNames returns the child-side field names in component order.
func (fk ForeignKey) SourceFieldNames() []string {
	names := make([]string, len(fk.Components))
	for i, c := range fk.Components {
		names[i] = c.ForeignKeyFieldName
	}
	return names
}

// TargetFieldNames returns the parent-side field names in component order.
func (fk ForeignKey) TargetFieldNames() []string {
	names := make([]string, len(fk.Components))
	for i, c := range fk.Components {
		names[i] = c.PrimaryKeyFieldName
	}
	return names
}

// sourceFieldsEqual reports whether the key's source fields are exactly the given
// set of normalized names.
func (fk ForeignKey) sourceFieldsEqual(names map[string]struct{}) bool {
	if len(fk.Components) != len(names) {
		return false
	}
	for _, c := range fk.Components {
		if _, ok := names[c.ForeignKeyFieldName]; !ok {
			return false
		}
	}
	return true
}

func (fk ForeignKey) describeSourceFields() string {
	return "(" + strings.Join(fk.SourceFieldNames(), ", ") + ")"
}
