package typegen

import (
	"slices"

	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/dbmd"
)

// GeneratedType is the result type of one specification node. Properties
// absorbed from inline parents are part of the lists of their kind.
type GeneratedType struct {
	Name                      string
	FieldProperties           []FieldProperty
	ExpressionProperties      []ExpressionProperty
	ChildCollectionProperties []ChildCollectionProperty
	ParentReferenceProperties []ParentReferenceProperty

	// Unwrapped marks a child collection element type whose single property
	// stands for the whole element.
	Unwrapped bool
}

// PropertyCount returns the number of properties of all kinds.
func (t *GeneratedType) PropertyCount() int {
	return len(t.FieldProperties) + len(t.ExpressionProperties) +
		len(t.ChildCollectionProperties) + len(t.ParentReferenceProperties)
}

// EqualsIgnoringName reports whether t and o have the same properties and the
// same unwrapped flag. Nested types are compared by Equal.
func (t *GeneratedType) EqualsIgnoringName(o *GeneratedType) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.Unwrapped == o.Unwrapped &&
		slices.EqualFunc(t.FieldProperties, o.FieldProperties, FieldProperty.Equal) &&
		slices.EqualFunc(t.ExpressionProperties, o.ExpressionProperties, ExpressionProperty.Equal) &&
		slices.EqualFunc(t.ChildCollectionProperties, o.ChildCollectionProperties, ChildCollectionProperty.Equal) &&
		slices.EqualFunc(t.ParentReferenceProperties, o.ParentReferenceProperties, ParentReferenceProperty.Equal)
}

// Equal reports whether t and o have the same name and structure.
func (t *GeneratedType) Equal(o *GeneratedType) bool {
	if t == o {
		return true
	}
	return t != nil && o != nil && t.Name == o.Name && t.EqualsIgnoringName(o)
}

func (t *GeneratedType) withName(name string) *GeneratedType {
	c := *t
	c.Name = name
	return &c
}

// FieldProperty is a property backed by a database field.
type FieldProperty struct {
	Name             string
	TypeCode         int
	DatabaseType     string
	Length           *int
	Precision        *int
	FractionalDigits *int
	Nullable         *bool // nil when unknown
	TypeOverrides    []spec.TypeOverride
}

func newFieldProperty(name string, f dbmd.Field, overrides []spec.TypeOverride) FieldProperty {
	return FieldProperty{
		Name:             name,
		TypeCode:         f.TypeCode,
		DatabaseType:     f.DatabaseType,
		Length:           f.Length,
		Precision:        f.Precision,
		FractionalDigits: f.FractionalDigits,
		Nullable:         f.Nullable,
		TypeOverrides:    overrides,
	}
}

// MaybeNull reports whether the property may hold nulls, unknown nullability
// included.
func (p FieldProperty) MaybeNull() bool { return p.Nullable == nil || *p.Nullable }

func (p FieldProperty) toNullable() FieldProperty {
	if p.Nullable != nil && *p.Nullable {
		return p
	}
	nullable := true
	p.Nullable = &nullable
	return p
}

func (p FieldProperty) Equal(o FieldProperty) bool {
	return p.Name == o.Name &&
		p.TypeCode == o.TypeCode &&
		p.DatabaseType == o.DatabaseType &&
		equalPtr(p.Length, o.Length) &&
		equalPtr(p.Precision, o.Precision) &&
		equalPtr(p.FractionalDigits, o.FractionalDigits) &&
		equalPtr(p.Nullable, o.Nullable) &&
		slices.Equal(p.TypeOverrides, o.TypeOverrides)
}

// ExpressionProperty is a property computed by a SQL expression. Expression
// values are always nullable.
type ExpressionProperty struct {
	Name          string
	Expression    string
	TypeOverrides []spec.TypeOverride
}

func (p ExpressionProperty) Equal(o ExpressionProperty) bool {
	return p.Name == o.Name && p.Expression == o.Expression && slices.Equal(p.TypeOverrides, o.TypeOverrides)
}

// ChildCollectionProperty holds the elements of a child collection. It is only
// nullable when absorbed from an inline parent that may be absent.
type ChildCollectionProperty struct {
	Name     string
	Type     *GeneratedType
	Nullable bool
}

func (p ChildCollectionProperty) Equal(o ChildCollectionProperty) bool {
	return p.Name == o.Name && p.Nullable == o.Nullable && p.Type.Equal(o.Type)
}

// ParentReferenceProperty holds the object of a referenced parent.
type ParentReferenceProperty struct {
	Name     string
	Type     *GeneratedType
	Nullable bool
}

func (p ParentReferenceProperty) Equal(o ParentReferenceProperty) bool {
	return p.Name == o.Name && p.Nullable == o.Nullable && p.Type.Equal(o.Type)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
