package typegen

import (
	"github.com/stokaro/sqljson/core/spec"
)

// PropertyKind tells where a property's value comes from.
type PropertyKind string

const (
	FieldKind           PropertyKind = "field"
	ExpressionKind      PropertyKind = "expression"
	ParentReferenceKind PropertyKind = "parentReference"
	ChildCollectionKind PropertyKind = "childCollection"
)

// TypeDescriptor is the flat form of a GeneratedType handed to source writers.
type TypeDescriptor struct {
	Name       string               `json:"name"`
	Unwrapped  bool                 `json:"unwrapped,omitempty"`
	Properties []PropertyDescriptor `json:"properties"`
}

// PropertyDescriptor describes one property. Nested types are referred to by
// name.
type PropertyDescriptor struct {
	Name             string              `json:"name"`
	Kind             PropertyKind        `json:"kind"`
	DatabaseType     string              `json:"databaseType,omitempty"`
	TypeCode         *int                `json:"jdbcTypeCode,omitempty"`
	Length           *int                `json:"length,omitempty"`
	Precision        *int                `json:"precision,omitempty"`
	FractionalDigits *int                `json:"fractionalDigits,omitempty"`
	Expression       string              `json:"expression,omitempty"`
	TypeOverrides    []spec.TypeOverride `json:"typeOverrides,omitempty"`
	NestedType       string              `json:"nestedType,omitempty"`
	Nullable         bool                `json:"nullable"`
}

// Describe flattens types in order. Properties are listed fields first, then
// expressions, parent references and child collections.
func Describe(types []*GeneratedType) []TypeDescriptor {
	res := make([]TypeDescriptor, len(types))
	for i, t := range types {
		d := TypeDescriptor{
			Name:       t.Name,
			Unwrapped:  t.Unwrapped,
			Properties: make([]PropertyDescriptor, 0, t.PropertyCount()),
		}
		for _, p := range t.FieldProperties {
			typeCode := p.TypeCode
			d.Properties = append(d.Properties, PropertyDescriptor{
				Name:             p.Name,
				Kind:             FieldKind,
				DatabaseType:     p.DatabaseType,
				TypeCode:         &typeCode,
				Length:           p.Length,
				Precision:        p.Precision,
				FractionalDigits: p.FractionalDigits,
				TypeOverrides:    p.TypeOverrides,
				Nullable:         p.MaybeNull(),
			})
		}
		for _, p := range t.ExpressionProperties {
			d.Properties = append(d.Properties, PropertyDescriptor{
				Name:          p.Name,
				Kind:          ExpressionKind,
				Expression:    p.Expression,
				TypeOverrides: p.TypeOverrides,
				Nullable:      true,
			})
		}
		for _, p := range t.ParentReferenceProperties {
			d.Properties = append(d.Properties, PropertyDescriptor{
				Name:       p.Name,
				Kind:       ParentReferenceKind,
				NestedType: p.Type.Name,
				Nullable:   p.Nullable,
			})
		}
		for _, p := range t.ChildCollectionProperties {
			d.Properties = append(d.Properties, PropertyDescriptor{
				Name:       p.Name,
				Kind:       ChildCollectionKind,
				NestedType: p.Type.Name,
				Nullable:   p.Nullable,
			})
		}
		res[i] = d
	}
	return res
}
