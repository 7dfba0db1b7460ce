package typegen

import (
	"maps"
	"slices"
)

// Scope is the set of types already named in a generation pass. A Scope is
// never modified; With returns an extended copy.
//
// Besides the types, a scope records the base name each type was derived from,
// so a type named "Drug_1" is known to be a variant of "Drug" without parsing
// its name.
type Scope struct {
	types     map[string]*GeneratedType
	baseNames map[string]string
}

// EmptyScope returns a scope without types.
func EmptyScope() Scope { return Scope{} }

// With returns a scope holding the receiver's types plus types. Types already
// in the scope under the same name are replaced.
func (s Scope) With(types ...*GeneratedType) Scope {
	if len(types) == 0 {
		return s
	}
	res := Scope{
		types:     maps.Clone(s.types),
		baseNames: maps.Clone(s.baseNames),
	}
	if res.types == nil {
		res.types = make(map[string]*GeneratedType, len(types))
		res.baseNames = make(map[string]string, len(types))
	}
	for _, t := range types {
		res.types[t.Name] = t
		if _, known := res.baseNames[t.Name]; !known {
			res.baseNames[t.Name] = t.Name
		}
	}
	return res
}

// withBaseName is With for a single type minted from baseName.
func (s Scope) withBaseName(t *GeneratedType, baseName string) Scope {
	res := s.With(t)
	res.baseNames[t.Name] = baseName
	return res
}

// Lookup returns the type of the given name.
func (s Scope) Lookup(name string) (*GeneratedType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Len returns the number of types in scope.
func (s Scope) Len() int { return len(s.types) }

// Names returns the type names in sorted order.
func (s Scope) Names() []string {
	return slices.Sorted(maps.Keys(s.types))
}

// BaseName returns the base name the named type was derived from.
func (s Scope) BaseName(name string) string {
	if b, ok := s.baseNames[name]; ok {
		return b
	}
	return name
}

// findEquivalent returns the first type, in name order, that was derived from
// baseName and equals t ignoring names.
func (s Scope) findEquivalent(t *GeneratedType, baseName string) (*GeneratedType, bool) {
	for _, name := range s.Names() {
		if s.BaseName(name) != baseName {
			continue
		}
		if existing := s.types[name]; existing.EqualsIgnoringName(t) {
			return existing, true
		}
	}
	return nil, false
}

func (s Scope) nameSet() map[string]struct{} {
	res := make(map[string]struct{}, len(s.types))
	for n := range s.types {
		res[n] = struct{}{}
	}
	return res
}
