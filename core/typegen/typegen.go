// Package typegen derives the result types of generated queries from
// specification trees.
//
// Every tree node yields one GeneratedType named after its table. Inline parents
// contribute their properties to the node's own type, referenced parents and
// child collections contribute one property each that refers to the parent's or
// child's type. Subtrees with the same shape share a single type:
//
//	gen := typegen.New(md, typegen.Options{DefaultSchema: "drugs"})
//	types, _, err := gen.Generate("drugs query", tos, typegen.EmptyScope())
//	// types[0] is the root type, the rest are the nested types, each name once
package typegen

import (
	"fmt"

	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/resolve"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/dbmd"
)

// nameSuffixSeparator separates a base type name from its disambiguating number.
const nameSuffixSeparator = "_"

// Options configures a Generator.
type Options struct {
	DefaultSchema string

	// PropertyNameFn derives property names of fields without an explicit
	// output name. Defaults to naming.CamelCase.
	PropertyNameFn naming.PropertyNameFunc
}

// Generator produces result types against one metadata document. It is safe
// for concurrent use.
type Generator struct {
	resolver   *resolve.Resolver
	md         *dbmd.DatabaseMetadata
	propNameFn naming.PropertyNameFunc
}

// New creates a type generator.
func New(md *dbmd.DatabaseMetadata, opts Options) *Generator {
	fn := opts.PropertyNameFn
	if fn == nil {
		fn = naming.CamelCase.Func()
	}
	return &Generator{
		resolver:   resolve.New(md, opts.DefaultSchema),
		md:         md,
		propNameFn: fn,
	}
}

// WithPropertyNameFn returns a generator deriving property names with fn.
func (g *Generator) WithPropertyNameFn(fn naming.PropertyNameFunc) *Generator {
	if fn == nil {
		return g
	}
	c := *g
	c.propNameFn = fn
	return &c
}

// Generate returns the types of the tree rooted at tos, root type first. Type
// names already in scope are not reused for different shapes, and types in
// scope with the same shape are reused as they are. The returned scope extends
// scope with all returned types.
func (g *Generator) Generate(stmtName string, tos spec.TableOutputSpec, scope Scope) ([]*GeneratedType, Scope, error) {
	loc := spec.At(stmtName).Add("table '" + tos.Table + "'")
	res, err := g.generate(loc, tos, scope, false)
	if err != nil {
		return nil, scope, err
	}
	types := DedupeByName(append([]*GeneratedType{res.root}, res.nested...))
	return types, res.scope.withBaseName(res.root, res.baseName), nil
}

// generated is the outcome of one node.
type generated struct {
	root     *GeneratedType
	baseName string
	nested   []*GeneratedType // types below root
	scope    Scope            // the caller's scope plus nested, root excluded
}

func (g *Generator) generate(loc spec.Location, tos spec.TableOutputSpec, callerScope Scope, unwrap bool) (generated, error) {
	rel, err := g.resolver.Table(loc, tos.Table)
	if err != nil {
		return generated{}, err
	}

	t := &GeneratedType{Unwrapped: unwrap}
	if err := g.addOwnProperties(t, tos, rel, loc); err != nil {
		return generated{}, err
	}

	scope := callerScope
	var nested []*GeneratedType

	for _, ip := range tos.InlineParents() {
		ipLoc := loc.Add("inline parent '" + ip.Spec.Table + "'")
		forceNullable, err := g.parentMayBeAbsent(ipLoc, rel, ip)
		if err != nil {
			return generated{}, err
		}
		res, err := g.generate(ipLoc, ip.Spec, scope, false)
		if err != nil {
			return generated{}, err
		}
		absorb(t, res.root, forceNullable)
		// The parent's own type is flattened away, only its nested types remain.
		nested = append(nested, res.nested...)
		scope = res.scope
	}

	for _, rp := range tos.ReferencedParents() {
		rpLoc := loc.Add("referenced parent '" + rp.Spec.Table + "'")
		nullable, err := g.parentMayBeAbsent(rpLoc, rel, rp)
		if err != nil {
			return generated{}, err
		}
		res, err := g.generate(rpLoc, rp.Spec, scope, false)
		if err != nil {
			return generated{}, err
		}
		t.ParentReferenceProperties = append(t.ParentReferenceProperties,
			ParentReferenceProperty{Name: rp.Name, Type: res.root, Nullable: nullable})
		nested = append(nested, res.root)
		nested = append(nested, res.nested...)
		scope = res.scope.withBaseName(res.root, res.baseName)
	}

	for _, cc := range tos.ChildCollections {
		ccLoc := loc.Add("child collection '" + cc.Name + "'")
		child, err := g.resolver.Table(ccLoc, cc.Spec.Table)
		if err != nil {
			return generated{}, err
		}
		if _, err := g.resolver.Join(ccLoc, child, rel, cc.JoinSpec()); err != nil {
			return generated{}, err
		}
		res, err := g.generate(ccLoc, cc.Spec, scope, cc.Unwrap)
		if err != nil {
			return generated{}, err
		}
		t.ChildCollectionProperties = append(t.ChildCollectionProperties,
			ChildCollectionProperty{Name: cc.Name, Type: res.root})
		nested = append(nested, res.root)
		nested = append(nested, res.nested...)
		scope = res.scope.withBaseName(res.root, res.baseName)
	}

	if unwrap && t.PropertyCount() != 1 {
		return generated{}, spec.Errorf(loc, spec.KindInvalidUnwrap,
			"an unwrapped collection needs exactly one output property, table '%s' has %d", tos.Table, t.PropertyCount())
	}

	baseName := naming.UpperCamelCase(naming.UnDoubleQuote(rel.RelationID.Name))
	return generated{
		root:     g.name(t, baseName, callerScope, scope),
		baseName: baseName,
		nested:   nested,
		scope:    scope,
	}, nil
}

// name gives t its name. The base name is used when free; otherwise a type of
// the caller's scope derived from the same base name and equal in shape is
// reused, or a fresh suffixed name is minted.
func (g *Generator) name(t *GeneratedType, baseName string, callerScope, scope Scope) *GeneratedType {
	if _, taken := scope.Lookup(baseName); !taken {
		return t.withName(baseName)
	}
	if existing, ok := callerScope.findEquivalent(t, baseName); ok {
		return existing
	}
	return t.withName(naming.MakeNameNotInSet(baseName, scope.nameSet(), nameSuffixSeparator))
}

func (g *Generator) addOwnProperties(t *GeneratedType, tos spec.TableOutputSpec, rel *dbmd.RelMetadata, loc spec.Location) error {
	var simple []string
	for i, fe := range tos.FieldExpressions {
		feLoc := loc.Add(fmt.Sprintf("field expression #%d", i+1))
		if err := resolve.CheckFieldExpr(feLoc, fe); err != nil {
			return err
		}
		if fe.Field != "" {
			simple = append(simple, fe.Field)
		} else if len(fe.TypeOverrides) == 0 {
			return spec.Errorf(feLoc, spec.KindMissingTypeOverride,
				"expression property %q needs a declared type", fe.OutputName)
		}
	}
	if err := g.resolver.CheckFields(loc, rel, simple); err != nil {
		return err
	}

	for _, fe := range tos.FieldExpressions {
		name := naming.UnDoubleQuote(resolve.PropertyName(fe, g.propNameFn))
		if fe.Field == "" {
			t.ExpressionProperties = append(t.ExpressionProperties,
				ExpressionProperty{Name: name, Expression: fe.Expression, TypeOverrides: fe.TypeOverrides})
			continue
		}
		f, _ := rel.Field(g.md.NormalizeName(fe.Field))
		t.FieldProperties = append(t.FieldProperties, newFieldProperty(name, f, fe.TypeOverrides))
	}
	return nil
}

// parentMayBeAbsent reports whether a child row can lack its parent row: when
// the parent's rows are filtered, or when a child side join field may be null.
func (g *Generator) parentMayBeAbsent(loc spec.Location, child *dbmd.RelMetadata, p spec.ParentRef) (bool, error) {
	parent, err := g.resolver.Table(loc, p.ParentSpec().Table)
	if err != nil {
		return false, err
	}
	comps, err := g.resolver.Join(loc, child, parent, p.JoinSpec())
	if err != nil {
		return false, err
	}
	if p.ParentSpec().HasCondition() {
		return true, nil
	}
	for _, c := range comps {
		f, ok := child.Field(c.ForeignKeyFieldName)
		if !ok || !f.KnownNotNull() {
			return true, nil
		}
	}
	return false, nil
}

// absorb adds the properties of an inline parent's type to t, in nullable form
// when forceNullable is set.
func absorb(t, parent *GeneratedType, forceNullable bool) {
	for _, p := range parent.FieldProperties {
		if forceNullable {
			p = p.toNullable()
		}
		t.FieldProperties = append(t.FieldProperties, p)
	}
	t.ExpressionProperties = append(t.ExpressionProperties, parent.ExpressionProperties...)
	for _, p := range parent.ChildCollectionProperties {
		p.Nullable = p.Nullable || forceNullable
		t.ChildCollectionProperties = append(t.ChildCollectionProperties, p)
	}
	for _, p := range parent.ParentReferenceProperties {
		p.Nullable = p.Nullable || forceNullable
		t.ParentReferenceProperties = append(t.ParentReferenceProperties, p)
	}
}

// DedupeByName concatenates the lists, keeping only the first type of each name.
func DedupeByName(lists ...[]*GeneratedType) []*GeneratedType {
	seen := make(map[string]struct{})
	var res []*GeneratedType
	for _, l := range lists {
		for _, t := range l {
			if _, dup := seen[t.Name]; dup {
				continue
			}
			seen[t.Name] = struct{}{}
			res = append(res, t)
		}
	}
	return res
}
