// Package resolve looks up the relations and joins a specification tree refers
// to, translating metadata lookup failures into located specification errors.
package resolve

import (
	"errors"
	"strings"

	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/sqlutil"
	"github.com/stokaro/sqljson/dbmd"
)

// Resolver binds specification names to metadata.
type Resolver struct {
	md            *dbmd.DatabaseMetadata
	defaultSchema string
}

// New creates a resolver. Unqualified table names take defaultSchema, or the
// metadata's schema when it is empty.
func New(md *dbmd.DatabaseMetadata, defaultSchema string) *Resolver {
	return &Resolver{md: md, defaultSchema: defaultSchema}
}

// Metadata returns the metadata the resolver reads.
func (r *Resolver) Metadata() *dbmd.DatabaseMetadata { return r.md }

// Table resolves a possibly schema-qualified table name.
func (r *Resolver) Table(loc spec.Location, table string) (*dbmd.RelMetadata, error) {
	id := r.md.RelIDFor(table, r.defaultSchema)
	rel, ok := r.md.Relation(id)
	if !ok {
		return nil, spec.Errorf(loc, spec.KindTableNotFound, "table %s not found in database metadata", id)
	}
	return rel, nil
}

// MissingFields returns the names among fields that rel does not have, in the
// order given and without repeats.
func (r *Resolver) MissingFields(rel *dbmd.RelMetadata, fields []string) []string {
	var missing []string
	seen := make(map[string]struct{})
	for _, f := range fields {
		if _, ok := rel.Field(r.md.NormalizeName(f)); ok {
			continue
		}
		if _, dup := seen[f]; !dup {
			seen[f] = struct{}{}
			missing = append(missing, f)
		}
	}
	return missing
}

// CheckFields fails with UnknownField naming every field of fields missing from rel.
func (r *Resolver) CheckFields(loc spec.Location, rel *dbmd.RelMetadata, fields []string) error {
	if missing := r.MissingFields(rel, fields); len(missing) > 0 {
		return spec.Errorf(loc, spec.KindUnknownField, "field(s) not found in table %s: %s",
			rel.RelationID, strings.Join(missing, ", "))
	}
	return nil
}

// Join returns the field pairs equating child rows with parent rows, with names
// normalized. Foreign key joins are resolved through the metadata; custom joins
// have every field checked on its own side.
func (r *Resolver) Join(loc spec.Location, child, parent *dbmd.RelMetadata, join spec.JoinSpec) ([]dbmd.ForeignKeyComponent, error) {
	switch j := join.(type) {
	case spec.ForeignKeyJoin:
		fk, err := r.md.ResolveForeignKey(child.RelationID, parent.RelationID, j.Fields)
		if err != nil {
			return nil, foreignKeyError(loc, err)
		}
		return fk.Components, nil
	case spec.CustomJoin:
		return r.customJoin(loc, child, parent, j)
	default:
		return nil, spec.Errorf(loc, spec.KindInvalidSpecification, "unsupported join specification %T", join)
	}
}

func (r *Resolver) customJoin(loc spec.Location, child, parent *dbmd.RelMetadata, j spec.CustomJoin) ([]dbmd.ForeignKeyComponent, error) {
	loc = loc.Add("custom join condition")
	comps := make([]dbmd.ForeignKeyComponent, len(j.Pairs))
	var childFields, parentFields []string
	for i, p := range j.Pairs {
		comps[i] = dbmd.ForeignKeyComponent{
			ForeignKeyFieldName: r.md.NormalizeName(p.ChildField),
			PrimaryKeyFieldName: r.md.NormalizeName(p.ParentField),
		}
		childFields = append(childFields, p.ChildField)
		parentFields = append(parentFields, p.ParentField)
	}

	var problems []string
	if missing := r.MissingFields(child, childFields); len(missing) > 0 {
		problems = append(problems, "child table "+child.RelationID.String()+" has no field(s) "+strings.Join(missing, ", "))
	}
	if missing := r.MissingFields(parent, parentFields); len(missing) > 0 {
		problems = append(problems, "parent table "+parent.RelationID.String()+" has no field(s) "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return nil, spec.Errorf(loc, spec.KindUnknownJoinField, "%s", strings.Join(problems, "; "))
	}
	return comps, nil
}

func foreignKeyError(loc spec.Location, err error) error {
	var ambiguous *dbmd.AmbiguousForeignKeyError
	if errors.As(err, &ambiguous) {
		return spec.Wrap(loc, spec.KindAmbiguousForeignKey, err)
	}
	return spec.Wrap(loc, spec.KindForeignKeyNotFound, err)
}

// CheckFieldExpr validates the shape of a field expression: exactly one of
// field and expression, an output name for expressions and a usable alias
// placeholder.
func CheckFieldExpr(loc spec.Location, fe spec.FieldExpr) error {
	switch {
	case fe.Field == "" && fe.Expression == "":
		return spec.Errorf(loc, spec.KindInvalidSpecification, "'field' or 'expression' must be provided")
	case fe.Field != "" && fe.Expression != "":
		return spec.Errorf(loc, spec.KindInvalidSpecification,
			"only one of 'field' and 'expression' may be provided, got field %q and expression %q", fe.Field, fe.Expression)
	case fe.Expression != "" && fe.OutputName == "":
		return spec.Errorf(loc, spec.KindInvalidSpecification, "an output name is required for expression %q", fe.Expression)
	case fe.Expression != "" && fe.AliasPlaceholder != "":
		if err := sqlutil.ValidateAliasPlaceholder(fe.AliasPlaceholder); err != nil {
			return spec.Wrap(loc, spec.KindInvalidAliasPlaceholder, err)
		}
	}
	return nil
}

// PropertyName returns the output name of a field expression: its explicit
// output name, or the naming function applied to its field.
func PropertyName(fe spec.FieldExpr, fn naming.PropertyNameFunc) string {
	if fe.OutputName != "" {
		return fe.OutputName
	}
	return fn(fe.Field)
}
