package dbmd

import (
	"fmt"
	"slices"
	"strings"
)

// ForeignKeyNotFoundError is returned when no foreign key links a child relation to
// a parent relation under the requested constraints.
type ForeignKeyNotFoundError struct {
	Child, Parent RelID
	FieldNames    []string // requested source fields, nil when none were given
}

func (e *ForeignKeyNotFoundError) Error() string {
	if e.FieldNames != nil {
		return fmt.Sprintf("no foreign key found from child table %s to parent table %s with source fields (%s)",
			e.Child, e.Parent, strings.Join(e.FieldNames, ", "))
	}
	return fmt.Sprintf("no foreign key found from child table %s to parent table %s", e.Child, e.Parent)
}

// AmbiguousForeignKeyError is returned when more than one foreign key satisfies a lookup.
type AmbiguousForeignKeyError struct {
	Child, Parent RelID
	FieldNames    []string
	Candidates    []ForeignKey
}

func (e *AmbiguousForeignKeyError) Error() string {
	cands := make([]string, len(e.Candidates))
	for i, fk := range e.Candidates {
		cands[i] = fk.describeSourceFields()
	}
	how := "and no foreign key fields were specified to disambiguate"
	if e.FieldNames != nil {
		how = "with the same specified source fields"
	}
	return fmt.Sprintf("child table %s has multiple foreign keys to parent table %s %s; candidate source fields: %s",
		e.Child, e.Parent, how, strings.Join(cands, ", "))
}

// ForeignKeysBetween returns the foreign keys from child to parent. A nil child or
// parent leaves that end unconstrained. With RegisteredTablesOnly, keys referencing a
// relation absent from the metadata are dropped.
func (md *DatabaseMetadata) ForeignKeysBetween(child, parent *RelID, scope ForeignKeyScope) []ForeignKey {
	var fks []ForeignKey
	switch {
	case child == nil && parent == nil:
		fks = md.doc.ForeignKeys
	case child != nil:
		for _, fk := range md.fksBySource[*child] {
			if parent == nil || fk.TargetRelationID == *parent {
				fks = append(fks, fk)
			}
		}
	default:
		fks = md.fksByTarget[*parent]
	}

	if scope == AllTables {
		return slices.Clone(fks)
	}
	res := make([]ForeignKey, 0, len(fks))
	for _, fk := range fks {
		_, srcOK := md.relationsByID[fk.SourceRelationID]
		_, tgtOK := md.relationsByID[fk.TargetRelationID]
		if srcOK && tgtOK {
			res = append(res, fk)
		}
	}
	return res
}

// ResolveForeignKey finds the single foreign key from child to parent. When
// fieldNames is non-nil, only keys whose source fields are exactly that set (after
// normalization, in any order) qualify.
func (md *DatabaseMetadata) ResolveForeignKey(child, parent RelID, fieldNames []string) (ForeignKey, error) {
	var wanted map[string]struct{}
	if fieldNames != nil {
		wanted = make(map[string]struct{}, len(fieldNames))
		for _, n := range fieldNames {
			wanted[md.NormalizeName(n)] = struct{}{}
		}
	}

	var matches []ForeignKey
	for _, fk := range md.ForeignKeysBetween(&child, &parent, RegisteredTablesOnly) {
		if wanted == nil || fk.sourceFieldsEqual(wanted) {
			matches = append(matches, fk)
		}
	}

	switch len(matches) {
	case 0:
		return ForeignKey{}, &ForeignKeyNotFoundError{Child: child, Parent: parent, FieldNames: fieldNames}
	case 1:
		return matches[0], nil
	default:
		return ForeignKey{}, &AmbiguousForeignKeyError{Child: child, Parent: parent, FieldNames: fieldNames, Candidates: matches}
	}
}
