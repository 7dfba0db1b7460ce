package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"
)

// The document types mirror the tree in the serialized (YAML or JSON) form used
// by query group files. Parents are split by kind and joins are two optional
// fields, so they are converted into the tree's closed unions after decoding.

type queryGroupDoc struct {
	DefaultSchema       string         `json:"defaultSchema"`
	PropertyNameDefault string         `json:"outputFieldNameDefault"`
	UnqualifiedSchemas  []string       `json:"generateUnqualifiedNamesForSchemas"`
	QuerySpecs          []querySpecDoc `json:"querySpecs"`
}

type querySpecDoc struct {
	QueryName           string       `json:"queryName"`
	TableJSON           *tableDoc    `json:"tableJson"`
	ResultReprs         []ResultRepr `json:"resultRepresentations"`
	GenerateResultTypes *bool        `json:"generateResultTypes"`
	PropertyNameDefault string       `json:"outputFieldNameDefault"`
	OrderBy             string       `json:"orderBy"`
	ForUpdate           bool         `json:"forUpdate"`
}

type tableDoc struct {
	Table                  string              `json:"table"`
	FieldExpressions       []fieldExprDoc      `json:"fieldExpressions"`
	InlineParentTables     []parentDoc         `json:"inlineParentTables"`
	ReferencedParentTables []parentDoc         `json:"referencedParentTables"`
	ChildTableCollections  []childDoc          `json:"childTableCollections"`
	FieldParamConditions   []fieldConditionDoc `json:"fieldParamConditions"`
	RecordCondition        *recordConditionDoc `json:"recordCondition"`
}

type fieldExprDoc struct {
	Field            string         `json:"field"`
	Expression       string         `json:"expression"`
	WithTableAliasAs string         `json:"withTableAliasAs"`
	JSONProperty     string         `json:"jsonProperty"`
	GenerateTypes    []TypeOverride `json:"generateTypes"`
}

// UnmarshalJSON also accepts a bare string naming a field.
func (d *fieldExprDoc) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &d.Field)
	}
	type plain fieldExprDoc
	return json.Unmarshal(data, (*plain)(d))
}

type customJoinDoc struct {
	EquatedFields []FieldPair `json:"equatedFields"`
}

type parentDoc struct {
	ReferenceName       string         `json:"referenceName"`
	TableJSON           *tableDoc      `json:"tableJson"`
	ViaForeignKeyFields []string       `json:"viaForeignKeyFields"`
	CustomJoinCondition *customJoinDoc `json:"customJoinCondition"`
}

type childDoc struct {
	CollectionName      string         `json:"collectionName"`
	TableJSON           *tableDoc      `json:"tableJson"`
	ForeignKeyFields    []string       `json:"foreignKeyFields"`
	CustomJoinCondition *customJoinDoc `json:"customJoinCondition"`
	Unwrap              bool           `json:"unwrap"`
	OrderBy             string         `json:"orderBy"`
}

type fieldConditionDoc struct {
	Field     string   `json:"field"`
	Op        Operator `json:"op"`
	ParamName string   `json:"paramName"`
}

type recordConditionDoc struct {
	SQL              string   `json:"sql"`
	ParamNames       []string `json:"paramNames"`
	WithTableAliasAs string   `json:"withTableAliasAs"`
}

// ReadQueryGroup decodes a query group document in YAML or JSON form.
func ReadQueryGroup(r io.Reader) (QueryGroupSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return QueryGroupSpec{}, fmt.Errorf("failed to read query group document: %w", err)
	}
	var doc queryGroupDoc
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return QueryGroupSpec{}, fmt.Errorf("failed to decode query group document: %w", err)
	}
	return doc.toSpec()
}

// LoadQueryGroup reads a query group document file.
func LoadQueryGroup(path string) (QueryGroupSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return QueryGroupSpec{}, fmt.Errorf("failed to open query group file: %w", err)
	}
	defer f.Close()

	group, err := ReadQueryGroup(f)
	if err != nil {
		return QueryGroupSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return group, nil
}

func (d queryGroupDoc) toSpec() (QueryGroupSpec, error) {
	group := QueryGroupSpec{
		DefaultSchema:       d.DefaultSchema,
		PropertyNameDefault: d.PropertyNameDefault,
		UnqualifiedSchemas:  d.UnqualifiedSchemas,
	}
	seen := make(map[string]struct{}, len(d.QuerySpecs))
	for i, q := range d.QuerySpecs {
		loc := At(q.QueryName)
		if q.QueryName == "" {
			return QueryGroupSpec{}, Errorf(At(fmt.Sprintf("#%d", i+1)), KindInvalidSpecification, "queryName is required")
		}
		if _, dup := seen[q.QueryName]; dup {
			return QueryGroupSpec{}, Errorf(loc, KindInvalidSpecification, "duplicate query name")
		}
		seen[q.QueryName] = struct{}{}

		for _, r := range q.ResultReprs {
			if !r.Valid() {
				return QueryGroupSpec{}, Errorf(loc.Add("resultRepresentations"), KindInvalidSpecification,
					"unknown result representation %q", r)
			}
		}
		if q.TableJSON == nil || q.TableJSON.Table == "" {
			return QueryGroupSpec{}, Errorf(loc, KindInvalidSpecification, "tableJson is required")
		}
		table, err := q.TableJSON.toSpec(loc.Add("table '" + q.TableJSON.Table + "'"))
		if err != nil {
			return QueryGroupSpec{}, err
		}
		group.Queries = append(group.Queries, QuerySpec{
			Name:                q.QueryName,
			ResultReprs:         q.ResultReprs,
			Table:               table,
			OrderBy:             q.OrderBy,
			ForUpdate:           q.ForUpdate,
			GenerateTypes:       q.GenerateResultTypes == nil || *q.GenerateResultTypes,
			PropertyNameDefault: q.PropertyNameDefault,
		})
	}
	return group, nil
}

// toSpec converts a table node; loc already names the node.
func (d tableDoc) toSpec(loc Location) (TableOutputSpec, error) {
	if d.Table == "" {
		return TableOutputSpec{}, Errorf(loc, KindInvalidSpecification, "table is required")
	}

	s := TableOutputSpec{Table: d.Table}
	for _, fe := range d.FieldExpressions {
		s.FieldExpressions = append(s.FieldExpressions, FieldExpr{
			Field:            fe.Field,
			Expression:       fe.Expression,
			AliasPlaceholder: fe.WithTableAliasAs,
			OutputName:       fe.JSONProperty,
			TypeOverrides:    fe.GenerateTypes,
		})
	}
	for _, p := range d.InlineParentTables {
		spec, join, err := p.convert(loc, "inline parent")
		if err != nil {
			return TableOutputSpec{}, err
		}
		s.Parents = append(s.Parents, InlineParent{Spec: spec, Join: join})
	}
	for _, p := range d.ReferencedParentTables {
		spec, join, err := p.convert(loc, "referenced parent")
		if err != nil {
			return TableOutputSpec{}, err
		}
		if p.ReferenceName == "" {
			return TableOutputSpec{}, Errorf(loc, KindInvalidSpecification, "referenced parent requires referenceName")
		}
		s.Parents = append(s.Parents, ReferencedParent{Name: p.ReferenceName, Spec: spec, Join: join})
	}
	for _, c := range d.ChildTableCollections {
		if c.CollectionName == "" {
			return TableOutputSpec{}, Errorf(loc, KindInvalidSpecification, "child collection requires collectionName")
		}
		childLoc := loc.Add("child collection '" + c.CollectionName + "'")
		join, err := joinSpecOf(childLoc, c.ForeignKeyFields, c.CustomJoinCondition)
		if err != nil {
			return TableOutputSpec{}, err
		}
		if c.TableJSON == nil {
			return TableOutputSpec{}, Errorf(childLoc, KindInvalidSpecification, "tableJson is required")
		}
		spec, err := c.TableJSON.toSpec(childLoc)
		if err != nil {
			return TableOutputSpec{}, err
		}
		s.ChildCollections = append(s.ChildCollections, ChildCollectionSpec{
			Name:    c.CollectionName,
			Spec:    spec,
			Join:    join,
			Unwrap:  c.Unwrap,
			OrderBy: c.OrderBy,
		})
	}
	for _, fc := range d.FieldParamConditions {
		if fc.Op != "" && !fc.Op.Valid() {
			return TableOutputSpec{}, Errorf(loc.Add("field condition on '"+fc.Field+"'"), KindInvalidSpecification,
				"unknown operator %q", fc.Op)
		}
		s.FieldConditions = append(s.FieldConditions, FieldParamCondition{Field: fc.Field, Op: fc.Op, ParamName: fc.ParamName})
	}
	if rc := d.RecordCondition; rc != nil {
		s.RawCondition = &RawCondition{SQL: rc.SQL, ParamNames: rc.ParamNames, AliasPlaceholder: rc.WithTableAliasAs}
	}
	return s, nil
}

func (p parentDoc) convert(loc Location, what string) (TableOutputSpec, JoinSpec, error) {
	if p.TableJSON == nil || p.TableJSON.Table == "" {
		return TableOutputSpec{}, nil, Errorf(loc, KindInvalidSpecification, "%s requires tableJson", what)
	}
	parentLoc := loc.Add(what + " '" + p.TableJSON.Table + "'")
	join, err := joinSpecOf(parentLoc, p.ViaForeignKeyFields, p.CustomJoinCondition)
	if err != nil {
		return TableOutputSpec{}, nil, err
	}
	spec, err := p.TableJSON.toSpec(parentLoc)
	if err != nil {
		return TableOutputSpec{}, nil, err
	}
	return spec, join, nil
}

func joinSpecOf(loc Location, fkFields []string, custom *customJoinDoc) (JoinSpec, error) {
	switch {
	case fkFields != nil && custom != nil:
		return nil, Errorf(loc, KindConflictingJoinSpec, "foreign key fields and a custom join condition cannot both be given")
	case custom != nil:
		if len(custom.EquatedFields) == 0 {
			return nil, Errorf(loc, KindInvalidSpecification, "custom join condition has no equated fields")
		}
		return CustomJoin{Pairs: custom.EquatedFields}, nil
	default:
		return ForeignKeyJoin{Fields: fkFields}, nil
	}
}
