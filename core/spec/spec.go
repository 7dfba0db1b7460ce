// Package spec defines the in-memory specification tree that describes which
// tables, fields, parents and child collections a generated query returns.
//
// A QuerySpec names a statement and its requested result representations; its
// TableOutputSpec is the root of a tree in which every node describes one table:
//
//	TableOutputSpec{
//		Table:            "drug",
//		FieldExpressions: spec.Fields("id", "name"),
//		Parents: []spec.ParentRef{
//			spec.InlineParent{Spec: spec.TableOutputSpec{Table: "compound", ...}},
//		},
//		ChildCollections: []spec.ChildCollectionSpec{
//			{Name: "brands", Spec: spec.TableOutputSpec{Table: "brand", ...}},
//		},
//	}
//
// Trees are treated as immutable once built.
package spec

// ResultRepr selects the shape of a generated query's result set.
type ResultRepr string

const (
	// MultiColumnRows returns one row per record with one column per output property.
	MultiColumnRows ResultRepr = "MULTI_COLUMN_ROWS"
	// JSONObjectRows returns one row per record with a single JSON object column.
	JSONObjectRows ResultRepr = "JSON_OBJECT_ROWS"
	// JSONArrayRow returns exactly one row holding a JSON array of all record objects.
	JSONArrayRow ResultRepr = "JSON_ARRAY_ROW"
)

// AllResultReprs lists the representations in their canonical order.
var AllResultReprs = []ResultRepr{MultiColumnRows, JSONObjectRows, JSONArrayRow}

// Valid reports whether r is one of the known representations.
func (r ResultRepr) Valid() bool {
	switch r {
	case MultiColumnRows, JSONObjectRows, JSONArrayRow:
		return true
	default:
		return false
	}
}

// TableOutputSpec describes the output of one table and, recursively, of the
// parents and children it pulls in.
type TableOutputSpec struct {
	Table            string // possibly schema-qualified
	FieldExpressions []FieldExpr
	Parents          []ParentRef
	ChildCollections []ChildCollectionSpec
	FieldConditions  []FieldParamCondition
	RawCondition     *RawCondition
}

// HasCondition reports whether the node filters its own rows.
func (s TableOutputSpec) HasCondition() bool {
	return len(s.FieldConditions) > 0 || s.RawCondition != nil
}

// InlineParents returns the inline parent references in declaration order.
func (s TableOutputSpec) InlineParents() []InlineParent {
	var res []InlineParent
	for _, p := range s.Parents {
		if ip, ok := p.(InlineParent); ok {
			res = append(res, ip)
		}
	}
	return res
}

// ReferencedParents returns the referenced parent references in declaration order.
func (s TableOutputSpec) ReferencedParents() []ReferencedParent {
	var res []ReferencedParent
	for _, p := range s.Parents {
		if rp, ok := p.(ReferencedParent); ok {
			res = append(res, rp)
		}
	}
	return res
}

// FieldExpr is one output column of a table: either a database field or a SQL
// expression over the table's alias.
type FieldExpr struct {
	Field      string
	Expression string

	// AliasPlaceholder stands for the table alias inside Expression, "$$" when empty.
	AliasPlaceholder string

	// OutputName overrides the derived property name; expressions must set it.
	OutputName string

	TypeOverrides []TypeOverride
}

// TypeOverride declares the type a result property gets in one target language.
type TypeOverride struct {
	Language string `json:"language"`
	Type     string `json:"typeDeclaration"`
}

// Fields is shorthand for a list of plain field expressions.
func Fields(names ...string) []FieldExpr {
	res := make([]FieldExpr, len(names))
	for i, n := range names {
		res[i] = FieldExpr{Field: n}
	}
	return res
}

// ParentRef is either an InlineParent or a ReferencedParent.
type ParentRef interface {
	parentRef()
	// ParentSpec is the output specification of the parent table.
	ParentSpec() TableOutputSpec
	// JoinSpec says how the child's rows are matched to the parent's.
	JoinSpec() JoinSpec
}

// InlineParent flattens the parent's output properties into the child's output.
type InlineParent struct {
	Spec TableOutputSpec
	Join JoinSpec // nil means an implicit foreign key
}

// ReferencedParent nests the parent's output as one object-valued property.
type ReferencedParent struct {
	Name string
	Spec TableOutputSpec
	Join JoinSpec // nil means an implicit foreign key
}

func (InlineParent) parentRef() {}
func (p InlineParent) ParentSpec() TableOutputSpec { return p.Spec }
func (p InlineParent) JoinSpec() JoinSpec { return orImplicit(p.Join) }
func (ReferencedParent) parentRef() {}
func (p ReferencedParent) ParentSpec() TableOutputSpec { return p.Spec }
func (p ReferencedParent) JoinSpec() JoinSpec { return orImplicit(p.Join) }

// JoinSpec is either a ForeignKeyJoin or a CustomJoin.
type JoinSpec interface {
	joinSpec()
}

// ForeignKeyJoin joins through a declared foreign key. Fields optionally names the
// key's child-side fields to pick one of several keys between the same tables.
type ForeignKeyJoin struct {
	Fields []string
}

// CustomJoin equates arbitrary child and parent fields.
type CustomJoin struct {
	Pairs []FieldPair
}

// FieldPair equates a child field with a parent field.
type FieldPair struct {
	ChildField  string `json:"childField"`
	ParentField string `json:"parentPrimaryKeyField"`
}

func (ForeignKeyJoin) joinSpec() {}
func (CustomJoin) joinSpec() {}

func orImplicit(j JoinSpec) JoinSpec {
	if j == nil {
		return ForeignKeyJoin{}
	}
	return j
}

// ChildCollectionSpec pulls the rows of a child table that reference the current
// row in as a JSON array property.
type ChildCollectionSpec struct {
	Name string
	Spec TableOutputSpec
	Join JoinSpec // nil means an implicit foreign key

	// Unwrap collects the bare values of the child's single output property
	// instead of objects.
	Unwrap  bool
	OrderBy string // may refer to the child output columns through "$$"
}

// JoinSpec returns the join, defaulting to an implicit foreign key.
func (c ChildCollectionSpec) JoinSpec() JoinSpec { return orImplicit(c.Join) }

// Operator is the comparison of a FieldParamCondition.
type Operator string

const (
	OpEQ               Operator = "EQ"
	OpNE               Operator = "NE"
	OpLT               Operator = "LT"
	OpLE               Operator = "LE"
	OpGT               Operator = "GT"
	OpGE               Operator = "GE"
	OpIN               Operator = "IN"
	OpNotIN            Operator = "NOT_IN"
	OpEQIfParamNonNull Operator = "EQ_IF_PARAM_NONNULL"
	OpIsNull           Operator = "IS_NULL"
	OpIsNotNull        Operator = "IS_NOT_NULL"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEQ, OpNE, OpLT, OpLE, OpGT, OpGE, OpIN, OpNotIN, OpEQIfParamNonNull, OpIsNull, OpIsNotNull:
		return true
	default:
		return false
	}
}

// AcceptsList reports whether the operator's parameter is a list of values.
func (op Operator) AcceptsList() bool { return op == OpIN || op == OpNotIN }

// TakesParam reports whether the operator compares against a parameter at all.
func (op Operator) TakesParam() bool { return op != OpIsNull && op != OpIsNotNull }

// FieldParamCondition compares a field of the node's table with a statement parameter.
type FieldParamCondition struct {
	Field     string
	Op        Operator // OpEQ when empty
	ParamName string   // derived from table and field names when empty
}

// Operator returns the condition's operator, defaulting to OpEQ.
func (c FieldParamCondition) Operator() Operator {
	if c.Op == "" {
		return OpEQ
	}
	return c.Op
}

// RawCondition is a SQL boolean expression over the node's table alias.
type RawCondition struct {
	SQL              string
	ParamNames       []string // parameters the SQL refers to, in order of appearance
	AliasPlaceholder string   // "$$" when empty
}

// QuerySpec is one named statement.
type QuerySpec struct {
	Name          string
	ResultReprs   []ResultRepr // JSONObjectRows when empty
	Table         TableOutputSpec
	OrderBy       string
	ForUpdate     bool
	GenerateTypes bool

	// PropertyNameDefault overrides the group's property naming style when set.
	PropertyNameDefault string
}

// Representations returns the requested representations, defaulting to JSONObjectRows.
func (q QuerySpec) Representations() []ResultRepr {
	if len(q.ResultReprs) == 0 {
		return []ResultRepr{JSONObjectRows}
	}
	return q.ResultReprs
}

// QueryGroupSpec is a batch of statements sharing naming defaults.
type QueryGroupSpec struct {
	DefaultSchema       string
	PropertyNameDefault string

	// UnqualifiedSchemas lists schemas whose tables are referenced without a
	// schema qualifier in generated SQL.
	UnqualifiedSchemas []string

	Queries []QuerySpec
}
