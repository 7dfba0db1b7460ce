package sqlgen

import (
	"strings"

	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/sqlutil"
	"github.com/stokaro/sqljson/dbmd"
)

// ParamStyle selects how statement parameters are written.
type ParamStyle string

const (
	NamedParams      ParamStyle = "named"      // :name
	PositionalParams ParamStyle = "positional" // ?
)

// defaultParamName derives a parameter name from the condition's table and field,
// "drugId" for drug.id, with a "List" suffix for list operators.
func defaultParamName(table string, c spec.FieldParamCondition) string {
	if _, name, ok := strings.Cut(table, "."); ok {
		table = name
	}
	name := naming.LowerCamelCase(naming.UnDoubleQuote(table)) + naming.UpperCamelCase(naming.UnDoubleQuote(c.Field))
	if c.Operator().AcceptsList() {
		name += "List"
	}
	return name
}

// fieldConditionSQL renders a field condition on the given alias and returns the
// parameter names in the order their placeholders appear.
func fieldConditionSQL(c spec.FieldParamCondition, table, alias string, style ParamStyle) (string, []string) {
	field := alias + "." + c.Field
	op := c.Operator()
	if !op.TakesParam() {
		if op == spec.OpIsNull {
			return field + " is null", nil
		}
		return field + " is not null", nil
	}

	name := c.ParamName
	if name == "" {
		name = defaultParamName(table, c)
	}
	param := "?"
	if style != PositionalParams {
		param = ":" + name
	}

	switch op {
	case spec.OpNE:
		return field + " <> " + param, []string{name}
	case spec.OpLT:
		return field + " < " + param, []string{name}
	case spec.OpLE:
		return field + " <= " + param, []string{name}
	case spec.OpGT:
		return field + " > " + param, []string{name}
	case spec.OpGE:
		return field + " >= " + param, []string{name}
	case spec.OpIN:
		return field + " IN (" + param + ")", []string{name}
	case spec.OpNotIN:
		return field + " NOT IN (" + param + ")", []string{name}
	case spec.OpEQIfParamNonNull:
		return "(" + param + " is null or " + field + " = " + param + ")", []string{name, name}
	default:
		return field + " = " + param, []string{name}
	}
}

// rawConditionSQL renders a raw condition in parentheses with its alias
// placeholder replaced.
func rawConditionSQL(c spec.RawCondition, alias string) string {
	return "(" + sqlutil.SubstituteAlias(c.SQL, c.AliasPlaceholder, alias) + ")"
}

// linkCondition correlates a nested query block with the block enclosing it.
type linkCondition struct {
	otherAlias string // alias of the enclosing block's table
	components []dbmd.ForeignKeyComponent

	// otherIsParent is set when the nested block is the child side: its rows are
	// matched to the enclosing (parent) row. Otherwise the nested block is the
	// parent of the enclosing row.
	otherIsParent bool
}

// render equates child foreign key fields with parent fields, the nested block
// being reached through alias.
func (l linkCondition) render(quote func(string) string, alias string) string {
	childAlias, parentAlias := l.otherAlias, alias
	if l.otherIsParent {
		childAlias, parentAlias = alias, l.otherAlias
	}
	return joinEquation(quote, l.components, childAlias, parentAlias, "")
}

// joinEquation renders "c.fk = p.pk and ..." with an optional prefix on parent
// field names.
func joinEquation(quote func(string) string, comps []dbmd.ForeignKeyComponent, childAlias, parentAlias, parentPrefix string) string {
	eqs := make([]string, len(comps))
	for i, fc := range comps {
		eqs[i] = childAlias + "." + quote(fc.ForeignKeyFieldName) +
			" = " +
			parentAlias + "." + quote(parentPrefix+fc.PrimaryKeyFieldName)
	}
	return strings.Join(eqs, " and ")
}
