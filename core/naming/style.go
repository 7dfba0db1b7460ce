package naming

import (
	"fmt"
	"strings"
)

// PropertyNameStyle selects how output names are derived from database field names
// when a field expression does not name its output explicitly.
type PropertyNameStyle string

const (
	AsInDatabase PropertyNameStyle = "asIs"
	CamelCase    PropertyNameStyle = "camelCase"
)

// PropertyNameFunc derives an output property name from a database field name.
type PropertyNameFunc func(fieldName string) string

// ParsePropertyNameStyle accepts the style names used in configuration files,
// case-insensitively. An empty name selects CamelCase.
func ParsePropertyNameStyle(s string) (PropertyNameStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "camelcase", "camel_case", "camel":
		return CamelCase, nil
	case "asis", "as_is", "as_in_db", "asindatabase":
		return AsInDatabase, nil
	default:
		return "", fmt.Errorf("unknown property name style %q", s)
	}
}

// Func returns the naming function for the style.
func (s PropertyNameStyle) Func() PropertyNameFunc {
	if s == AsInDatabase {
		return func(fieldName string) string { return fieldName }
	}
	return func(fieldName string) string {
		if strings.HasPrefix(fieldName, `"`) {
			return fieldName
		}
		return LowerCamelCase(fieldName)
	}
}
