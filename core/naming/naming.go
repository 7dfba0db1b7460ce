// Package naming holds the name derivations shared by the SQL and result type
// generators: camel casing, table alias initials, unique name minting and the
// property naming styles applied to output columns.
package naming

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var wordSeparators = regexp.MustCompile(`[_ -]`)

// words splits a database name into words on '_', ' ' and '-', dropping empty parts.
func words(name string) []string {
	parts := wordSeparators.Split(name, -1)
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// UpperCamelCase combines the words of name, capitalizing each one and lowercasing
// the rest of its letters.
//
// Example:
//
//	naming.UpperCamelCase("functional_category") // "FunctionalCategory"
func UpperCamelCase(name string) string {
	title := cases.Title(language.Und)
	var sb strings.Builder
	for _, w := range words(name) {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

// LowerCamelCase is UpperCamelCase with the first word fully lowercased.
//
// Example:
//
//	naming.LowerCamelCase("MESH_ID") // "meshId"
func LowerCamelCase(name string) string {
	// Casers keep state, so each call gets its own.
	title, lower := cases.Title(language.Und), cases.Lower(language.Und)
	var sb strings.Builder
	for i, w := range words(name) {
		if i == 0 {
			sb.WriteString(lower.String(w))
		} else {
			sb.WriteString(title.String(w))
		}
	}
	return sb.String()
}

// Capitalize uppercases the first letter of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}

// LowercaseInitials returns the lowercased first letters of the sep-separated words
// of name. Surrounding double quotes are ignored and words not starting with a letter
// contribute nothing.
func LowercaseInitials(name, sep string) string {
	var sb strings.Builder
	for _, w := range strings.Split(UnDoubleQuote(name), sep) {
		r, _ := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError || !unicode.IsLetter(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// MakeNameNotInSet returns base when it is not in existing, otherwise the first of
// base+sep+"1", base+sep+"2", ... that is not.
func MakeNameNotInSet(base string, existing map[string]struct{}, sep string) string {
	if _, taken := existing[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + sep + strconv.Itoa(i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// UnDoubleQuote strips one pair of surrounding double quotes.
func UnDoubleQuote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
