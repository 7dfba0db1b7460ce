// Package sqlutil contains small text helpers used while composing SQL.
package sqlutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultAliasPlaceholder stands for the table alias in field expressions, raw
// conditions and order-by clauses.
const DefaultAliasPlaceholder = "$$"

// Identifier quote characters: the ANSI double quote and MySQL's backtick.
const (
	DoubleQuote = `"`
	Backtick    = "`"
)

var bareIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IndentLines prefixes every line of s with n spaces. The first line is left alone
// when indentFirst is false.
func IndentLines(s string, n int, indentFirst bool) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i > 0 || indentFirst {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// ValidateAliasPlaceholder rejects placeholders that could collide with ordinary SQL
// text: empty strings, bare identifiers and strings containing whitespace or quotes.
func ValidateAliasPlaceholder(placeholder string) error {
	switch {
	case placeholder == "":
		return errors.New("alias placeholder is empty")
	case bareIdentifier.MatchString(placeholder):
		return fmt.Errorf("alias placeholder %q is a valid SQL identifier", placeholder)
	case strings.ContainsAny(placeholder, " \t\r\n'\""):
		return fmt.Errorf("alias placeholder %q contains whitespace or quotes", placeholder)
	}
	return nil
}

// SubstituteAlias replaces every occurrence of placeholder in text with alias.
// An empty placeholder selects DefaultAliasPlaceholder.
func SubstituteAlias(text, placeholder, alias string) string {
	if placeholder == "" {
		placeholder = DefaultAliasPlaceholder
	}
	return strings.ReplaceAll(text, placeholder, alias)
}

// QuoteIdentifier wraps id in quote, doubling the quote characters inside it.
//
// Example:
//
//	sqlutil.QuoteIdentifier("drug", sqlutil.Backtick) // "`drug`"
func QuoteIdentifier(id, quote string) string {
	return quote + strings.ReplaceAll(id, quote, quote+quote) + quote
}

// SplitQuotedIdentifier reports whether id is wrapped in double quotes or
// backticks, returning the unescaped name and the quote used.
func SplitQuotedIdentifier(id string) (name, quote string, quoted bool) {
	for _, q := range []string{DoubleQuote, Backtick} {
		if len(id) >= 2 && strings.HasPrefix(id, q) && strings.HasSuffix(id, q) {
			return strings.ReplaceAll(id[1:len(id)-1], q+q, q), q, true
		}
	}
	return id, "", false
}

// UnquoteIdentifier returns the name of a possibly quoted identifier.
func UnquoteIdentifier(id string) string {
	name, _, _ := SplitQuotedIdentifier(id)
	return name
}
