package sqlgen

import (
	"maps"

	"github.com/stokaro/sqljson/core/naming"
)

// aliasScope is the set of table aliases already taken in a statement. Nested
// blocks are built on a clone that is merged back once the block is complete,
// so a block never sees a sibling's unfinished allocations and no alias is
// used twice in one statement.
type aliasScope map[string]struct{}

func newAliasScope(seed ...string) aliasScope {
	s := make(aliasScope, len(seed))
	for _, a := range seed {
		s.add(a)
	}
	return s
}

func (s aliasScope) add(alias string) { s[alias] = struct{}{} }

func (s aliasScope) clone() aliasScope { return maps.Clone(s) }

func (s aliasScope) merge(other aliasScope) { maps.Copy(s, other) }

// reservedAliases are short SQL keywords of the supported dialects that initials
// can spell. They are never used as a bare alias.
var reservedAliases = map[string]struct{}{
	"add": {}, "all": {}, "and": {}, "any": {}, "as": {}, "asc": {}, "at": {},
	"by": {}, "case": {}, "cast": {}, "div": {}, "do": {}, "drop": {}, "each": {},
	"else": {}, "end": {}, "for": {}, "from": {}, "full": {}, "go": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "join": {}, "key": {}, "keys": {}, "left": {},
	"like": {}, "mod": {}, "new": {}, "not": {}, "null": {}, "of": {}, "off": {},
	"old": {}, "on": {}, "or": {}, "out": {}, "over": {}, "row": {}, "rows": {},
	"set": {}, "sql": {}, "then": {}, "to": {}, "top": {}, "use": {}, "user": {},
	"view": {}, "when": {}, "with": {}, "xor": {},
}

// makeAliasFor registers and returns an alias made of the initials of a
// relation name's '_' separated words: "drug_reference" gets "dr", then "dr1".
func (s aliasScope) makeAliasFor(relName string) string {
	base := naming.LowercaseInitials(relName, "_")
	if base == "" {
		base = "t"
	}
	return s.mint(base)
}

// mint registers and returns base, or base with the smallest numeric suffix
// not already in scope. A reserved word always gets a suffix.
func (s aliasScope) mint(base string) string {
	taken := map[string]struct{}(s)
	if _, reserved := reservedAliases[base]; reserved {
		taken = maps.Clone(taken)
		taken[base] = struct{}{}
	}
	alias := naming.MakeNameNotInSet(base, taken, "")
	s.add(alias)
	return alias
}
