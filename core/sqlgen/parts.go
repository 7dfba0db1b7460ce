package sqlgen

import (
	"strings"

	"github.com/stokaro/sqljson/core/sqlutil"
)

// selectEntry is one expression of a select clause.
type selectEntry struct {
	expr    string
	name    string // already quoted as needed
	comment string // line comment placed above the entry
	hidden  bool   // exported for joins only, not a result column
}

func (e selectEntry) sql() string {
	sep := " as "
	if _, _, quoted := sqlutil.SplitQuotedIdentifier(e.name); quoted {
		sep = " "
	}
	if e.comment != "" {
		return e.comment + "\n" + e.expr + sep + e.name
	}
	return e.expr + sep + e.name
}

// sqlParts collects the clauses of one query block.
type sqlParts struct {
	selects []selectEntry
	froms   []string
	wheres  []string
	orderBy string
}

func (p *sqlParts) addParts(other sqlParts) {
	p.selects = append(p.selects, other.selects...)
	p.froms = append(p.froms, other.froms...)
	p.wheres = append(p.wheres, other.wheres...)
}

// resultColumns returns the names of the non-hidden select entries.
func (p *sqlParts) resultColumns() []string {
	var cols []string
	for _, e := range p.selects {
		if !e.hidden {
			cols = append(cols, e.name)
		}
	}
	return cols
}

func (p *sqlParts) toSQL(indent int) string {
	entries := make([]string, len(p.selects))
	for i, e := range p.selects {
		entries[i] = e.sql()
	}

	var sb strings.Builder
	sb.WriteString("select\n")
	sb.WriteString(sqlutil.IndentLines(strings.Join(entries, ",\n"), indent, true))
	sb.WriteString("\nfrom\n")
	sb.WriteString(sqlutil.IndentLines(strings.Join(p.froms, "\n"), indent, true))
	if len(p.wheres) > 0 {
		sb.WriteString("\nwhere (\n")
		sb.WriteString(sqlutil.IndentLines(strings.Join(p.wheres, " and\n"), indent, true))
		sb.WriteString("\n)")
	}
	if p.orderBy != "" {
		sb.WriteString("\norder by ")
		sb.WriteString(p.orderBy)
	}
	return sb.String()
}
