package dbmd

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/stokaro/sqljson/core/sqlutil"
)

var (
	lowerStoredBare = regexp.MustCompile(`^[a-z_]+$`)
	upperStoredBare = regexp.MustCompile(`^[A-Z_]+$`)
)

// Document is the serialized form of the database metadata.
type Document struct {
	SchemaName       string          `json:"schemaName,omitempty"`
	DBMSName         string          `json:"dbmsName"`
	DBMSVersion      string          `json:"dbmsVersion"`
	DBMSMajorVersion int             `json:"dbmsMajorVersion"`
	DBMSMinorVersion int             `json:"dbmsMinorVersion"`
	CaseSensitivity  CaseSensitivity `json:"caseSensitivity"`
	Relations        []RelMetadata   `json:"relationMetadatas"`
	ForeignKeys      []ForeignKey    `json:"foreignKeys"`
}

// DatabaseMetadata is an immutable, indexed view over a metadata Document.
// All lookups are safe for concurrent use.
type DatabaseMetadata struct {
	doc Document

	relationsByID map[RelID]*RelMetadata
	fksBySource   map[RelID][]ForeignKey
	fksByTarget   map[RelID][]ForeignKey
}

// New builds the metadata from a document. Relations are sorted by id string and
// foreign keys by source id, target id, source fields and target fields so that
// everything derived from the metadata is deterministic. The document's slices are
// copied and indices are built eagerly.
func New(doc Document) *DatabaseMetadata {
	if doc.CaseSensitivity == "" {
		doc.CaseSensitivity = InsensitiveStoredLower
	}
	doc.Relations = slices.Clone(doc.Relations)
	slices.SortStableFunc(doc.Relations, func(a, b RelMetadata) int {
		return strings.Compare(a.RelationID.IDString(), b.RelationID.IDString())
	})
	doc.ForeignKeys = slices.Clone(doc.ForeignKeys)
	slices.SortStableFunc(doc.ForeignKeys, compareForeignKeys)

	md := &DatabaseMetadata{
		doc:           doc,
		relationsByID: make(map[RelID]*RelMetadata, len(doc.Relations)),
		fksBySource:   make(map[RelID][]ForeignKey),
		fksByTarget:   make(map[RelID][]ForeignKey),
	}
	for i := range md.doc.Relations {
		rel := &md.doc.Relations[i]
		md.relationsByID[rel.RelationID] = rel
	}
	for _, fk := range md.doc.ForeignKeys {
		md.fksBySource[fk.SourceRelationID] = append(md.fksBySource[fk.SourceRelationID], fk)
		md.fksByTarget[fk.TargetRelationID] = append(md.fksByTarget[fk.TargetRelationID], fk)
	}
	return md
}

func compareForeignKeys(a, b ForeignKey) int {
	return cmp.Or(
		strings.Compare(a.SourceRelationID.IDString(), b.SourceRelationID.IDString()),
		strings.Compare(a.TargetRelationID.IDString(), b.TargetRelationID.IDString()),
		slices.Compare(a.SourceFieldNames(), b.SourceFieldNames()),
		slices.Compare(a.TargetFieldNames(), b.TargetFieldNames()),
	)
}

// Document returns the (sorted) document the metadata was built from.
func (md *DatabaseMetadata) Document() Document { return md.doc }

func (md *DatabaseMetadata) SchemaName() string { return md.doc.SchemaName }
func (md *DatabaseMetadata) DBMSName() string { return md.doc.DBMSName }
func (md *DatabaseMetadata) CaseSensitivity() CaseSensitivity { return md.doc.CaseSensitivity }
func (md *DatabaseMetadata) Relations() []RelMetadata { return md.doc.Relations }
func (md *DatabaseMetadata) ForeignKeys() []ForeignKey { return md.doc.ForeignKeys }

// Relation returns the metadata of the identified relation.
func (md *DatabaseMetadata) Relation(id RelID) (*RelMetadata, bool) {
	rel, ok := md.relationsByID[id]
	return rel, ok
}

// PrimaryKeyFields returns the primary key fields of the relation ordered by key
// position, or nil for unknown relations.
func (md *DatabaseMetadata) PrimaryKeyFields(id RelID) []Field {
	rel, ok := md.relationsByID[id]
	if !ok {
		return nil
	}
	return rel.PrimaryKeyFields()
}

// RelIDFor makes a relation id from a possibly schema-qualified table name. An
// unqualified name takes defaultSchema, or the document schema when defaultSchema
// is empty. Both parts are normalized. The relation is not required to exist.
//
// Example:
//
//	md.RelIDFor("Drugs.Drug", "")    // {Schema: "drugs", Name: "drug"} for lower-stored databases
//	md.RelIDFor("brand", "public")   // {Schema: "public", Name: "brand"}
func (md *DatabaseMetadata) RelIDFor(table, defaultSchema string) RelID {
	if schema, name, qualified := strings.Cut(table, "."); qualified {
		return RelID{Schema: md.NormalizeName(schema), Name: md.NormalizeName(name)}
	}
	schema := defaultSchema
	if schema == "" {
		schema = md.doc.SchemaName
	}
	if schema != "" {
		schema = md.NormalizeName(schema)
	}
	return RelID{Schema: schema, Name: md.NormalizeName(table)}
}

// NormalizeName folds an identifier the way the database stores unquoted names.
// Quoted identifiers are returned unchanged.
func (md *DatabaseMetadata) NormalizeName(id string) string {
	if isQuoted(id) {
		return id
	}
	switch md.doc.CaseSensitivity {
	case InsensitiveStoredLower:
		return strings.ToLower(id)
	case InsensitiveStoredUpper:
		return strings.ToUpper(id)
	default:
		return id
	}
}

// QuoteIfNeeded quotes an identifier with ANSI double quotes unless it would be
// read back unchanged when left bare. Identifiers starting with '_' are always
// quoted.
func (md *DatabaseMetadata) QuoteIfNeeded(id string) string {
	return md.QuoteIfNeededWith(id, sqlutil.DoubleQuote)
}

// QuoteIfNeededWith is QuoteIfNeeded with the DBMS's identifier quote, e.g. the
// backtick for MySQL. An identifier already quoted with the other quote is
// requoted.
//
// Example:
//
//	md.QuoteIfNeededWith("drug", sqlutil.Backtick)   // "`drug`" for mixed-stored databases
//	md.QuoteIfNeededWith(`"Id"`, sqlutil.Backtick)   // "`Id`"
func (md *DatabaseMetadata) QuoteIfNeededWith(id, quote string) string {
	if name, q, quoted := sqlutil.SplitQuotedIdentifier(id); quoted {
		if q == quote {
			return id
		}
		return sqlutil.QuoteIdentifier(name, quote)
	}
	if !strings.HasPrefix(id, "_") {
		switch {
		case md.doc.CaseSensitivity == InsensitiveStoredLower && lowerStoredBare.MatchString(id):
			return id
		case md.doc.CaseSensitivity == InsensitiveStoredUpper && upperStoredBare.MatchString(id):
			return id
		}
	}
	return sqlutil.QuoteIdentifier(id, quote)
}

func isQuoted(id string) bool {
	_, _, quoted := sqlutil.SplitQuotedIdentifier(id)
	return quoted
}
