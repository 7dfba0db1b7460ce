// Package mysql reads relational metadata from MySQL and MariaDB information_schema.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stokaro/sqljson/dbmd"
)

// Reader reads metadata of one MySQL database (schema)
type Reader struct {
	db     *sql.DB
	schema string
}

// NewMySQLReader creates a new MySQL metadata reader. An empty schema selects the
// connection's current database.
func NewMySQLReader(db *sql.DB, schema string) *Reader {
	return &Reader{
		db:     db,
		schema: schema,
	}
}

var _ dbmd.MetadataReader = (*Reader)(nil)

// ReadMetadata reads relations, fields, primary keys and foreign keys of the schema.
func (r *Reader) ReadMetadata(ctx context.Context, opts dbmd.ReadOptions) (dbmd.Document, error) {
	var version, current sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &current); err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read server version: %w", err)
	}
	schema := r.schema
	if schema == "" {
		schema = current.String
	}
	if schema == "" {
		return dbmd.Document{}, fmt.Errorf("no schema given and the connection has no current database")
	}

	doc := dbmd.Document{
		SchemaName:      schema,
		DBMSName:        "MySQL",
		DBMSVersion:     version.String,
		CaseSensitivity: dbmd.InsensitiveStoredMixed,
	}
	if strings.Contains(strings.ToLower(version.String), "mariadb") {
		doc.DBMSName = "MariaDB"
	}
	doc.DBMSMajorVersion, doc.DBMSMinorVersion = dbmd.ParseVersion(version.String)

	relations, byName, err := r.readRelations(ctx, schema, opts)
	if err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read relations: %w", err)
	}
	if err := r.readFields(ctx, schema, byName); err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read fields: %w", err)
	}
	fks, err := r.readForeignKeys(ctx, schema, byName)
	if err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read foreign keys: %w", err)
	}
	doc.ForeignKeys = fks

	for _, rel := range relations {
		doc.Relations = append(doc.Relations, *rel)
	}
	return doc, nil
}

func (r *Reader) readRelations(ctx context.Context, schema string, opts dbmd.ReadOptions) ([]*dbmd.RelMetadata, map[string]*dbmd.RelMetadata, error) {
	query := `
		SELECT table_name, table_type, COALESCE(table_comment, '')
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	rows, err := r.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var ordered []*dbmd.RelMetadata
	byName := make(map[string]*dbmd.RelMetadata)
	for rows.Next() {
		var name, tableType, comment string
		if err := rows.Scan(&name, &tableType, &comment); err != nil {
			return nil, nil, fmt.Errorf("failed to scan table: %w", err)
		}
		relType := dbmd.Table
		if tableType == "VIEW" {
			if !opts.IncludeViews {
				continue
			}
			relType = dbmd.View
			comment = "" // MySQL reports "VIEW" as the comment of every view
		}
		if !opts.Includes(name) {
			continue
		}
		rel := &dbmd.RelMetadata{
			RelationID:   dbmd.RelID{Schema: schema, Name: name},
			RelationType: relType,
			Comment:      comment,
		}
		ordered = append(ordered, rel)
		byName[name] = rel
	}
	return ordered, byName, rows.Err()
}

// readFields reads columns with their primary key positions in one pass
func (r *Reader) readFields(ctx context.Context, schema string, byName map[string]*dbmd.RelMetadata) error {
	query := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			COALESCE(c.column_comment, ''),
			k.ordinal_position
		FROM information_schema.columns c
		LEFT JOIN information_schema.key_column_usage k
		  ON k.table_schema = c.table_schema
		 AND k.table_name = c.table_name
		 AND k.column_name = c.column_name
		 AND k.constraint_name = 'PRIMARY'
		WHERE c.table_schema = ?
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := r.db.QueryContext(ctx, query, schema)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, name, dataType, columnType, isNullable, comment string
			length, precision, scale, pkPosition                      sql.NullInt64
		)
		if err := rows.Scan(&tableName, &name, &dataType, &columnType, &isNullable,
			&length, &precision, &scale, &comment, &pkPosition); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		rel, ok := byName[tableName]
		if !ok {
			continue
		}
		nullable := isNullable == "YES"
		rel.Fields = append(rel.Fields, dbmd.Field{
			Name:                 name,
			TypeCode:             dbmd.TypeCode(dataType),
			DatabaseType:         columnType,
			Length:               intPtr(length),
			Precision:            intPtr(precision),
			FractionalDigits:     intPtr(scale),
			Nullable:             &nullable,
			PrimaryKeyPartNumber: intPtr(pkPosition),
			Comment:              comment,
		})
	}
	return rows.Err()
}

// readForeignKeys groups key_column_usage rows by constraint
func (r *Reader) readForeignKeys(ctx context.Context, schema string, byName map[string]*dbmd.RelMetadata) ([]dbmd.ForeignKey, error) {
	query := `
		SELECT constraint_name, table_name, column_name,
		       referenced_table_schema, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND referenced_table_name IS NOT NULL
		ORDER BY table_name, constraint_name, ordinal_position`

	rows, err := r.db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []dbmd.ForeignKey
	for rows.Next() {
		var name, table, column, refSchema, refTable, refColumn string
		if err := rows.Scan(&name, &table, &column, &refSchema, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key column: %w", err)
		}
		if _, ok := byName[table]; !ok {
			continue
		}
		comp := dbmd.ForeignKeyComponent{ForeignKeyFieldName: column, PrimaryKeyFieldName: refColumn}
		if n := len(fks); n > 0 && fks[n-1].ConstraintName == name && fks[n-1].SourceRelationID.Name == table {
			fks[n-1].Components = append(fks[n-1].Components, comp)
			continue
		}
		fks = append(fks, dbmd.ForeignKey{
			ConstraintName:   name,
			SourceRelationID: dbmd.RelID{Schema: schema, Name: table},
			TargetRelationID: dbmd.RelID{Schema: refSchema, Name: refTable},
			Components:       []dbmd.ForeignKeyComponent{comp},
		})
	}
	return fks, rows.Err()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
