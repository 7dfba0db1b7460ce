// Package postgres reads relational metadata from PostgreSQL catalogs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/stokaro/sqljson/dbmd"
)

// Reader reads metadata of one PostgreSQL schema
type Reader struct {
	db     *sql.DB
	schema string
}

// NewPostgreSQLReader creates a new PostgreSQL metadata reader
func NewPostgreSQLReader(db *sql.DB, schema string) *Reader {
	if schema == "" {
		schema = "public"
	}
	return &Reader{
		db:     db,
		schema: schema,
	}
}

var _ dbmd.MetadataReader = (*Reader)(nil)

// ReadMetadata reads relations, fields, primary keys and foreign keys of the schema.
func (r *Reader) ReadMetadata(ctx context.Context, opts dbmd.ReadOptions) (dbmd.Document, error) {
	doc := dbmd.Document{
		SchemaName:      r.schema,
		DBMSName:        "PostgreSQL",
		CaseSensitivity: dbmd.InsensitiveStoredLower,
	}

	version, err := r.readVersion(ctx)
	if err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read server version: %w", err)
	}
	doc.DBMSVersion = version
	doc.DBMSMajorVersion, doc.DBMSMinorVersion = dbmd.ParseVersion(version)

	relations, err := r.readRelations(ctx, opts)
	if err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read relations: %w", err)
	}

	if err := r.readFields(ctx, relations); err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read fields: %w", err)
	}

	if err := r.readPrimaryKeys(ctx, relations); err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read primary keys: %w", err)
	}

	fks, err := r.readForeignKeys(ctx, relations)
	if err != nil {
		return dbmd.Document{}, fmt.Errorf("failed to read foreign keys: %w", err)
	}
	doc.ForeignKeys = fks

	for _, rel := range relations.ordered {
		doc.Relations = append(doc.Relations, *rel)
	}
	return doc, nil
}

// relationSet keeps relations in catalog order with lookup by name
type relationSet struct {
	ordered []*dbmd.RelMetadata
	byName  map[string]*dbmd.RelMetadata
}

func (r *Reader) readVersion(ctx context.Context) (string, error) {
	var version string
	err := r.db.QueryRowContext(ctx, "SELECT current_setting('server_version')").Scan(&version)
	return version, err
}

// readRelations reads the tables (and optionally views) of the schema
func (r *Reader) readRelations(ctx context.Context, opts dbmd.ReadOptions) (*relationSet, error) {
	query := `
		SELECT t.table_name, t.table_type,
		       COALESCE(obj_description(c.oid), '') AS table_comment
		FROM information_schema.tables t
		LEFT JOIN pg_namespace n ON n.nspname = t.table_schema
		LEFT JOIN pg_class c ON c.relname = t.table_name AND c.relnamespace = n.oid
		WHERE t.table_schema = $1 AND t.table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY t.table_name`

	rows, err := r.db.QueryContext(ctx, query, r.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	set := &relationSet{byName: make(map[string]*dbmd.RelMetadata)}
	for rows.Next() {
		var name, tableType, comment string
		if err := rows.Scan(&name, &tableType, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		relType := dbmd.Table
		if tableType == "VIEW" {
			if !opts.IncludeViews {
				continue
			}
			relType = dbmd.View
		}
		if !opts.Includes(name) {
			continue
		}
		rel := &dbmd.RelMetadata{
			RelationID:   dbmd.RelID{Schema: r.schema, Name: name},
			RelationType: relType,
			Comment:      comment,
		}
		set.ordered = append(set.ordered, rel)
		set.byName[name] = rel
	}
	return set, rows.Err()
}

// readFields reads the columns of every relation in the schema in ordinal order
func (r *Reader) readFields(ctx context.Context, relations *relationSet) error {
	query := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), '')
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position`

	rows, err := r.db.QueryContext(ctx, query, r.schema)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tableName, name, dataType, udtName, isNullable, comment string
			length, precision, scale                                 sql.NullInt64
		)
		if err := rows.Scan(&tableName, &name, &dataType, &udtName, &isNullable, &length, &precision, &scale, &comment); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		rel, ok := relations.byName[tableName]
		if !ok {
			continue
		}

		dbType := dataType
		if dataType == "USER-DEFINED" || dataType == "ARRAY" {
			dbType = udtName
		}
		nullable := isNullable == "YES"
		rel.Fields = append(rel.Fields, dbmd.Field{
			Name:             name,
			TypeCode:         dbmd.TypeCode(dataType),
			DatabaseType:     dbType,
			Length:           intPtr(length),
			Precision:        intPtr(precision),
			FractionalDigits: intPtr(scale),
			Nullable:         &nullable,
			Comment:          comment,
		})
	}
	return rows.Err()
}

// readPrimaryKeys marks primary key fields with their key position
func (r *Reader) readPrimaryKeys(ctx context.Context, relations *relationSet) error {
	query := `
		SELECT kcu.table_name, kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		 AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1
		ORDER BY kcu.table_name, kcu.ordinal_position`

	rows, err := r.db.QueryContext(ctx, query, r.schema)
	if err != nil {
		return fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName string
		var position int
		if err := rows.Scan(&tableName, &columnName, &position); err != nil {
			return fmt.Errorf("failed to scan primary key column: %w", err)
		}
		rel, ok := relations.byName[tableName]
		if !ok {
			continue
		}
		for i := range rel.Fields {
			if rel.Fields[i].Name == columnName {
				pos := position
				rel.Fields[i].PrimaryKeyPartNumber = &pos
			}
		}
	}
	return rows.Err()
}

// readForeignKeys reads foreign keys declared on relations of the schema. Column
// lists come back as arrays ordered by key position.
func (r *Reader) readForeignKeys(ctx context.Context, relations *relationSet) ([]dbmd.ForeignKey, error) {
	query := `
		SELECT
			con.conname,
			child.relname,
			parent_ns.nspname,
			parent.relname,
			ARRAY(
				SELECT a.attname FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
				ORDER BY k.ord
			)::text[] AS child_columns,
			ARRAY(
				SELECT a.attname FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
				ORDER BY k.ord
			)::text[] AS parent_columns
		FROM pg_constraint con
		JOIN pg_class child ON child.oid = con.conrelid
		JOIN pg_namespace ns ON ns.oid = child.relnamespace
		JOIN pg_class parent ON parent.oid = con.confrelid
		JOIN pg_namespace parent_ns ON parent_ns.oid = parent.relnamespace
		WHERE con.contype = 'f' AND ns.nspname = $1
		ORDER BY child.relname, con.conname`

	rows, err := r.db.QueryContext(ctx, query, r.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []dbmd.ForeignKey
	for rows.Next() {
		var (
			name, childTable, parentSchema, parentTable string
			childColumns, parentColumns                 pq.StringArray
		)
		if err := rows.Scan(&name, &childTable, &parentSchema, &parentTable, &childColumns, &parentColumns); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		if _, ok := relations.byName[childTable]; !ok {
			continue
		}
		if len(childColumns) != len(parentColumns) {
			return nil, fmt.Errorf("foreign key %s has %d source and %d target columns", name, len(childColumns), len(parentColumns))
		}

		fk := dbmd.ForeignKey{
			ConstraintName:   name,
			SourceRelationID: dbmd.RelID{Schema: r.schema, Name: childTable},
			TargetRelationID: dbmd.RelID{Schema: parentSchema, Name: parentTable},
		}
		for i := range childColumns {
			fk.Components = append(fk.Components, dbmd.ForeignKeyComponent{
				ForeignKeyFieldName: childColumns[i],
				PrimaryKeyFieldName: parentColumns[i],
			})
		}
		fks = append(fks, fk)
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
