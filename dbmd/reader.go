package dbmd

import (
	"context"
	"strconv"
	"strings"
)

// ReadOptions narrows what a MetadataReader reads.
type ReadOptions struct {
	IncludeViews bool

	// Relations limits the read to the named relations. Empty means all relations
	// of the schema.
	Relations []string
}

// Includes reports whether the named relation passes the Relations filter.
// Names are compared case-insensitively.
func (o ReadOptions) Includes(name string) bool {
	if len(o.Relations) == 0 {
		return true
	}
	for _, r := range o.Relations {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

// MetadataReader reads a metadata document from a live database.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, opts ReadOptions) (Document, error)
}

// ParseVersion extracts the major and minor numbers from a server version string
// such as "16.2 (Debian 16.2-1.pgdg120+2)" or "8.0.36-log".
func ParseVersion(version string) (major, minor int) {
	v := strings.TrimSpace(version)
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		v = v[:i]
	}
	parts := strings.SplitN(v, ".", 3)
	major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

// TypeCode maps an information_schema data type name to its JDBC-style type code.
// Unrecognized types map to 1111 (OTHER).
func TypeCode(dataType string) int {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "smallint", "int2", "smallserial":
		return 5
	case "tinyint":
		return -6
	case "integer", "int", "int4", "serial", "mediumint":
		return 4
	case "bigint", "int8", "bigserial":
		return -5
	case "numeric", "decimal":
		return 2
	case "real", "float4", "float":
		return 7
	case "double precision", "float8", "double":
		return 8
	case "boolean", "bool":
		return 16
	case "bit":
		return -7
	case "character", "char", "bpchar":
		return 1
	case "character varying", "varchar", "text", "tinytext", "mediumtext", "longtext", "enum", "set":
		return 12
	case "date":
		return 91
	case "time", "time without time zone":
		return 92
	case "time with time zone":
		return 2013
	case "timestamp", "timestamp without time zone", "datetime":
		return 93
	case "timestamp with time zone":
		return 2014
	case "bytea", "blob", "binary", "varbinary", "longblob", "mediumblob", "tinyblob":
		return -2
	case "json", "jsonb":
		return 1111
	case "array":
		return 2003
	default:
		return 1111
	}
}
