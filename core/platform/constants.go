package platform

import (
	"strings"
)

const (
	Postgres = "postgres"
	Oracle   = "oracle"
	MySQL    = "mysql"
	MariaDB  = "mariadb"
)

// NormalizeDialect maps a driver or DBMS product name, as reported by a database
// connection or written in a metadata document, to one of the platform constants.
// Product names such as "PostgreSQL" or "Oracle Database 19c" are matched by prefix.
// An empty string is returned for unsupported databases.
func NormalizeDialect(dialect string) string {
	d := strings.ToLower(strings.TrimSpace(dialect))
	switch d {
	case "pgx", "pq", "postgresql", "postgres":
		return Postgres
	case "oracle", "godror", "oci8":
		return Oracle
	case "mysql":
		return MySQL
	case "mariadb":
		return MariaDB
	}
	switch {
	case strings.HasPrefix(d, "postgres"):
		return Postgres
	case strings.HasPrefix(d, "oracle"):
		return Oracle
	case strings.HasPrefix(d, "mariadb"):
		return MariaDB
	case strings.HasPrefix(d, "mysql"):
		return MySQL
	default:
		return ""
	}
}
