// Package dialects selects the SQL dialect matching a DBMS name.
package dialects

import (
	"fmt"

	"github.com/stokaro/sqljson/core/dialects/mariadb"
	"github.com/stokaro/sqljson/core/dialects/mysql"
	"github.com/stokaro/sqljson/core/dialects/oracle"
	"github.com/stokaro/sqljson/core/dialects/postgres"
	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/platform"
)

// ForDBMS returns the dialect for a DBMS or driver name such as "PostgreSQL",
// "pgx" or "Oracle".
func ForDBMS(name string, indent int) (types.Dialect, error) {
	switch platform.NormalizeDialect(name) {
	case platform.Postgres:
		return postgres.New(indent), nil
	case platform.Oracle:
		return oracle.New(indent), nil
	case platform.MySQL:
		return mysql.New(indent), nil
	case platform.MariaDB:
		return mariadb.New(indent), nil
	default:
		return nil, fmt.Errorf("unsupported DBMS %q", name)
	}
}
