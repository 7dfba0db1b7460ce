package mariadb

import (
	"github.com/stokaro/sqljson/core/dialects/internal/mysqllike"
	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/platform"
)

var (
	_ types.Dialect = (*Dialect)(nil)
)

// Dialect builds MariaDB JSON expressions
type Dialect struct {
	*mysqllike.Dialect
}

// New creates a new MariaDB dialect
func New(indent int) *Dialect {
	return &Dialect{Dialect: mysqllike.New(platform.MariaDB, indent, true)}
}
