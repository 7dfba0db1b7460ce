package mysql

import (
	"github.com/stokaro/sqljson/core/dialects/internal/mysqllike"
	"github.com/stokaro/sqljson/core/dialects/types"
	"github.com/stokaro/sqljson/core/platform"
)

var (
	_ types.Dialect = (*Dialect)(nil)
)

// Dialect builds MySQL JSON expressions
type Dialect struct {
	*mysqllike.Dialect
}

// New creates a new MySQL dialect
func New(indent int) *Dialect {
	return &Dialect{Dialect: mysqllike.New(platform.MySQL, indent, false)}
}
