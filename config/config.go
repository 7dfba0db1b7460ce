// Package config provides the options of the sqljson generator.
//
// Options can be built programmatically with DefaultOptions and the With
// helpers, or loaded together with the input and output locations from a
// configuration file and the environment with Load.
package config

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/stokaro/sqljson/core/dialects"
	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/sqlgen"
	"github.com/stokaro/sqljson/core/typegen"
	"github.com/stokaro/sqljson/dbmd"
)

// Options controls how SQL and result types are generated.
type Options struct {
	// DefaultSchema qualifies table names written without a schema. The schema
	// of the metadata document is used when empty.
	DefaultSchema string `mapstructure:"default_schema"`

	// UnqualifiedSchemas lists schemas whose tables are referenced without a
	// schema qualifier in generated SQL, typically the schema the statements
	// run against by default.
	UnqualifiedSchemas []string `mapstructure:"unqualified_schemas"`

	// PropertyNameStyle derives output names from field names: "camelCase" or
	// "asIs". Statements and query groups may override it.
	PropertyNameStyle naming.PropertyNameStyle `mapstructure:"property_name_style"`

	// ParamStyle is "named" (:name) or "positional" (?).
	ParamStyle sqlgen.ParamStyle `mapstructure:"param_style"`

	IndentSpaces int `mapstructure:"indent_spaces"`

	// Parallelism bounds the number of statements generated at once.
	Parallelism int `mapstructure:"parallelism"`

	// Dialect overrides the SQL dialect otherwise chosen from the DBMS named
	// in the metadata document (postgres, oracle, mysql, mariadb).
	Dialect string `mapstructure:"dialect"`
}

// DefaultOptions returns camel case property names, named parameters, two
// space indentation and one statement per CPU at a time.
func DefaultOptions() *Options {
	return &Options{
		PropertyNameStyle: naming.CamelCase,
		ParamStyle:        sqlgen.NamedParams,
		IndentSpaces:      2,
		Parallelism:       runtime.GOMAXPROCS(0),
	}
}

// WithUnqualifiedSchemas returns the default options with the given schemas
// written unqualified.
//
// Example:
//
//	opts := config.WithUnqualifiedSchemas("public")
func WithUnqualifiedSchemas(schemas ...string) *Options {
	opts := DefaultOptions()
	opts.UnqualifiedSchemas = schemas
	return opts
}

// WithParamStyle returns the default options with the given parameter style.
//
// Example:
//
//	opts := config.WithParamStyle(sqlgen.PositionalParams)
func WithParamStyle(style sqlgen.ParamStyle) *Options {
	opts := DefaultOptions()
	opts.ParamStyle = style
	return opts
}

// IsSchemaUnqualified reports whether tables of schema are written without a
// schema qualifier.
func (o *Options) IsSchemaUnqualified(schema string) bool {
	return slices.Contains(o.UnqualifiedSchemas, schema)
}

// Validate checks the enumerated options and bounds.
func (o *Options) Validate() error {
	if _, err := naming.ParsePropertyNameStyle(string(o.PropertyNameStyle)); err != nil {
		return err
	}
	switch o.ParamStyle {
	case "", sqlgen.NamedParams, sqlgen.PositionalParams:
	default:
		return fmt.Errorf("unknown parameter style %q", o.ParamStyle)
	}
	if o.Dialect != "" {
		if _, err := dialects.ForDBMS(o.Dialect, o.IndentSpaces); err != nil {
			return err
		}
	}
	if o.IndentSpaces < 0 {
		return fmt.Errorf("indent spaces must not be negative, got %d", o.IndentSpaces)
	}
	if o.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", o.Parallelism)
	}
	return nil
}

// PropertyNameFunc returns the naming function of the configured style.
func (o *Options) PropertyNameFunc() (naming.PropertyNameFunc, error) {
	style, err := naming.ParsePropertyNameStyle(string(o.PropertyNameStyle))
	if err != nil {
		return nil, err
	}
	return style.Func(), nil
}

// SQLGenOptions converts the options for the SQL generator.
func (o *Options) SQLGenOptions() (sqlgen.Options, error) {
	nameFn, err := o.PropertyNameFunc()
	if err != nil {
		return sqlgen.Options{}, err
	}
	res := sqlgen.Options{
		DefaultSchema:      o.DefaultSchema,
		UnqualifiedSchemas: o.UnqualifiedSchemas,
		PropertyNameFn:     nameFn,
		ParamStyle:         o.ParamStyle,
		IndentSpaces:       o.IndentSpaces,
	}
	if o.Dialect != "" {
		if res.Dialect, err = dialects.ForDBMS(o.Dialect, o.IndentSpaces); err != nil {
			return sqlgen.Options{}, err
		}
	}
	return res, nil
}

// TypeGenOptions converts the options for the result type generator.
func (o *Options) TypeGenOptions() (typegen.Options, error) {
	nameFn, err := o.PropertyNameFunc()
	if err != nil {
		return typegen.Options{}, err
	}
	return typegen.Options{DefaultSchema: o.DefaultSchema, PropertyNameFn: nameFn}, nil
}

// ForMetadata returns a copy of the options with the default schema taken
// from md when not set.
func (o *Options) ForMetadata(md *dbmd.DatabaseMetadata) *Options {
	c := *o
	if c.DefaultSchema == "" {
		c.DefaultSchema = md.SchemaName()
	}
	return &c
}
