// Package generator drives SQL and result type generation for whole query
// groups: every statement of a group is generated independently, failures are
// collected per statement and the successful results can be written to files.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stokaro/sqljson/config"
	"github.com/stokaro/sqljson/core/naming"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/sqlgen"
	"github.com/stokaro/sqljson/core/typegen"
	"github.com/stokaro/sqljson/dbmd"
)

// GeneratedQuery is the output for one statement.
type GeneratedQuery struct {
	Name string

	// Reprs lists the generated representations in the requested order.
	Reprs []spec.ResultRepr

	// SQL holds the file content of each representation, header included.
	SQL map[spec.ResultRepr]string

	// Types is empty unless the statement asked for result types.
	Types []*typegen.GeneratedType

	ParamNames []string
}

// StatementFailure is the error generating one statement.
type StatementFailure struct {
	Statement string
	Err       error
}

func (f *StatementFailure) Error() string {
	return fmt.Sprintf("failed to generate statement %q: %v", f.Statement, f.Err)
}

func (f *StatementFailure) Unwrap() error { return f.Err }

// Result is the outcome of a group.
type Result struct {
	// Queries holds the successfully generated statements in group order.
	Queries  []*GeneratedQuery
	Failures []*StatementFailure
}

// Err joins the failures, nil when there are none.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Generator generates query groups against one metadata document.
type Generator struct {
	md     *dbmd.DatabaseMetadata
	opts   config.Options
	logger *slog.Logger
}

// New creates a generator. Nil options select config.DefaultOptions.
func New(md *dbmd.DatabaseMetadata, opts *config.Options) (*Generator, error) {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Generator{md: md, opts: *opts, logger: slog.Default()}, nil
}

// WithLogger sets the logger for the generator
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	tmp := *g
	tmp.logger = l
	return &tmp
}

// groupGenerators are the core generators configured for one query group.
type groupGenerators struct {
	sql   *sqlgen.Generator
	types *typegen.Generator
}

func (g *Generator) forGroup(group *spec.QueryGroupSpec) (*groupGenerators, error) {
	opts := g.opts
	if group.DefaultSchema != "" {
		opts.DefaultSchema = group.DefaultSchema
	}
	if len(group.UnqualifiedSchemas) > 0 {
		opts.UnqualifiedSchemas = group.UnqualifiedSchemas
	}
	if group.PropertyNameDefault != "" {
		opts.PropertyNameStyle = naming.PropertyNameStyle(group.PropertyNameDefault)
	}

	sqlOpts, err := opts.SQLGenOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to configure SQL generation: %w", err)
	}
	sqlGen, err := sqlgen.New(g.md, sqlOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQL generator: %w", err)
	}
	typeOpts, err := opts.TypeGenOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to configure type generation: %w", err)
	}
	return &groupGenerators{sql: sqlGen, types: typegen.New(g.md, typeOpts)}, nil
}

// GenerateQuery generates one statement of group.
func (g *Generator) GenerateQuery(q spec.QuerySpec, group *spec.QueryGroupSpec) (*GeneratedQuery, error) {
	gens, err := g.forGroup(group)
	if err != nil {
		return nil, err
	}
	return g.generateQuery(q, gens)
}

func (g *Generator) generateQuery(q spec.QuerySpec, gens *groupGenerators) (*GeneratedQuery, error) {
	stmt := sqlgen.Statement{Name: q.Name, Table: q.Table, OrderBy: q.OrderBy, ForUpdate: q.ForUpdate}
	types := gens.types
	if q.PropertyNameDefault != "" {
		style, err := naming.ParsePropertyNameStyle(q.PropertyNameDefault)
		if err != nil {
			return nil, spec.Wrap(spec.At(q.Name), spec.KindInvalidSpecification, err)
		}
		stmt.PropertyNameFn = style.Func()
		types = types.WithPropertyNameFn(stmt.PropertyNameFn)
	}

	res := &GeneratedQuery{
		Name:  q.Name,
		Reprs: q.Representations(),
		SQL:   make(map[spec.ResultRepr]string, len(q.Representations())),
	}
	for _, repr := range res.Reprs {
		sql, err := gens.sql.BuildResultSQL(stmt, repr)
		if err != nil {
			return nil, err
		}
		res.SQL[repr] = sqlFileContent(q.Name, repr, sql)
	}

	params, err := gens.sql.ParamNames(stmt)
	if err != nil {
		return nil, err
	}
	res.ParamNames = params

	if q.GenerateTypes {
		res.Types, _, err = types.Generate(q.Name, q.Table, typegen.EmptyScope())
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GenerateAll generates every statement of group, at most the configured
// parallelism at a time. A failing statement does not stop the others; its
// error is recorded in the result's failures, and the returned error joins
// them all. Only a canceled context or an unusable configuration yields a nil
// result.
func (g *Generator) GenerateAll(ctx context.Context, group spec.QueryGroupSpec) (*Result, error) {
	gens, err := g.forGroup(&group)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	queries := make([]*GeneratedQuery, len(group.Queries))
	failures := make([]error, len(group.Queries))
	firstIndex := make(map[string]int, len(group.Queries))

	eg, ctx := errgroup.WithContext(ctx)
	if g.opts.Parallelism > 0 {
		eg.SetLimit(g.opts.Parallelism)
	}
	for i, q := range group.Queries {
		if j, dup := firstIndex[q.Name]; dup {
			failures[i] = spec.Errorf(spec.At(q.Name), spec.KindInvalidSpecification,
				"statement name already used by statement #%d", j+1)
			continue
		}
		firstIndex[q.Name] = i

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.logger.Debug("Generating statement", "statement", q.Name, "reprs", q.Representations())
			res, err := g.generateQuery(q, gens)
			if err != nil {
				failures[i] = err
				return nil
			}
			queries[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generation interrupted: %w", err)
	}

	res := &Result{}
	for i, q := range group.Queries {
		if failures[i] != nil {
			g.logger.Error("Statement generation failed", "statement", q.Name, "error", failures[i])
			res.Failures = append(res.Failures, &StatementFailure{Statement: q.Name, Err: failures[i]})
			continue
		}
		res.Queries = append(res.Queries, queries[i])
	}
	g.logger.Info("Generated query group",
		"statements", len(res.Queries), "failed", len(res.Failures), "duration", time.Since(start))
	return res, res.Err()
}
