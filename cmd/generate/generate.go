package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/stokaro/sqljson/config"
	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/dbmd"
	"github.com/stokaro/sqljson/generator"
)

const (
	configFlag   = "config"
	dbmdFlag     = "dbmd"
	specsFlag    = "specs"
	sqlDirFlag   = "sql-dir"
	typesDirFlag = "types-dir"
	dialectFlag  = "dialect"
)

var generateFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Configuration file (default: sqljson.yaml in the working directory, if present)",
	},
	dbmdFlag: &cobraflags.StringFlag{
		Name:  dbmdFlag,
		Value: "",
		Usage: "Database metadata document (JSON or YAML), overrides the configured one",
	},
	specsFlag: &cobraflags.StringFlag{
		Name:  specsFlag,
		Value: "",
		Usage: "Comma separated query group documents, override the configured ones",
	},
	sqlDirFlag: &cobraflags.StringFlag{
		Name:  sqlDirFlag,
		Value: "",
		Usage: "Directory for the generated SQL files",
	},
	typesDirFlag: &cobraflags.StringFlag{
		Name:  typesDirFlag,
		Value: "",
		Usage: "Directory for the generated result type documents",
	},
	dialectFlag: &cobraflags.StringFlag{
		Name:  dialectFlag,
		Value: "",
		Usage: "SQL dialect (postgres, oracle, mysql, mariadb). If empty, taken from the metadata's DBMS",
	},
}

// NewGenerateCommand creates the command generating SQL and result types for
// query group documents.
func NewGenerateCommand() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate SQL and result types from query group specifications",
		Long: `Generate SQL statements and result type documents from query group
specifications, validated against a database metadata document.

Every statement is generated on its own: a failing statement is reported and the
remaining ones are still written. The command fails if any statement failed.

Examples:
  sqljson generate --dbmd dbmd.json --specs queries.yaml --sql-dir out/sql
  sqljson generate --config sqljson.yaml --dialect oracle`,
		RunE: generateCommand,
	}

	cobraflags.RegisterMap(generateCmd, generateFlags)
	return generateCmd
}

func generateCommand(cmd *cobra.Command, _ []string) error {
	cfg, cfgPath, err := config.Load(generateFlags[configFlag].GetString())
	if err != nil {
		return err
	}
	if cfgPath != "" {
		slog.Debug("Loaded configuration", "path", cfgPath)
	}
	applyFlags(cfg)

	if cfg.Metadata == "" {
		return fmt.Errorf("database metadata document is required (use --%s or 'metadata' in the config file)", dbmdFlag)
	}
	if len(cfg.Specs) == 0 {
		return fmt.Errorf("at least one query group document is required (use --%s or 'specs' in the config file)", specsFlag)
	}
	if err := cfg.Generate.Validate(); err != nil {
		return fmt.Errorf("invalid generate options: %w", err)
	}

	md, err := dbmd.Load(cfg.Metadata)
	if err != nil {
		return err
	}
	gen, err := generator.New(md, cfg.Generate.ForMetadata(md))
	if err != nil {
		return err
	}

	var failed []error
	for _, path := range cfg.Specs {
		if err := generateGroup(cmd, gen, path, cfg.Output); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func applyFlags(cfg *config.File) {
	if v := generateFlags[dbmdFlag].GetString(); v != "" {
		cfg.Metadata = v
	}
	if v := generateFlags[specsFlag].GetString(); v != "" {
		cfg.Specs = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Specs = append(cfg.Specs, p)
			}
		}
	}
	if v := generateFlags[sqlDirFlag].GetString(); v != "" {
		cfg.Output.SQLDir = v
	}
	if v := generateFlags[typesDirFlag].GetString(); v != "" {
		cfg.Output.TypesDir = v
	}
	if v := generateFlags[dialectFlag].GetString(); v != "" {
		cfg.Generate.Dialect = v
	}
}

// generateGroup generates one query group document and writes the statements
// that succeeded, returning the group's failures.
func generateGroup(cmd *cobra.Command, gen *generator.Generator, path string, out config.Output) error {
	group, err := spec.LoadQueryGroup(path)
	if err != nil {
		return err
	}

	res, genErr := gen.GenerateAll(cmd.Context(), group)
	if res == nil {
		return fmt.Errorf("%s: %w", path, genErr)
	}

	if out.SQLDir != "" {
		paths, err := generator.WriteSQLFiles(out.SQLDir, res.Queries)
		if err != nil {
			return err
		}
		slog.Debug("Wrote SQL files", "group", path, "count", len(paths))
	}
	if out.TypesDir != "" {
		paths, err := generator.WriteTypesFiles(out.TypesDir, res.Queries)
		if err != nil {
			return err
		}
		slog.Debug("Wrote types files", "group", path, "count", len(paths))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d statement(s) generated, %d failed\n",
		path, len(res.Queries), len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", f.Err)
	}
	if genErr != nil {
		return fmt.Errorf("%s: %d statement(s) failed", path, len(res.Failures))
	}
	return nil
}
