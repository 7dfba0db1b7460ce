package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/stokaro/sqljson/dbmd"
	"github.com/stokaro/sqljson/internal/testfixtures"
)

const queryGroup = `
generateUnqualifiedNamesForSchemas: [drugs]
querySpecs:
  - queryName: drugs
    resultRepresentations: [JSON_ARRAY_ROW]
    tableJson:
      table: drug
      fieldExpressions: [id, name]
      childTableCollections:
        - collectionName: brands
          tableJson:
            table: brand
            fieldExpressions: [brand_name]
  - queryName: broken
    tableJson:
      table: drugz
`

// The flag maps are package state shared by every command instance, so the
// cases run in order on one root command.
func TestRootCommand(t *testing.T) {
	c := qt.New(t)
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	root.SetArgs([]string{"fetch-dbmd"})
	c.Assert(root.Execute(), qt.ErrorMatches, `database URL is required \(use --url flag\)`)

	root.SetArgs([]string{"fetch-dbmd", "--url", "postgres://localhost/drugs", "--format", "xml"})
	c.Assert(root.Execute(), qt.ErrorMatches, `unsupported output format "xml"`)

	root.SetArgs([]string{"generate"})
	c.Assert(root.Execute(), qt.ErrorMatches, `database metadata document is required .*`)

	dir := t.TempDir()
	mdPath := filepath.Join(dir, "dbmd.json")
	f, err := os.Create(mdPath)
	c.Assert(err, qt.IsNil)
	c.Assert(dbmd.WriteDocument(f, testfixtures.DrugsDocument()), qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	specPath := filepath.Join(dir, "queries.yaml")
	c.Assert(os.WriteFile(specPath, []byte(queryGroup), 0o644), qt.IsNil)

	sqlDir := filepath.Join(dir, "sql")
	typesDir := filepath.Join(dir, "types")
	root.SetArgs([]string{"generate", "--dbmd", mdPath, "--specs", specPath,
		"--sql-dir", sqlDir, "--types-dir", typesDir})
	err = root.Execute()
	c.Assert(err, qt.ErrorMatches, `.*queries.yaml: 1 statement\(s\) failed`)

	c.Assert(stdout.String(), qt.Contains, "queries.yaml: 1 statement(s) generated, 1 failed\n")
	c.Assert(stderr.String(), qt.Contains, "TableNotFound")

	sql, err := os.ReadFile(filepath.Join(sqlDir, "drugs(json array row).sql"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(sql), qt.Contains, "-- drugs: JSON_ARRAY_ROW\n")
	_, err = os.Stat(filepath.Join(typesDir, "drugs.types.json"))
	c.Assert(err, qt.IsNil)
	_, err = os.Stat(filepath.Join(sqlDir, "broken(json object rows).sql"))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}
