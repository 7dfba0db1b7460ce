package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stokaro/sqljson/core/spec"
	"github.com/stokaro/sqljson/core/typegen"
)

// generatedHeader starts every generated SQL file.
const generatedHeader = "-- [ THIS QUERY WAS AUTO-GENERATED, ANY CHANGES MADE HERE MAY BE LOST. ]"

func sqlFileContent(stmt string, repr spec.ResultRepr, sql string) string {
	return generatedHeader + "\n" +
		"-- " + stmt + ": " + string(repr) + "\n" +
		sql + "\n"
}

// SQLFileName returns the file name of a statement's SQL in one representation.
//
// Example:
//
//	generator.SQLFileName("drugs query", spec.JSONArrayRow) // "drugs query(json array row).sql"
func SQLFileName(stmt string, repr spec.ResultRepr) string {
	return stmt + "(" + strings.ToLower(strings.ReplaceAll(string(repr), "_", " ")) + ").sql"
}

// TypesFileName returns the file name of a statement's types document.
func TypesFileName(stmt string) string {
	return stmt + ".types.json"
}

// WriteSQLFiles writes one file per statement and representation into dir,
// creating it when needed, and returns the written paths in order.
func WriteSQLFiles(dir string, queries []*GeneratedQuery) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create SQL output directory: %w", err)
	}
	var paths []string
	for _, q := range queries {
		for _, repr := range q.Reprs {
			path := filepath.Join(dir, SQLFileName(q.Name, repr))
			if err := os.WriteFile(path, []byte(q.SQL[repr]), 0o644); err != nil {
				return paths, fmt.Errorf("failed to write SQL file: %w", err)
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// TypesDocument is the content of a types file: everything a source writer
// needs to declare a statement's result types and bind its parameters.
type TypesDocument struct {
	Statement  string                     `json:"statement"`
	ParamNames []string                   `json:"paramNames"`
	SQLFiles   map[spec.ResultRepr]string `json:"sqlFiles"`
	Types      []typegen.TypeDescriptor   `json:"types"`
}

// NewTypesDocument builds the types document of a generated statement.
func NewTypesDocument(q *GeneratedQuery) TypesDocument {
	files := make(map[spec.ResultRepr]string, len(q.Reprs))
	for _, repr := range q.Reprs {
		files[repr] = SQLFileName(q.Name, repr)
	}
	params := q.ParamNames
	if params == nil {
		params = []string{}
	}
	return TypesDocument{
		Statement:  q.Name,
		ParamNames: params,
		SQLFiles:   files,
		Types:      typegen.Describe(q.Types),
	}
}

// WriteTypesFiles writes the types document of every statement that has result
// types into dir, creating it when needed, and returns the written paths.
func WriteTypesFiles(dir string, queries []*GeneratedQuery) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create types output directory: %w", err)
	}
	var paths []string
	for _, q := range queries {
		if len(q.Types) == 0 {
			continue
		}
		data, err := json.MarshalIndent(NewTypesDocument(q), "", "  ")
		if err != nil {
			return paths, fmt.Errorf("failed to encode types of statement %q: %w", q.Name, err)
		}
		path := filepath.Join(dir, TypesFileName(q.Name))
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write types file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
