package dbmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"
)

// ReadDocument decodes a metadata document in YAML or JSON form.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read metadata document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode metadata document: %w", err)
	}
	return doc, nil
}

// Load reads a metadata document file and builds the indexed metadata from it.
func Load(path string) (*DatabaseMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	doc, err := ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(doc), nil
}

// WriteDocument writes the document as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode metadata document: %w", err)
	}
	return nil
}

// WriteDocumentYAML writes the document as YAML.
func WriteDocumentYAML(w io.Writer, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode metadata document: %w", err)
	}
	_, err = w.Write(data)
	return err
}
