// Package export defines the JSON interchange document for backing up
// and restoring planora data.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
)

// Version is the current document format version.
const Version = 1

//go:embed schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("planora-export.schema.json", schemaSource)

// ProjectExport bundles a project with everything attached to it.
type ProjectExport struct {
	Project project.Project  `json:"project"`
	Members []project.Member `json:"members,omitempty"`
	Tasks   []plan.Task      `json:"tasks,omitempty"`
}

// Document is the top-level export payload.
type Document struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Projects   []ProjectExport `json:"projects"`
}

// Decode validates raw JSON against the export schema and unmarshals it.
// Schema violations are reported before any field-level decoding so a
// malformed backup is rejected as a whole.
func Decode(raw []byte) (Document, error) {
	var untyped any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		return Document{}, fmt.Errorf("parse export document: %w", err)
	}

	if err := schema.Validate(untyped); err != nil {
		return Document{}, fmt.Errorf("export document failed schema validation: %w", err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode export document: %w", err)
	}

	if doc.Version != Version {
		return Document{}, fmt.Errorf("unsupported export version %d (want %d)", doc.Version, Version)
	}

	return doc, nil
}

// Encode marshals the document with indentation.
func Encode(doc Document) ([]byte, error) {
	bits, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export document: %w", err)
	}
	return append(bits, '\n'), nil
}
