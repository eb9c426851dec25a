// Package codec is the sole boundary between in-memory documents and
// their at-rest textual form. The encoding is YAML: human-editable,
// order-preserving, alias-free, fixed 2-space indentation.
package codec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pajamadot/storyforge/internal/story"
)

// SchemaVersion is the document schema version this codec reads and writes.
const SchemaVersion = 1

// ParseError reports malformed serialized text. Callers of Deserialize
// receive it as an explicit failure, never a partially-built document.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Serialize encodes a document to its textual form. Deterministic for a
// given input: key insertion order is preserved, duplicate sub-structures
// are inlined rather than shared, and long lines are not wrapped.
func Serialize(d *story.Document) (string, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	return b.String(), nil
}

// Deserialize parses serialized text back into a document. It accepts
// everything Serialize produces plus hand-edited text in the same grammar.
// Malformed input yields a *ParseError.
func Deserialize(text string) (*story.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Msg: "empty document"}
	}
	var d story.Document
	if err := yaml.Unmarshal([]byte(text), &d); err != nil {
		return nil, &ParseError{Msg: "malformed document", Err: err}
	}
	if d.Version != SchemaVersion {
		return nil, &ParseError{Msg: fmt.Sprintf("unsupported document version: %d", d.Version)}
	}
	return &d, nil
}
