package document

import (
	"errors"
	"fmt"
)

// ErrMissingSource is returned when a document is used in a context that
// requires source attribution but its metadata has no "source" entry.
var ErrMissingSource = errors.New("document metadata missing source")

// Document is a unit of text plus arbitrary key-value metadata. It serves
// both as input context (a passage) and as an output answer container.
// Components treat documents as read-only once constructed.
type Document struct {
	Content  string
	Metadata map[string]any
}

// New builds a document with its own metadata map, copying the given entries.
func New(content string, metadata map[string]any) Document {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return Document{Content: content, Metadata: md}
}

// Source returns the "source" metadata entry. Composition steps that cite
// passages require it to be present and a string.
func (d Document) Source() (string, error) {
	v, ok := d.Metadata["source"]
	if !ok {
		return "", ErrMissingSource
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("document source is %T, want string: %w", v, ErrMissingSource)
	}
	return s, nil
}

// WithContent pairs new content with this document's existing metadata.
// The metadata map is shared, not copied; callers must not mutate it.
func (d Document) WithContent(content string) Document {
	return Document{Content: content, Metadata: d.Metadata}
}
