// Package frontmatter splits content files into metadata and markdown body.
//
// Two formats are recognised:
//
//	+++            ---
//	id = "about"   id: about
//	+++            ---
//	body           body
//
// TOML documents are split on the first two "+++" markers; anything before the
// first marker is ignored. YAML documents must start with a "---" line.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the frontmatter syntax of a document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

const (
	tomlDelimiter = "+++"
	yamlDelimiter = "---"
)

var (
	// ErrMissingFrontmatter indicates no frontmatter delimiter was found.
	ErrMissingFrontmatter = errors.New("frontmatter delimiter not found")
	// ErrMissingClosingDelimiter indicates an opening delimiter without its closing pair.
	ErrMissingClosingDelimiter = errors.New("frontmatter closing delimiter is missing")
)

// Document is a content file split into its parts.
type Document struct {
	Format      Format
	Frontmatter []byte
	// Body is the markdown with surrounding whitespace trimmed.
	Body []byte
}

// Split separates frontmatter from the markdown body.
func Split(content []byte) (Document, error) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte(yamlDelimiter)) && !bytes.HasPrefix(trimmed, []byte(yamlDelimiter+"-")) {
		return splitYAML(trimmed)
	}
	return splitTOML(content)
}

func splitTOML(content []byte) (Document, error) {
	parts := bytes.SplitN(content, []byte(tomlDelimiter), 3)
	switch len(parts) {
	case 1:
		return Document{}, ErrMissingFrontmatter
	case 2:
		return Document{}, ErrMissingClosingDelimiter
	}
	return Document{
		Format:      FormatTOML,
		Frontmatter: parts[1],
		Body:        bytes.TrimSpace(parts[2]),
	}, nil
}

func splitYAML(content []byte) (Document, error) {
	nl := detectNewline(content)
	open := []byte(yamlDelimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return Document{}, ErrMissingClosingDelimiter
	}
	rest := content[len(open):]

	// empty frontmatter block
	if bytes.HasPrefix(rest, open) {
		return Document{Format: FormatYAML, Frontmatter: []byte{}, Body: bytes.TrimSpace(rest[len(open):])}, nil
	}

	closeSeq := []byte(nl + yamlDelimiter)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return Document{}, ErrMissingClosingDelimiter
	}
	after := rest[idx+len(closeSeq):]
	if len(after) > 0 && after[0] != '\n' && after[0] != '\r' {
		return Document{}, ErrMissingClosingDelimiter
	}
	return Document{
		Format:      FormatYAML,
		Frontmatter: rest[:idx+len(nl)],
		Body:        bytes.TrimSpace(after),
	}, nil
}

// Decode unmarshals the frontmatter into v using the document's format.
func (d Document) Decode(v any) error {
	switch d.Format {
	case FormatTOML:
		if _, err := toml.Decode(string(d.Frontmatter), v); err != nil {
			return fmt.Errorf("decode toml frontmatter: %w", err)
		}
	case FormatYAML:
		if len(bytes.TrimSpace(d.Frontmatter)) == 0 {
			return nil
		}
		if err := yaml.Unmarshal(d.Frontmatter, v); err != nil {
			return fmt.Errorf("decode yaml frontmatter: %w", err)
		}
	default:
		return fmt.Errorf("unknown frontmatter format %q", d.Format)
	}
	return nil
}

// Fields decodes the frontmatter into a generic map.
func (d Document) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if err := d.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
