// Package markdown renders markdown bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML with footnotes, strikethrough, tables and
// task lists enabled. Raw HTML in the source is passed through.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a Renderer. It is safe for concurrent use.
func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(
			extension.Footnote,
			extension.Strikethrough,
			extension.Table,
			extension.TaskList,
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render converts body to HTML with trailing whitespace removed.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), " \t\r\n")), nil
}
