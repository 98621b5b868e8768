// Package shortcode expands template shortcodes.
//
// Two forms exist: a tag "{{ name }}" replaced by a context variable, and an
// include "{% include "path" %}" replaced by the content of a template file.
// Expansions are re-scanned, so included files may contain shortcodes too.
package shortcode

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	serrors "git.home.luguber.info/inful/sitesmith/internal/site/errors"
)

const (
	shortcodeStart = '{'
	commandStart   = "{%"
	commandEnd     = "%}"
	tagStart       = "{{"
	tagEnd         = "}}"
)

// DefaultMaxExpansions bounds the number of shortcodes expanded per Apply call.
const DefaultMaxExpansions = 10000

// ErrExpansionLimit indicates a template kept producing shortcodes, usually a self-include.
var ErrExpansionLimit = errors.New("shortcode expansion limit reached")

// Context holds the variables available to tags.
type Context map[string]string

// Kind distinguishes shortcode forms.
type Kind int

const (
	KindTag Kind = iota
	KindInclude
)

// Shortcode is a parsed shortcode.
type Shortcode struct {
	Kind Kind
	// Value is the variable name for tags and the file path for includes.
	Value string
}

// Find locates the first complete shortcode in input and returns its byte
// range including delimiters. A '{' that does not open a complete shortcode
// is skipped.
func Find(input string) (start, end int, ok bool) {
	from := 0
	for {
		i := strings.IndexByte(input[from:], shortcodeStart)
		if i < 0 {
			return 0, 0, false
		}
		start = from + i
		rest := input[start:]
		switch {
		case strings.HasPrefix(rest, tagStart):
			if j := strings.Index(rest[len(tagStart):], tagEnd); j >= 0 {
				return start, start + len(tagStart) + j + len(tagEnd), true
			}
		case strings.HasPrefix(rest, commandStart):
			if j := strings.Index(rest[len(commandStart):], commandEnd); j >= 0 {
				return start, start + len(commandStart) + j + len(commandEnd), true
			}
		}
		from = start + 1
	}
}

// Parse interprets a shortcode including its delimiters. The tag form is
// tried first, then the include command.
func Parse(s string) (Shortcode, error) {
	if sc, ok := parseTag(s); ok {
		return sc, nil
	}
	if sc, ok := parseInclude(s); ok {
		return sc, nil
	}
	return Shortcode{}, serrors.New(serrors.ErrParseShortcode, s, nil)
}

func parseTag(s string) (Shortcode, bool) {
	inner, ok := strings.CutPrefix(s, tagStart)
	if !ok {
		return Shortcode{}, false
	}
	inner, ok = strings.CutSuffix(inner, tagEnd)
	if !ok {
		return Shortcode{}, false
	}
	return Shortcode{Kind: KindTag, Value: strings.TrimSpace(inner)}, true
}

func parseInclude(s string) (Shortcode, bool) {
	inner, ok := strings.CutPrefix(s, commandStart)
	if !ok {
		return Shortcode{}, false
	}
	inner, ok = strings.CutSuffix(inner, commandEnd)
	if !ok {
		return Shortcode{}, false
	}
	quoted, ok := strings.CutPrefix(strings.TrimSpace(inner), "include")
	if !ok {
		return Shortcode{}, false
	}
	quoted = strings.TrimLeft(quoted, " \t\r\n")
	if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
		return Shortcode{}, false
	}
	return Shortcode{Kind: KindInclude, Value: quoted[1 : len(quoted)-1]}, true
}

// Engine applies shortcodes using a context and an include filesystem.
type Engine struct {
	includes      fs.FS
	maxExpansions int
}

// New returns an Engine resolving includes against includes (usually the
// templates directory). A nil filesystem makes every include fail.
func New(includes fs.FS) *Engine {
	return &Engine{includes: includes, maxExpansions: DefaultMaxExpansions}
}

// WithMaxExpansions overrides DefaultMaxExpansions.
func (e *Engine) WithMaxExpansions(n int) *Engine {
	if n > 0 {
		e.maxExpansions = n
	}
	return e
}

// Expand returns the replacement text of a single shortcode.
func (e *Engine) Expand(sc Shortcode, ctx Context) (string, error) {
	switch sc.Kind {
	case KindTag:
		slog.Debug("Replacing tag", "tag", sc.Value)
		v, ok := ctx[sc.Value]
		if !ok {
			return "", serrors.New(serrors.ErrTagNotFound, sc.Value, nil)
		}
		return v, nil
	case KindInclude:
		slog.Debug("Including file", logfields.Path(sc.Value))
		if e.includes == nil {
			return "", serrors.New(serrors.ErrIncludeShortcode, sc.Value, fs.ErrNotExist)
		}
		name := path.Clean(sc.Value)
		if !fs.ValidPath(name) {
			// Includes are confined to the templates directory.
			return "", serrors.New(serrors.ErrIncludeShortcode, sc.Value, fs.ErrInvalid)
		}
		data, err := fs.ReadFile(e.includes, name)
		if err != nil {
			return "", serrors.New(serrors.ErrIncludeShortcode, sc.Value, err)
		}
		return string(data), nil
	default:
		return "", serrors.New(serrors.ErrParseShortcode, fmt.Sprint(sc.Kind), nil)
	}
}

// Apply expands every shortcode in input. The expansion of a shortcode is
// placed in front of the remaining input and scanned again.
func (e *Engine) Apply(ctx Context, input string) (string, error) {
	var out strings.Builder
	out.Grow(len(input))

	for n := 0; ; n++ {
		start, end, ok := Find(input)
		if !ok {
			break
		}
		if n >= e.maxExpansions {
			return "", serrors.New(serrors.ErrIncludeShortcode, input[start:end], ErrExpansionLimit)
		}
		sc, err := Parse(input[start:end])
		if err != nil {
			return "", err
		}
		expanded, err := e.Expand(sc, ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(input[:start])
		input = expanded + input[end:]
	}
	out.WriteString(input)
	return out.String(), nil
}
