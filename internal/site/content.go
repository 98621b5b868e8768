package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitesmith/internal/frontmatter"
	"git.home.luguber.info/inful/sitesmith/internal/markdown"
	serrors "git.home.luguber.info/inful/sitesmith/internal/site/errors"
	"git.home.luguber.info/inful/sitesmith/internal/slug"
)

// Kind distinguishes pages from posts.
type Kind string

const (
	KindPage Kind = "page"
	KindPost Kind = "post"
)

const indexFile = "index.md"

// Metadata is the frontmatter of a page or post.
type Metadata struct {
	// ID is used for URLs.
	ID    string    `toml:"id" yaml:"id"`
	Title string    `toml:"title" yaml:"title"`
	Date  time.Time `toml:"date" yaml:"date"`
}

// Document is a parsed page or post.
type Document struct {
	Kind     Kind
	Metadata Metadata
	// Source is the file name within its content directory.
	Source string
	// IsIndex marks pages/index.md.
	IsIndex bool
	// HTML is the rendered body.
	HTML string
	// Fingerprint identifies the document's frontmatter and body.
	Fingerprint string
}

// OutputPath is the output-relative file the document is written to.
func (d *Document) OutputPath() string {
	switch {
	case d.Kind == KindPost:
		return filepath.ToSlash(filepath.Join("posts", d.Metadata.ID, "index.html"))
	case d.IsIndex:
		return "index.html"
	default:
		return filepath.ToSlash(filepath.Join(d.Metadata.ID, "index.html"))
	}
}

// ParseFile reads and renders one content file.
func ParseFile(path string, kind Kind, md *markdown.Renderer) (*Document, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, serrors.New(serrors.ErrReadInput, path, err)
	}
	return ParseContent(filepath.Base(path), raw, kind, md)
}

// ParseContent parses the bytes of a content file named name.
func ParseContent(name string, raw []byte, kind Kind, md *markdown.Renderer) (*Document, error) {
	doc, err := frontmatter.Split(raw)
	if err != nil {
		return nil, serrors.New(serrors.ErrMalformedContent, name, err)
	}

	var meta Metadata
	if err := doc.Decode(&meta); err != nil {
		return nil, serrors.New(serrors.ErrParseMetadata, name, err)
	}
	meta.ID = strings.TrimSpace(meta.ID)
	if meta.Title == "" {
		return nil, serrors.New(serrors.ErrParseMetadata, name, fmt.Errorf("missing title"))
	}
	if meta.ID == "" {
		meta.ID = slug.Make(meta.Title)
	}
	if meta.ID == "" {
		meta.ID = slug.FromFilename(name)
	}
	if meta.ID == "" || strings.ContainsAny(meta.ID, `/\`) || meta.ID == "." || meta.ID == ".." {
		return nil, serrors.New(serrors.ErrParseMetadata, name, fmt.Errorf("invalid id %q", meta.ID))
	}

	html, err := md.Render(doc.Body)
	if err != nil {
		return nil, serrors.New(serrors.ErrMalformedContent, name, err)
	}

	fp, err := fingerprint(doc)
	if err != nil {
		return nil, serrors.New(serrors.ErrParseMetadata, name, err)
	}

	return &Document{
		Kind:        kind,
		Metadata:    meta,
		Source:      name,
		IsIndex:     kind == KindPage && name == indexFile,
		HTML:        html,
		Fingerprint: fp,
	}, nil
}

func fingerprint(doc frontmatter.Document) (string, error) {
	fields, err := doc.Fields()
	if err != nil {
		return "", err
	}
	canonical, err := frontmatter.Canonical(fields)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(string(canonical), string(doc.Body)), nil
}

// LoadDir parses every markdown file of dir concurrently. Results are ordered
// by file name. A missing directory yields no documents.
func LoadDir(ctx context.Context, dir string, kind Kind, md *markdown.Renderer) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, serrors.New(serrors.ErrReadDirectory, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]*Document, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = serrors.New(serrors.ErrJoin, name, fmt.Errorf("panic: %v", r))
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ParseFile(filepath.Join(dir, name), kind, md)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// sortPosts orders posts newest first when every post carries a date;
// otherwise the file name order is kept.
func sortPosts(posts []*Document) {
	for _, p := range posts {
		if p.Metadata.Date.IsZero() {
			return
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Metadata.Date.After(posts[j].Metadata.Date)
	})
}
