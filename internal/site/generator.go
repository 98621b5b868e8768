package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitesmith/internal/config"
	"git.home.luguber.info/inful/sitesmith/internal/linkverify"
	"git.home.luguber.info/inful/sitesmith/internal/logfields"
	"git.home.luguber.info/inful/sitesmith/internal/markdown"
	"git.home.luguber.info/inful/sitesmith/internal/metrics"
	"git.home.luguber.info/inful/sitesmith/internal/shortcode"
	serrors "git.home.luguber.info/inful/sitesmith/internal/site/errors"
)

const (
	pagesDir     = "pages"
	postsDir     = "posts"
	templatesDir = "templates"
	templateFile = "index.html"
	styleFile    = "style.css"
)

// Options control a build.
type Options struct {
	ContentPath string
	OutputPath  string
	Title       string
	Description string
	// Force rewrites every file regardless of the manifest.
	Force bool
	// StrictLinks turns broken internal links into a build error.
	StrictLinks bool
}

// OptionsFromConfig derives build options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ContentPath: cfg.ContentPath,
		OutputPath:  cfg.OutputPath,
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
	}
}

// Generator builds a site.
type Generator struct {
	opts     Options
	md       *markdown.Renderer
	recorder metrics.Recorder
	now      func() time.Time
}

// NewGenerator returns a Generator for opts.
func NewGenerator(opts Options) *Generator {
	if opts.ContentPath == "" {
		opts.ContentPath = config.DefaultContentPath
	}
	if opts.OutputPath == "" {
		opts.OutputPath = config.DefaultOutputPath
	}
	return &Generator{
		opts:     opts,
		md:       markdown.NewRenderer(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// WithRecorder installs a metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// Options returns the effective build options.
func (g *Generator) Options() Options { return g.opts }

// Build generates the site into the output directory.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	report := &BuildReport{Start: g.now()}
	defer func() {
		report.End = g.now()
		g.recorder.ObserveSiteBuildDuration(report.Duration())
	}()

	pages, posts, err := g.load(ctx)
	if err != nil {
		return report, err
	}
	report.Pages, report.Posts = len(pages), len(posts)
	slog.Debug("Loaded content", "pages", len(pages), "posts", len(posts))

	tmplPath := filepath.Join(g.opts.ContentPath, templatesDir, templateFile)
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return report, serrors.New(serrors.ErrReadInput, tmplPath, err)
	}

	out := g.opts.OutputPath
	if err := os.MkdirAll(out, 0o750); err != nil {
		return report, serrors.New(serrors.ErrCreateDirectory, out, err)
	}

	copied, err := g.copyStyle()
	if err != nil {
		return report, err
	}
	report.StyleCopied = copied

	prev := LoadManifest(out)
	if g.opts.Force {
		prev = newManifest("")
	}
	templates := os.DirFS(filepath.Join(g.opts.ContentPath, templatesDir))
	templateHash, err := templatesFingerprint(templates)
	if err != nil {
		return report, serrors.New(serrors.ErrReadDirectory, filepath.Join(g.opts.ContentPath, templatesDir), err)
	}
	next := newManifest(templateHash)
	if prev.TemplateHash != "" && prev.TemplateHash != next.TemplateHash {
		slog.Info("Templates changed; all documents will be rendered")
	}

	engine := shortcode.New(templates)
	base := baseContext(g.opts, Nav(pages), Articles(posts))
	next.ContextHash = contextFingerprint(base)

	docs := make([]*Document, 0, len(posts)+len(pages))
	docs = append(docs, posts...)
	docs = append(docs, pages...)
	owners := make(map[string]string, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		target := doc.OutputPath()
		if owner, dup := owners[target]; dup {
			return report, serrors.New(serrors.ErrMalformedContent, doc.Source,
				fmt.Errorf("output %s is already produced by %s", target, owner))
		}
		owners[target] = doc.Source
		report.Outputs = append(report.Outputs, target)

		full := filepath.Join(out, filepath.FromSlash(target))
		if e, ok := prev.Reusable(next, target, doc); ok && fileExists(full) {
			next.Entries[target] = e
			report.Unchanged++
			slog.Debug("Source unchanged", logfields.Path(target))
			continue
		}

		html, err := engine.Apply(documentContext(base, doc), string(tmpl))
		if err != nil {
			return report, err
		}
		report.Rendered++
		next.Entries[target] = ManifestEntry{Source: doc.Source, Fingerprint: doc.Fingerprint, Output: outputFingerprint(html)}

		if prev.Unchanged(target, html) && fileExists(full) {
			report.Unchanged++
			slog.Debug("Unchanged", logfields.Path(target))
			continue
		}
		if err := writeFile(full, html); err != nil {
			return report, err
		}
		report.Written++
		slog.Debug("Wrote", logfields.Path(target), logfields.Page(doc.Metadata.ID))
	}
	g.recorder.AddPagesRendered(report.Written)

	report.Removed = removeStale(out, prev.Stale(next))
	if err := next.Save(out); err != nil {
		return report, err
	}

	broken, err := linkverify.NewVerifier(os.DirFS(out)).CheckAll()
	if err != nil {
		return report, serrors.New(serrors.ErrReadDirectory, out, err)
	}
	report.BrokenLinks = broken
	for _, b := range broken {
		slog.Warn("Broken internal link", logfields.Page(b.Page), logfields.URL(b.URL))
	}
	if len(broken) > 0 && g.opts.StrictLinks {
		return report, serrors.New(serrors.ErrBrokenLinks, out, fmt.Errorf("%d broken links, first: %s", len(broken), broken[0]))
	}
	return report, nil
}

func (g *Generator) load(ctx context.Context) (pages, posts []*Document, err error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		pages, err = LoadDir(egCtx, filepath.Join(g.opts.ContentPath, pagesDir), KindPage, g.md)
		return err
	})
	eg.Go(func() error {
		var err error
		posts, err = LoadDir(egCtx, filepath.Join(g.opts.ContentPath, postsDir), KindPost, g.md)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	sortPosts(posts)
	return pages, posts, nil
}

func (g *Generator) copyStyle() (bool, error) {
	src := filepath.Join(g.opts.ContentPath, templatesDir, styleFile)
	dst := filepath.Join(g.opts.OutputPath, styleFile)
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("No stylesheet found; skipping copy", logfields.Path(src))
			return false, nil
		}
		return false, serrors.New(serrors.ErrCopy, src, err)
	}
	defer func() { _ = in.Close() }()

	outFile, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return false, serrors.New(serrors.ErrCopy, dst, err)
	}
	if _, err := io.Copy(outFile, in); err != nil {
		_ = outFile.Close()
		return false, serrors.New(serrors.ErrCopy, dst, err)
	}
	if err := outFile.Close(); err != nil {
		return false, serrors.New(serrors.ErrCopy, dst, err)
	}
	return true, nil
}

func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return serrors.New(serrors.ErrCreateDirectory, dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // site output is world readable
		return serrors.New(serrors.ErrWriteFile, path, err)
	}
	return nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// removeStale deletes outputs of documents that no longer exist and returns
// how many files were removed.
func removeStale(outputDir string, stale []string) int {
	removed := 0
	for _, rel := range stale {
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			continue
		}
		full := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.Remove(full); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Failed to remove stale output", logfields.Path(rel), logfields.Error(err))
			}
			continue
		}
		removed++
		// drop the now empty document directory; fails harmlessly when not empty
		if dir := filepath.Dir(full); dir != filepath.Clean(outputDir) {
			_ = os.Remove(dir)
		}
		slog.Debug("Removed stale output", logfields.Path(rel))
	}
	return removed
}
