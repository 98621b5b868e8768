package site

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitesmith/internal/shortcode"
	serrors "git.home.luguber.info/inful/sitesmith/internal/site/errors"
)

// ManifestFile is stored in the output directory and drives incremental writes.
const ManifestFile = ".sitesmith-manifest.json"

const manifestVersion = 2

// ManifestEntry describes one generated file.
type ManifestEntry struct {
	Source string `json:"source"`
	// Fingerprint is the source document fingerprint the output was rendered from.
	Fingerprint string `json:"fingerprint"`
	// Output is the fingerprint of the written HTML.
	Output string `json:"output"`
}

// Manifest maps output-relative paths to what was written there.
type Manifest struct {
	Version int `json:"version"`
	// TemplateHash covers every file under the templates directory.
	TemplateHash string `json:"template_hash"`
	// ContextHash covers the site-wide template variables (title, nav, articles).
	ContextHash string                   `json:"context_hash"`
	Entries     map[string]ManifestEntry `json:"entries"`
}

func newManifest(templateHash string) *Manifest {
	return &Manifest{Version: manifestVersion, TemplateHash: templateHash, Entries: map[string]ManifestEntry{}}
}

// LoadManifest reads the manifest of outputDir. A missing or unreadable
// manifest yields an empty one, forcing a full write.
func LoadManifest(outputDir string) *Manifest {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return newManifest("")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil || m.Version != manifestVersion || m.Entries == nil {
		return newManifest("")
	}
	return &m
}

// Save writes the manifest with sorted keys.
func (m *Manifest) Save(outputDir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return serrors.New(serrors.ErrWriteFile, ManifestFile, err)
	}
	path := filepath.Join(outputDir, ManifestFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return serrors.New(serrors.ErrWriteFile, path, err)
	}
	return nil
}

// Reusable returns the entry recorded for out when rendering doc again would
// produce the same HTML: same source fingerprint, templates and site context.
func (m *Manifest) Reusable(next *Manifest, out string, doc *Document) (ManifestEntry, bool) {
	if m.TemplateHash == "" || m.TemplateHash != next.TemplateHash || m.ContextHash != next.ContextHash {
		return ManifestEntry{}, false
	}
	e, ok := m.Entries[out]
	if !ok || e.Output == "" || e.Source != doc.Source || e.Fingerprint != doc.Fingerprint {
		return ManifestEntry{}, false
	}
	return e, true
}

// Unchanged reports whether out was already written with the given HTML.
func (m *Manifest) Unchanged(out, html string) bool {
	e, ok := m.Entries[out]
	return ok && e.Output == outputFingerprint(html)
}

// Stale lists outputs recorded in m that are absent from next.
func (m *Manifest) Stale(next *Manifest) []string {
	var stale []string
	for out := range m.Entries {
		if _, ok := next.Entries[out]; !ok {
			stale = append(stale, out)
		}
	}
	sort.Strings(stale)
	return stale
}

func outputFingerprint(html string) string {
	return mdfp.CalculateFingerprintFromParts("", html)
}

// templatesFingerprint hashes the names and contents of every file in
// templates, so edited partials invalidate reusable outputs too.
func templatesFingerprint(templates fs.FS) (string, error) {
	var b strings.Builder
	err := fs.WalkDir(templates, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(templates, name)
		if err != nil {
			return err
		}
		b.WriteString(name)
		b.WriteByte(0)
		b.Write(data)
		b.WriteByte(0)
		return nil
	})
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts("", b.String()), nil
}

func contextFingerprint(ctx shortcode.Context) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(0)
		b.WriteString(ctx[k])
		b.WriteByte(0)
	}
	return mdfp.CalculateFingerprintFromParts("", b.String())
}
