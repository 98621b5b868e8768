package linkverify

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// BrokenLink is an internal link whose target is not part of the site.
type BrokenLink struct {
	// Page is the output-relative file containing the link.
	Page string
	URL  string
	Tag  string
	Text string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: <%s> %s", b.Page, b.Tag, b.URL)
}

// Verifier resolves links against a generated site.
type Verifier struct {
	site fs.FS
}

// NewVerifier returns a Verifier over the output tree, typically os.DirFS(outputDir).
func NewVerifier(site fs.FS) *Verifier {
	return &Verifier{site: site}
}

// CheckPage verifies the links of one rendered page. page is the
// output-relative path of the file, used to resolve relative links.
func (v *Verifier) CheckPage(page string, content []byte) ([]BrokenLink, error) {
	links, err := ExtractLinks(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	var broken []BrokenLink
	for _, l := range links {
		if !isInternal(l.URL) {
			continue
		}
		target, ok := resolve(page, l.URL)
		if !ok || !v.exists(target) {
			broken = append(broken, BrokenLink{Page: page, URL: l.URL, Tag: l.Tag, Text: l.Text})
		}
	}
	return broken, nil
}

// CheckAll verifies every .html file of the site in lexical order.
func (v *Verifier) CheckAll() ([]BrokenLink, error) {
	var pages []string
	err := fs.WalkDir(v.site, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			pages = append(pages, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)

	var broken []BrokenLink
	for _, p := range pages {
		data, err := fs.ReadFile(v.site, p)
		if err != nil {
			return nil, err
		}
		b, err := v.CheckPage(p, data)
		if err != nil {
			slog.Warn("Skipping unparsable page during link verification", logfields.Page(p), logfields.Error(err))
			continue
		}
		broken = append(broken, b...)
	}
	return broken, nil
}

// resolve maps a link to the output-relative file that should exist.
func resolve(page, link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	p := u.Path
	if p == "" {
		// query-only link to the page itself
		return page, true
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", path.Dir(page), p)
		if strings.HasSuffix(u.Path, "/") {
			p += "/"
		}
	}
	clean := strings.TrimPrefix(path.Clean(p), "/")
	if clean == "" {
		return "index.html", true
	}
	if strings.HasSuffix(p, "/") || path.Ext(clean) == "" {
		return clean + "/index.html", true
	}
	return clean, true
}

func (v *Verifier) exists(target string) bool {
	if st, err := fs.Stat(v.site, target); err == nil && !st.IsDir() {
		return true
	}
	// extensionless files such as /CNAME
	if trimmed, ok := strings.CutSuffix(target, "/index.html"); ok {
		if st, err := fs.Stat(v.site, trimmed); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}
