package site

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitesmith/internal/shortcode"
)

// Context variable names available in templates.
const (
	VarSiteTitle       = "site_title"
	VarSiteDescription = "site_description"
	VarNav             = "nav"
	VarContent         = "content"
	VarArticles        = "articles"
)

// Nav renders one anchor per page in page order. The index page links to "/".
func Nav(pages []*Document) string {
	var b strings.Builder
	for _, p := range pages {
		if p.IsIndex {
			fmt.Fprintf(&b, "<a href=\"/\">%s</a>\n", p.Metadata.Title)
		} else {
			fmt.Fprintf(&b, "<a href=\"/%s/\">%s</a>\n", p.Metadata.ID, p.Metadata.Title)
		}
	}
	return b.String()
}

// Articles renders the list of posts.
func Articles(posts []*Document) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, p := range posts {
		fmt.Fprintf(&b, "<li><a href=\"/posts/%s\">%s</a></li>", p.Metadata.ID, p.Metadata.Title)
	}
	b.WriteString("</ul>")
	return b.String()
}

func baseContext(opts Options, nav, articles string) shortcode.Context {
	return shortcode.Context{
		VarSiteTitle:       opts.Title,
		VarSiteDescription: opts.Description,
		VarNav:             nav,
		VarArticles:        articles,
	}
}

func documentContext(base shortcode.Context, doc *Document) shortcode.Context {
	ctx := make(shortcode.Context, len(base)+1)
	for k, v := range base {
		ctx[k] = v
	}
	ctx[VarContent] = doc.HTML
	return ctx
}
