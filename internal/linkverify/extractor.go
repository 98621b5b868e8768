package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

// Link is a reference found in an HTML document.
type Link struct {
	URL       string
	Text      string
	Tag       string
	Attribute string
}

// linkAttrs maps element names to the attribute holding their link.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
}

// ExtractLinks returns every link-like attribute in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					text := ""
					switch n.Data {
					case "a":
						text = extractText(n)
					case "img":
						text = getAttr(n, "alt")
					}
					links = append(links, Link{URL: v, Text: text, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return strings.TrimSpace(b.String())
}

// isInternal reports whether link points into the generated site and should
// be verified. Fragments, special schemes and absolute URLs are skipped.
func isInternal(link string) bool {
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "//") {
		return false
	}
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(link, p) {
			return false
		}
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
