// Package site generates a static site from markdown pages and posts.
//
// Layout of the content directory:
//
//	pages/*.md             pages; pages/index.md becomes the site root
//	posts/*.md             posts, listed in the articles variable
//	templates/index.html   page template with shortcodes
//	templates/style.css    copied next to the generated pages
//
// Every generated document is the template with its shortcodes expanded
// against a context of site_title, site_description, nav, content and
// articles.
package site
