// Package linkverify checks rendered pages for internal links that do not
// resolve to a file of the generated site.
package linkverify
