package site

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/linkverify"
)

// BuildReport summarises a site build.
type BuildReport struct {
	Start       time.Time
	End         time.Time
	Pages       int
	Posts       int
	// Rendered counts documents run through the template this build.
	Rendered    int
	Written     int
	Unchanged   int
	Removed     int
	StyleCopied bool
	// Outputs lists generated files relative to the output directory.
	Outputs     []string
	BrokenLinks []linkverify.BrokenLink
}

// Duration is the elapsed build time.
func (r *BuildReport) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("pages=%d posts=%d written=%d unchanged=%d removed=%d broken_links=%d duration=%s",
		r.Pages, r.Posts, r.Written, r.Unchanged, r.Removed, len(r.BrokenLinks), r.Duration().Truncate(time.Microsecond))
}
