// Package git reads the state of the working tree a recipe runs in, so run
// history can tie each run to a commit.
package git
