// Package history persists recipe run reports in SQLite.
package history
