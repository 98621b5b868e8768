// Package errors provides the classified error primitives used across sitesmith.
//
// Errors carry a category (config, content, template, step, ...), a severity
// and a retry strategy, plus structured context that ends up in log records.
// The CLI adapter turns them into user-facing messages and process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(ioErr, errors.CategoryFileSystem, "write output file").
//		WithContext("path", outPath).
//		Fatal().
//		Build()
package errors
