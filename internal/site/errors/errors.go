// Package errors defines the failure kinds of site generation.
//
// Each kind is a sentinel usable with errors.Is; New wraps it into a
// ClassifiedError so the CLI can map it to an exit code.
package errors

import (
	"errors"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

var (
	ErrConfigRead       = errors.New("could not read configuration")
	ErrMalformedContent = errors.New("malformed content file")
	ErrReadInput        = errors.New("could not read input file")
	ErrWriteFile        = errors.New("could not write file")
	ErrParseMetadata    = errors.New("could not parse metadata")
	ErrReadDirectory    = errors.New("could not read directory")
	ErrCreateDirectory  = errors.New("could not create directory")
	ErrJoin             = errors.New("concurrent task failed")
	ErrCopy             = errors.New("could not copy file")
	ErrParseShortcode   = errors.New("could not parse shortcode")
	ErrIncludeShortcode = errors.New("could not include file")
	ErrTagNotFound      = errors.New("tag not found")
)

// ErrBrokenLinks is returned when link verification runs in strict mode.
var ErrBrokenLinks = errors.New("broken internal links")

// builderFor picks the classified constructor for a kind.
func builderFor(kind error) *ferrors.ErrorBuilder {
	msg := kind.Error()
	switch kind {
	case ErrConfigRead:
		return ferrors.ConfigError(msg)
	case ErrMalformedContent, ErrParseMetadata, ErrBrokenLinks:
		return ferrors.ContentError(msg)
	case ErrParseShortcode, ErrIncludeShortcode, ErrTagNotFound:
		return ferrors.TemplateError(msg)
	case ErrJoin:
		return ferrors.RuntimeError(msg)
	default:
		return ferrors.FileSystemError(msg)
	}
}

// New builds a classified error of the given kind. subject names the file,
// directory, shortcode or tag involved; cause may be nil.
func New(kind error, subject string, cause error) *ferrors.ClassifiedError {
	b := builderFor(kind).WithKind(kind).WithCause(cause)
	if subject != "" {
		b = b.WithContext("path", subject)
	}
	return b.Build()
}
