package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
)

func TestNew_MatchesKindAndCategory(t *testing.T) {
	cause := errors.New("permission denied")
	err := New(ErrWriteFile, "_site/index.html", cause)

	require.ErrorIs(t, err, ErrWriteFile)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrCopy)
	require.Equal(t, ferrors.CategoryFileSystem, err.Category())
	path, ok := err.Context().GetString("path")
	require.True(t, ok)
	require.Equal(t, "_site/index.html", path)
}

func TestNew_Categories(t *testing.T) {
	cases := map[error]ferrors.ErrorCategory{
		ErrConfigRead:       ferrors.CategoryConfig,
		ErrMalformedContent: ferrors.CategoryContent,
		ErrTagNotFound:      ferrors.CategoryTemplate,
		ErrJoin:             ferrors.CategoryRuntime,
		ErrReadDirectory:    ferrors.CategoryFileSystem,
	}
	for kind, want := range cases {
		err := fmt.Errorf("wrapped: %w", New(kind, "", nil))
		require.Equal(t, want, ferrors.GetCategory(err), kind.Error())
		require.ErrorIs(t, err, kind)
	}
}

func TestNew_ContentAndTemplateNeedUserAction(t *testing.T) {
	for _, kind := range []error{ErrMalformedContent, ErrIncludeShortcode} {
		err := New(kind, "pages/a.md", nil)
		require.Equal(t, ferrors.SeverityFatal, err.Severity())
		require.Equal(t, ferrors.RetryUserAction, err.RetryStrategy())
		require.Nil(t, err.Cause())
	}
	require.Equal(t, ferrors.RetryNever, New(ErrWriteFile, "", nil).RetryStrategy())
}
