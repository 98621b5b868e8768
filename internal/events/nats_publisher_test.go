package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/sitesmith/internal/retry"
)

func TestNewNATSPublisherUnreachable(t *testing.T) {
	policy := retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 1)

	_, err := NewNATSPublisher(context.Background(), "nats://127.0.0.1:1", policy)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, classified.CanRetry())
	url, _ := classified.Context().GetString("url")
	assert.Equal(t, "nats://127.0.0.1:1", url)
}
