package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishErrorRetryable(t *testing.T) {
	retryable := []PublishErrorCode{PublishErrRateLimited, PublishErrUnavailable}
	for _, code := range retryable {
		assert.True(t, NewPublishError("mastodon", code, "", nil).Retryable(), string(code))
	}

	permanent := []PublishErrorCode{
		PublishErrNotConnected,
		PublishErrTokenRefreshFailed,
		PublishErrValidationFailed,
		PublishErrDuplicateContent,
		PublishErrUnauthorized,
	}
	for _, code := range permanent {
		assert.False(t, NewPublishError("mastodon", code, "", nil).Retryable(), string(code))
	}
}

func TestAsPublishErrorPassesThrough(t *testing.T) {
	original := NewPublishError("bluesky", PublishErrUnauthorized, "token revoked", nil)
	wrapped := fmt.Errorf("publish failed: %w", original)

	got := AsPublishError("bluesky", wrapped)
	assert.Equal(t, PublishErrUnauthorized, got.Code)
	assert.Equal(t, "bluesky", got.Platform)
}

func TestAsPublishErrorWrapsUnknownError(t *testing.T) {
	got := AsPublishError("telegram", errors.New("connection reset"))
	require.NotNil(t, got)
	assert.Equal(t, PublishErrUnavailable, got.Code)
	assert.Equal(t, "telegram", got.Platform)
	assert.Equal(t, "connection reset", got.Message)
}

func TestAsPublishErrorNil(t *testing.T) {
	assert.Nil(t, AsPublishError("mastodon", nil))
}

func TestPublishErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewPublishError("facebook", PublishErrUnavailable, "boom", cause)
	assert.ErrorIs(t, err, cause)
}
