package telegram

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

func TestValidateContent(t *testing.T) {
	a := NewAdapter("bot-token", nil)

	assert.NoError(t, a.ValidateContent(platforms.Content{Text: "hello"}))
	assert.NoError(t, a.ValidateContent(platforms.Content{Text: strings.Repeat("a", 4096)}))
	assert.Error(t, a.ValidateContent(platforms.Content{Text: strings.Repeat("a", 4097)}))
	assert.Error(t, a.ValidateContent(platforms.Content{}))

	urls := make([]string, 11)
	for i := range urls {
		urls[i] = "https://cdn/x.png"
	}
	assert.Error(t, a.ValidateContent(platforms.Content{Text: "x", MediaURLs: urls}))
}

func TestMapError(t *testing.T) {
	a := NewAdapter("bot-token", nil)

	tests := []struct {
		code int
		want common.PublishErrorCode
	}{
		{http.StatusUnauthorized, common.PublishErrUnauthorized},
		{http.StatusForbidden, common.PublishErrUnauthorized},
		{http.StatusTooManyRequests, common.PublishErrRateLimited},
		{http.StatusBadRequest, common.PublishErrValidationFailed},
		{http.StatusInternalServerError, common.PublishErrUnavailable},
	}

	for _, tt := range tests {
		err := a.mapError(tt.code, "description")
		var pubErr *common.PublishError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, tt.want, pubErr.Code)
	}
}

func TestMessageURL(t *testing.T) {
	withUsername := &messageResult{MessageID: 99}
	withUsername.Chat.Username = "mychannel"
	assert.Equal(t, "https://t.me/mychannel/99", messageURL(withUsername))

	// Chat riêng tư không có URL công khai
	private := &messageResult{MessageID: 99}
	assert.Equal(t, "", messageURL(private))
}
