package facebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

func TestValidateContent(t *testing.T) {
	a := NewAdapter("app-id", "app-secret", "v19.0", nil)

	assert.NoError(t, a.ValidateContent(platforms.Content{Text: "hello"}))
	assert.Error(t, a.ValidateContent(platforms.Content{Text: strings.Repeat("a", 63207)}))
	assert.Error(t, a.ValidateContent(platforms.Content{}))

	urls := make([]string, 11)
	for i := range urls {
		urls[i] = "https://cdn/x.png"
	}
	assert.Error(t, a.ValidateContent(platforms.Content{Text: "x", MediaURLs: urls}))
}

func TestMapGraphError(t *testing.T) {
	a := NewAdapter("app-id", "app-secret", "v19.0", nil)

	tests := []struct {
		code int
		want common.PublishErrorCode
	}{
		{190, common.PublishErrUnauthorized},
		{102, common.PublishErrUnauthorized},
		{4, common.PublishErrRateLimited},
		{17, common.PublishErrRateLimited},
		{32, common.PublishErrRateLimited},
		{613, common.PublishErrRateLimited},
		{100, common.PublishErrValidationFailed},
		{1, common.PublishErrUnavailable},
	}

	for _, tt := range tests {
		var gerr graphError
		gerr.Error.Code = tt.code
		gerr.Error.Message = "boom"

		err := a.mapGraphError(gerr)
		var pubErr *common.PublishError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, tt.want, pubErr.Code)
	}
}

func TestAuthorizeURL(t *testing.T) {
	a := NewAdapter("12345", "secret", "v19.0", nil)
	url := a.AuthorizeURL("https://app.example/callback", "xyz")

	assert.Contains(t, url, "https://www.facebook.com/v19.0/dialog/oauth?")
	assert.Contains(t, url, "client_id=12345")
	assert.Contains(t, url, "state=xyz")
}
