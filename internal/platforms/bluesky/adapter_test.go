package bluesky

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

func TestValidateContent(t *testing.T) {
	a := NewAdapter("https://bsky.social", nil)

	assert.NoError(t, a.ValidateContent(platforms.Content{Text: "hello"}))
	assert.NoError(t, a.ValidateContent(platforms.Content{Text: strings.Repeat("à", 300)}))

	err := a.ValidateContent(platforms.Content{Text: strings.Repeat("a", 301)})
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrValidationFailed, pubErr.Code)

	tooManyImages := platforms.Content{
		Text:      "x",
		MediaURLs: []string{"a", "b", "c", "d", "e"},
	}
	assert.Error(t, a.ValidateContent(tooManyImages))

	assert.Error(t, a.ValidateContent(platforms.Content{Text: "  "}))
}

func TestWebURLFromAtURI(t *testing.T) {
	url := webURLFromAtURI("at://did:plc:abc123/app.bsky.feed.post/3kxyz", "alice.bsky.social")
	assert.Equal(t, "https://bsky.app/profile/alice.bsky.social/post/3kxyz", url)

	assert.Equal(t, "", webURLFromAtURI("garbage", "alice.bsky.social"))
}
