package mastodon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connectionmodels "creator_hub/internal/api/connection/models"
	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

func TestValidateContent(t *testing.T) {
	a := NewAdapter("https://mastodon.social", "id", "secret", nil)

	assert.NoError(t, a.ValidateContent(platforms.Content{Text: "hello"}))
	assert.NoError(t, a.ValidateContent(platforms.Content{Text: strings.Repeat("ê", 500)}))

	err := a.ValidateContent(platforms.Content{Text: strings.Repeat("a", 501)})
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrValidationFailed, pubErr.Code)

	assert.Error(t, a.ValidateContent(platforms.Content{
		Text:      "x",
		MediaURLs: []string{"a", "b", "c", "d", "e"},
	}))
	assert.Error(t, a.ValidateContent(platforms.Content{}))
}

func TestMapError(t *testing.T) {
	a := NewAdapter("https://mastodon.social", "id", "secret", nil)

	tests := []struct {
		msg  string
		want common.PublishErrorCode
	}{
		{"bad request: 401 Unauthorized", common.PublishErrUnauthorized},
		{"bad request: 429 Too Many Requests", common.PublishErrRateLimited},
		{"bad request: 422 Unprocessable Entity", common.PublishErrValidationFailed},
		{"connection refused", common.PublishErrUnavailable},
	}

	for _, tt := range tests {
		err := a.mapError(errors.New(tt.msg))
		var pubErr *common.PublishError
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, tt.want, pubErr.Code, tt.msg)
	}
}

func TestOAuthConfigEndpoints(t *testing.T) {
	a := NewAdapter("https://mastodon.example", "id", "secret", nil)
	conf := a.OAuthConfig("https://app.example/callback")

	assert.Equal(t, "https://mastodon.example/oauth/authorize", conf.Endpoint.AuthURL)
	assert.Equal(t, "https://mastodon.example/oauth/token", conf.Endpoint.TokenURL)
	assert.Equal(t, []string{"read", "write"}, conf.Scopes)
}

func TestRefreshToken(t *testing.T) {
	var gotGrantType, gotRefreshToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotGrantType = r.FormValue("grant_type")
		gotRefreshToken = r.FormValue("refresh_token")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "new-access",
			"token_type":    "Bearer",
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	a := NewAdapter(server.URL, "id", "secret", nil)
	refreshed, err := a.RefreshToken(context.Background(), connectionmodels.PlatformConnection{}, "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", gotGrantType)
	assert.Equal(t, "old-refresh", gotRefreshToken)
	assert.Equal(t, "new-access", refreshed.AccessToken)
	assert.Equal(t, "new-refresh", refreshed.RefreshToken)
	require.NotNil(t, refreshed.TokenExpiry)
}

func TestRefreshTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer server.Close()

	a := NewAdapter(server.URL, "id", "secret", nil)
	_, err := a.RefreshToken(context.Background(), connectionmodels.PlatformConnection{}, "revoked-refresh")
	assert.Error(t, err)
}
