package connectionsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "creator_hub/internal/api/base/service"
	connectionmodels "creator_hub/internal/api/connection/models"
	"creator_hub/internal/common"
	"creator_hub/internal/global"
	"creator_hub/internal/vault"
)

// fakeRefresher ghi lại refresh token nhận được và trả về cặp token cố định
type fakeRefresher struct {
	gotRefreshToken string
	refreshed       *RefreshedToken
	err             error
}

func (f *fakeRefresher) RefreshToken(ctx context.Context, conn connectionmodels.PlatformConnection, refreshToken string) (*RefreshedToken, error) {
	f.gotRefreshToken = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return f.refreshed, nil
}

func setupVault(t *testing.T) {
	t.Helper()
	v, err := vault.New("test-vault-key")
	require.NoError(t, err)
	global.TokenVault = v
}

func encrypted(t *testing.T, plaintext string) string {
	t.Helper()
	enc, err := global.TokenVault.EncryptString(plaintext)
	require.NoError(t, err)
	return enc
}

func TestDecryptIfValidNoExpiry(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	conn := connectionmodels.PlatformConnection{
		Platform:       "mastodon",
		AccessTokenEnc: encrypted(t, "token-abc"),
	}

	token, needRefresh, err := s.decryptIfValid(conn)
	require.NoError(t, err)
	assert.False(t, needRefresh)
	assert.Equal(t, "token-abc", token)
}

func TestDecryptIfValidFarFromExpiry(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	expiry := time.Now().Add(time.Hour).UnixMilli()
	conn := connectionmodels.PlatformConnection{
		Platform:       "bluesky",
		AccessTokenEnc: encrypted(t, "token-abc"),
		TokenExpiry:    &expiry,
	}

	token, needRefresh, err := s.decryptIfValid(conn)
	require.NoError(t, err)
	assert.False(t, needRefresh)
	assert.Equal(t, "token-abc", token)
}

func TestDecryptIfValidWithinBufferNeedsRefresh(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	// Còn hạn nhưng dưới ngưỡng 5 phút
	expiry := time.Now().Add(2 * time.Minute).UnixMilli()
	conn := connectionmodels.PlatformConnection{
		Platform:       "bluesky",
		AccessTokenEnc: encrypted(t, "token-abc"),
		TokenExpiry:    &expiry,
	}

	_, needRefresh, err := s.decryptIfValid(conn)
	require.NoError(t, err)
	assert.True(t, needRefresh)
}

func TestDecryptIfValidExpiredNeedsRefresh(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	expiry := time.Now().Add(-time.Hour).UnixMilli()
	conn := connectionmodels.PlatformConnection{
		Platform:       "bluesky",
		AccessTokenEnc: encrypted(t, "token-abc"),
		TokenExpiry:    &expiry,
	}

	_, needRefresh, err := s.decryptIfValid(conn)
	require.NoError(t, err)
	assert.True(t, needRefresh)
}

func TestDecryptIfValidBadCiphertext(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	conn := connectionmodels.PlatformConnection{
		Platform:       "mastodon",
		AccessTokenEnc: "not-a-ciphertext",
	}

	_, _, err := s.decryptIfValid(conn)
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrUnauthorized, pubErr.Code)
}

func TestRefreshAndPersistWithoutRefresherRequiresReconnect(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	// Nền tảng không có refresher: token hết hạn nghĩa là phải kết nối lại
	conn := connectionmodels.PlatformConnection{
		Platform:        "facebook",
		RefreshTokenEnc: encrypted(t, "refresh-abc"),
	}

	_, err := s.refreshAndPersist(nil, conn)
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrNotConnected, pubErr.Code)
}

func TestRefreshAndPersistWithoutRefreshTokenRequiresReconnect(t *testing.T) {
	setupVault(t)
	s := &ConnectionService{}

	platform := "test-platform-no-refresh-token"
	_, err := RegistryRefreshers.Register(platform, &fakeRefresher{})
	require.NoError(t, err)
	defer RegistryRefreshers.Clear(platform, nil)

	// Có refresher nhưng kết nối không lưu refresh token
	conn := connectionmodels.PlatformConnection{Platform: platform}

	_, err = s.refreshAndPersist(context.Background(), conn)
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrNotConnected, pubErr.Code)
}

func TestRefreshAndPersistStoresRefreshedPair(t *testing.T) {
	setupVault(t)

	newExpiry := time.Now().Add(time.Hour).UnixMilli()
	refresher := &fakeRefresher{
		refreshed: &RefreshedToken{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			TokenExpiry:  &newExpiry,
		},
	}

	platform := "test-platform-refresh-ok"
	_, err := RegistryRefreshers.Register(platform, refresher)
	require.NoError(t, err)
	defer RegistryRefreshers.Clear(platform, nil)

	var persistedID primitive.ObjectID
	var persisted *basesvc.UpdateData
	s := &ConnectionService{
		persistTokens: func(ctx context.Context, id primitive.ObjectID, update *basesvc.UpdateData) error {
			persistedID = id
			persisted = update
			return nil
		},
	}

	conn := connectionmodels.PlatformConnection{
		ID:              primitive.NewObjectID(),
		Platform:        platform,
		RefreshTokenEnc: encrypted(t, "old-refresh"),
	}

	token, err := s.refreshAndPersist(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, "old-refresh", refresher.gotRefreshToken)

	// Cặp token mới phải được mã hóa lại trước khi lưu
	require.NotNil(t, persisted)
	assert.Equal(t, conn.ID, persistedID)

	accessEnc, ok := persisted.Set["accessTokenEnc"].(string)
	require.True(t, ok)
	access, err := global.TokenVault.DecryptString(accessEnc)
	require.NoError(t, err)
	assert.Equal(t, "new-access", access)

	refreshEnc, ok := persisted.Set["refreshTokenEnc"].(string)
	require.True(t, ok)
	refresh, err := global.TokenVault.DecryptString(refreshEnc)
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", refresh)

	assert.Equal(t, newExpiry, persisted.Set["tokenExpiry"])
}

func TestRefreshAndPersistExchangeFailure(t *testing.T) {
	setupVault(t)

	platform := "test-platform-refresh-fail"
	_, err := RegistryRefreshers.Register(platform, &fakeRefresher{err: errors.New("pds rejected session")})
	require.NoError(t, err)
	defer RegistryRefreshers.Clear(platform, nil)

	s := &ConnectionService{}
	conn := connectionmodels.PlatformConnection{
		ID:              primitive.NewObjectID(),
		Platform:        platform,
		RefreshTokenEnc: encrypted(t, "old-refresh"),
	}

	// Có refresh token nhưng đổi token thất bại: đây mới là token_refresh_failed
	_, err = s.refreshAndPersist(context.Background(), conn)
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrTokenRefreshFailed, pubErr.Code)
}
