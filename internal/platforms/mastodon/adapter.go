// Package mastodon là adapter đăng bài lên Mastodon qua thư viện go-mastodon.
package mastodon

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	gomastodon "github.com/mattn/go-mastodon"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"

	connectionmodels "creator_hub/internal/api/connection/models"
	connectionsvc "creator_hub/internal/api/connection/service"
	"creator_hub/internal/common"
	"creator_hub/internal/logger"
	"creator_hub/internal/platforms"
)

// Giới hạn nội dung của Mastodon
const (
	maxTextLength  = 500 // Số ký tự tối đa của một toot
	maxAttachments = 4   // Số media tối đa của một toot
)

// Adapter đăng bài lên Mastodon
type Adapter struct {
	server       string
	clientID     string
	clientSecret string
	tokens       platforms.TokenSource
}

// NewAdapter tạo mới Mastodon Adapter
func NewAdapter(server, clientID, clientSecret string, tokens platforms.TokenSource) *Adapter {
	return &Adapter{
		server:       server,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokens:       tokens,
	}
}

// Name trả về tên nền tảng
func (a *Adapter) Name() string {
	return platforms.PlatformMastodon
}

// OAuthConfig trả về cấu hình OAuth2 cho flow kết nối Mastodon
func (a *Adapter) OAuthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		Scopes:       []string{"read", "write"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/oauth/authorize", a.server),
			TokenURL: fmt.Sprintf("%s/oauth/token", a.server),
		},
		RedirectURL: redirectURL,
	}
}

// ExchangeCode đổi authorization code lấy access token và thông tin tài khoản
func (a *Adapter) ExchangeCode(ctx context.Context, code, redirectURL string) (*oauth2.Token, *gomastodon.Account, error) {
	conf := a.OAuthConfig(redirectURL)

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	client := gomastodon.NewClient(&gomastodon.Config{
		Server:       a.server,
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		AccessToken:  token.AccessToken,
	})

	account, err := client.GetAccountCurrentUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get mastodon account: %w", err)
	}

	return token, account, nil
}

// RefreshToken làm mới access token qua oauth2 refresh_token grant
// (implement connectionsvc.TokenRefresher). Hầu hết instance cấp token không
// hết hạn, nhưng instance nào đặt expiry thì đi qua đường này.
func (a *Adapter) RefreshToken(ctx context.Context, conn connectionmodels.PlatformConnection, refreshToken string) (*connectionsvc.RefreshedToken, error) {
	conf := a.OAuthConfig("")

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("mastodon token refresh failed: %w", err)
	}

	refreshed := &connectionsvc.RefreshedToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UnixMilli()
		refreshed.TokenExpiry = &expiry
	}
	return refreshed, nil
}

// ValidateContent kiểm tra giới hạn 500 ký tự và 4 media của Mastodon
func (a *Adapter) ValidateContent(content platforms.Content) error {
	if utf8.RuneCountInString(content.Text) > maxTextLength {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Nội dung vượt quá %d ký tự", maxTextLength), nil)
	}
	if len(content.MediaURLs) > maxAttachments {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Tối đa %d media cho một bài viết", maxAttachments), nil)
	}
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) == 0 {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Bài viết phải có nội dung hoặc media", nil)
	}
	return nil
}

// Publish đăng toot thay mặt người dùng. Media lỗi bị bỏ qua kèm cảnh báo,
// trừ khi bài viết chỉ có media và tất cả đều lỗi.
func (a *Adapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	accessToken, err := a.tokens.GetValidAccessToken(ctx, ownerID, a.Name())
	if err != nil {
		return nil, err
	}

	client := gomastodon.NewClient(&gomastodon.Config{
		Server:       a.server,
		ClientID:     a.clientID,
		ClientSecret: a.clientSecret,
		AccessToken:  accessToken,
	})

	var warnings []string
	var mediaIDs []gomastodon.ID
	for _, mediaURL := range content.MediaURLs {
		media, err := platforms.FetchMedia(ctx, mediaURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: %v", mediaURL, err))
			continue
		}

		attachment, err := client.UploadMediaFromReader(ctx, bytes.NewReader(media.Data))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: upload thất bại", mediaURL))
			continue
		}
		mediaIDs = append(mediaIDs, attachment.ID)
	}

	// Bài chỉ có media mà không upload được cái nào thì không còn gì để đăng
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) > 0 && len(mediaIDs) == 0 {
		return nil, common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Không upload được media nào cho bài viết chỉ có media", nil)
	}

	toot := &gomastodon.Toot{
		Status:   content.Text,
		MediaIDs: mediaIDs,
	}

	status, err := client.PostStatus(ctx, toot)
	if err != nil {
		return nil, a.mapError(err)
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"owner_id":  ownerID.Hex(),
		"status_id": string(status.ID),
	}).Info("🐘 [MASTODON] Status posted")

	return &platforms.PublishResult{
		ExternalID:  string(status.ID),
		ExternalURL: status.URL,
		Warnings:    warnings,
	}, nil
}

// mapError quy lỗi của Mastodon về mã lỗi chuẩn
func (a *Adapter) mapError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "401"):
		return common.NewPublishError(a.Name(), common.PublishErrUnauthorized, "Token bị từ chối", err)
	case strings.Contains(msg, "429"):
		return common.NewPublishError(a.Name(), common.PublishErrRateLimited, "Nền tảng giới hạn tần suất", err)
	case strings.Contains(msg, "422"):
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Nền tảng từ chối nội dung", err)
	default:
		return common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Đăng bài lên Mastodon thất bại", err)
	}
}
