// Package facebook là adapter đăng bài lên Facebook Page qua Graph API.
// Kết nối lưu page access token (đã mã hóa) và page ID của người dùng.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	connectionmodels "creator_hub/internal/api/connection/models"
	"creator_hub/internal/common"
	"creator_hub/internal/logger"
	"creator_hub/internal/platforms"
)

// Giới hạn nội dung của Facebook
const (
	maxTextLength = 63206 // Số ký tự tối đa của một post
	maxPhotos     = 10    // Số ảnh tối đa đính kèm một post
)

const graphBaseURL = "https://graph.facebook.com"

// ConnectionSource cấp page token còn hạn và thông tin kết nối (page ID)
type ConnectionSource interface {
	platforms.TokenSource
	GetConnection(ctx context.Context, ownerID primitive.ObjectID, platform string) (connectionmodels.PlatformConnection, error)
}

// Adapter đăng bài lên Facebook Page
type Adapter struct {
	appID        string
	appSecret    string
	graphVersion string
	connections  ConnectionSource
	httpClient   *http.Client
}

// NewAdapter tạo mới Facebook Adapter
func NewAdapter(appID, appSecret, graphVersion string, connections ConnectionSource) *Adapter {
	return &Adapter{
		appID:        appID,
		appSecret:    appSecret,
		graphVersion: graphVersion,
		connections:  connections,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name trả về tên nền tảng
func (a *Adapter) Name() string {
	return platforms.PlatformFacebook
}

// AuthorizeURL dựng URL đăng nhập Facebook cho flow kết nối
func (a *Adapter) AuthorizeURL(redirectURL, state string) string {
	params := url.Values{}
	params.Set("client_id", a.appID)
	params.Set("redirect_uri", redirectURL)
	params.Set("state", state)
	params.Set("scope", "pages_manage_posts,pages_read_engagement")
	return fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth?%s", a.graphVersion, params.Encode())
}

// Page là thông tin page lấy được sau khi đổi code
type Page struct {
	ID          string
	Name        string
	AccessToken string
}

// ExchangeCode đổi authorization code lấy page access token.
// Token người dùng được đổi thành long-lived trước khi lấy danh sách page;
// page token sinh từ long-lived user token không có hạn cố định.
func (a *Adapter) ExchangeCode(ctx context.Context, code, redirectURL string) (*Page, error) {
	// Bước 1: code -> user access token
	params := url.Values{}
	params.Set("client_id", a.appID)
	params.Set("client_secret", a.appSecret)
	params.Set("redirect_uri", redirectURL)
	params.Set("code", code)

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := a.get(ctx, "/oauth/access_token", params, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to exchange facebook code: %w", err)
	}

	// Bước 2: user token -> long-lived user token
	params = url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", a.appID)
	params.Set("client_secret", a.appSecret)
	params.Set("fb_exchange_token", tokenResp.AccessToken)

	var longLived struct {
		AccessToken string `json:"access_token"`
	}
	if err := a.get(ctx, "/oauth/access_token", params, &longLived); err != nil {
		return nil, fmt.Errorf("failed to get long-lived facebook token: %w", err)
	}

	// Bước 3: lấy page đầu tiên mà người dùng quản lý
	params = url.Values{}
	params.Set("access_token", longLived.AccessToken)
	params.Set("fields", "id,name,access_token")

	var pagesResp struct {
		Data []Page `json:"data"`
	}
	if err := a.get(ctx, "/me/accounts", params, &pagesResp); err != nil {
		return nil, fmt.Errorf("failed to list facebook pages: %w", err)
	}
	if len(pagesResp.Data) == 0 {
		return nil, fmt.Errorf("facebook account has no manageable pages")
	}

	return &pagesResp.Data[0], nil
}

// ValidateContent kiểm tra giới hạn nội dung của Facebook
func (a *Adapter) ValidateContent(content platforms.Content) error {
	if utf8.RuneCountInString(content.Text) > maxTextLength {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Nội dung vượt quá %d ký tự", maxTextLength), nil)
	}
	if len(content.MediaURLs) > maxPhotos {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Tối đa %d ảnh cho một bài viết", maxPhotos), nil)
	}
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) == 0 {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Bài viết phải có nội dung hoặc media", nil)
	}
	return nil
}

// Publish đăng bài lên page đã kết nối. Ảnh được upload ở chế độ unpublished
// rồi đính kèm vào post; ảnh upload lỗi bị bỏ qua kèm cảnh báo.
func (a *Adapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	pageToken, err := a.connections.GetValidAccessToken(ctx, ownerID, a.Name())
	if err != nil {
		return nil, err
	}

	conn, err := a.connections.GetConnection(ctx, ownerID, a.Name())
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrNotConnected, "Người dùng chưa kết nối nền tảng này", err)
	}
	pageID := conn.PlatformUserID

	var warnings []string
	var photoIDs []string
	for _, mediaURL := range content.MediaURLs {
		photoID, err := a.uploadPhoto(ctx, pageID, pageToken, mediaURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: %v", mediaURL, err))
			continue
		}
		photoIDs = append(photoIDs, photoID)
	}

	// Bài chỉ có media mà không upload được cái nào thì không còn gì để đăng
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) > 0 && len(photoIDs) == 0 {
		return nil, common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Không upload được media nào cho bài viết chỉ có media", nil)
	}

	form := url.Values{}
	form.Set("access_token", pageToken)
	if content.Text != "" {
		form.Set("message", content.Text)
	}
	for i, photoID := range photoIDs {
		form.Set(fmt.Sprintf("attached_media[%d]", i), fmt.Sprintf(`{"media_fbid":"%s"}`, photoID))
	}

	var postResp struct {
		ID string `json:"id"`
	}
	if err := a.post(ctx, fmt.Sprintf("/%s/feed", pageID), form, &postResp); err != nil {
		return nil, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"owner_id": ownerID.Hex(),
		"post_id":  postResp.ID,
	}).Info("📘 [FACEBOOK] Page post created")

	return &platforms.PublishResult{
		ExternalID:  postResp.ID,
		ExternalURL: fmt.Sprintf("https://www.facebook.com/%s", postResp.ID),
		Warnings:    warnings,
	}, nil
}

// uploadPhoto upload một ảnh theo URL ở chế độ unpublished, trả về photo ID
func (a *Adapter) uploadPhoto(ctx context.Context, pageID, pageToken, photoURL string) (string, error) {
	form := url.Values{}
	form.Set("access_token", pageToken)
	form.Set("url", photoURL)
	form.Set("published", "false")

	var resp struct {
		ID string `json:"id"`
	}
	if err := a.post(ctx, fmt.Sprintf("/%s/photos", pageID), form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// graphError là envelope lỗi chuẩn của Graph API
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (a *Adapter) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s%s?%s", graphBaseURL, a.graphVersion, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *Adapter) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s%s", graphBaseURL, a.graphVersion, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không thể tạo request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := a.do(req, out); err != nil {
		if pubErr, ok := err.(*common.PublishError); ok {
			return pubErr
		}
		return common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Graph API không phản hồi", err)
	}
	return nil
}

func (a *Adapter) do(req *http.Request, out interface{}) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
			"path": req.URL.Path,
		}).Error("📘 [FACEBOOK] Lỗi khi gọi Graph API")
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gerr graphError
		if jsonErr := json.Unmarshal(body, &gerr); jsonErr == nil && gerr.Error.Message != "" {
			logger.GetErrorLogger().WithFields(logrus.Fields{
				"path":        req.URL.Path,
				"status_code": resp.StatusCode,
				"graph_code":  gerr.Error.Code,
				"graph_type":  gerr.Error.Type,
			}).Error("📘 [FACEBOOK] Graph API trả về lỗi")
			return a.mapGraphError(gerr)
		}
		return fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}

// mapGraphError quy mã lỗi Graph API về mã lỗi chuẩn.
// Code 190 là token hết hạn/bị thu hồi; 4, 17, 32, 613 là các mã throttling.
func (a *Adapter) mapGraphError(gerr graphError) error {
	detail := fmt.Sprintf("graph API error %d: %s", gerr.Error.Code, gerr.Error.Message)
	switch gerr.Error.Code {
	case 190, 102:
		return common.NewPublishError(a.Name(), common.PublishErrUnauthorized, detail, nil)
	case 4, 17, 32, 613:
		return common.NewPublishError(a.Name(), common.PublishErrRateLimited, detail, nil)
	case 100:
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, detail, nil)
	default:
		return common.NewPublishError(a.Name(), common.PublishErrUnavailable, detail, nil)
	}
}
