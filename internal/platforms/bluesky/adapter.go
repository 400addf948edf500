// Package bluesky là adapter đăng bài lên Bluesky qua giao thức AT (thư viện indigo).
package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	connectionmodels "creator_hub/internal/api/connection/models"
	connectionsvc "creator_hub/internal/api/connection/service"
	"creator_hub/internal/common"
	"creator_hub/internal/logger"
	"creator_hub/internal/platforms"
)

// Giới hạn nội dung của Bluesky
const (
	maxTextLength = 300 // Số ký tự tối đa của một post
	maxImages     = 4   // Số hình ảnh tối đa của một post
)

// accessTokenTTL: access JWT của Bluesky sống ngắn, coi như hết hạn sau 90 phút
// để GetValidAccessToken chủ động refresh trước khi PDS từ chối.
const accessTokenTTL = 90 * time.Minute

// ConnectionSource cấp token còn hạn và thông tin kết nối (DID, handle)
type ConnectionSource interface {
	platforms.TokenSource
	GetConnection(ctx context.Context, ownerID primitive.ObjectID, platform string) (connectionmodels.PlatformConnection, error)
}

// Adapter đăng bài lên Bluesky
type Adapter struct {
	pdsHost     string
	connections ConnectionSource
}

// NewAdapter tạo mới Bluesky Adapter
func NewAdapter(pdsHost string, connections ConnectionSource) *Adapter {
	return &Adapter{
		pdsHost:     pdsHost,
		connections: connections,
	}
}

// Name trả về tên nền tảng
func (a *Adapter) Name() string {
	return platforms.PlatformBluesky
}

// Session là kết quả tạo phiên với PDS khi người dùng kết nối Bluesky
type Session struct {
	AccessJwt   string
	RefreshJwt  string
	Did         string
	Handle      string
	TokenExpiry int64 // unix millis
}

// CreateSession tạo phiên mới với identifier + app password (flow kết nối)
func (a *Adapter) CreateSession(ctx context.Context, identifier, appPassword string) (*Session, error) {
	client := &xrpc.Client{Host: a.pdsHost}

	sess, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: identifier,
		Password:   appPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("bluesky authentication failed: %w", err)
	}

	return &Session{
		AccessJwt:   sess.AccessJwt,
		RefreshJwt:  sess.RefreshJwt,
		Did:         sess.Did,
		Handle:      sess.Handle,
		TokenExpiry: time.Now().Add(accessTokenTTL).UnixMilli(),
	}, nil
}

// RefreshToken làm mới phiên bằng refresh JWT (implement connectionsvc.TokenRefresher).
// Refresh JWT được dùng làm credential của lời gọi ServerRefreshSession.
func (a *Adapter) RefreshToken(ctx context.Context, conn connectionmodels.PlatformConnection, refreshToken string) (*connectionsvc.RefreshedToken, error) {
	client := &xrpc.Client{
		Host: a.pdsHost,
		Auth: &xrpc.AuthInfo{
			AccessJwt:  refreshToken,
			RefreshJwt: refreshToken,
			Did:        conn.PlatformUserID,
			Handle:     conn.PlatformUsername,
		},
	}

	sess, err := comatproto.ServerRefreshSession(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("bluesky session refresh failed: %w", err)
	}

	expiry := time.Now().Add(accessTokenTTL).UnixMilli()
	return &connectionsvc.RefreshedToken{
		AccessToken:  sess.AccessJwt,
		RefreshToken: sess.RefreshJwt,
		TokenExpiry:  &expiry,
	}, nil
}

// ValidateContent kiểm tra giới hạn 300 ký tự và 4 hình ảnh của Bluesky
func (a *Adapter) ValidateContent(content platforms.Content) error {
	if utf8.RuneCountInString(content.Text) > maxTextLength {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Nội dung vượt quá %d ký tự", maxTextLength), nil)
	}
	if len(content.MediaURLs) > maxImages {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed,
			fmt.Sprintf("Tối đa %d hình ảnh cho một bài viết", maxImages), nil)
	}
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) == 0 {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Bài viết phải có nội dung hoặc media", nil)
	}
	return nil
}

// Publish tạo record app.bsky.feed.post thay mặt người dùng.
// Media không phải hình ảnh hoặc upload lỗi bị bỏ qua kèm cảnh báo.
func (a *Adapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	accessToken, err := a.connections.GetValidAccessToken(ctx, ownerID, a.Name())
	if err != nil {
		return nil, err
	}

	conn, err := a.connections.GetConnection(ctx, ownerID, a.Name())
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrNotConnected, "Người dùng chưa kết nối nền tảng này", err)
	}

	client := &xrpc.Client{
		Host: a.pdsHost,
		Auth: &xrpc.AuthInfo{
			AccessJwt: accessToken,
			Did:       conn.PlatformUserID,
			Handle:    conn.PlatformUsername,
		},
	}

	var warnings []string
	var images []*appbsky.EmbedImages_Image
	for _, mediaURL := range content.MediaURLs {
		media, err := platforms.FetchMedia(ctx, mediaURL)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: %v", mediaURL, err))
			continue
		}
		if !media.IsImage() {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: Bluesky chỉ nhận hình ảnh", mediaURL))
			continue
		}

		resp, err := comatproto.RepoUploadBlob(ctx, client, bytes.NewReader(media.Data))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: upload thất bại", mediaURL))
			continue
		}
		images = append(images, &appbsky.EmbedImages_Image{
			Alt:   "",
			Image: resp.Blob,
		})
	}

	// Bài chỉ có media mà không upload được cái nào thì không còn gì để đăng
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) > 0 && len(images) == 0 {
		return nil, common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Không upload được media nào cho bài viết chỉ có media", nil)
	}

	var embed *appbsky.FeedPost_Embed
	if len(images) > 0 {
		embed = &appbsky.FeedPost_Embed{
			EmbedImages: &appbsky.EmbedImages{Images: images},
		}
	}

	post := &appbsky.FeedPost{
		LexiconTypeID: "app.bsky.feed.post",
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Text:          content.Text,
		Embed:         embed,
	}

	res, err := comatproto.RepoCreateRecord(ctx, client, &comatproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       conn.PlatformUserID,
		Record:     &lexutil.LexiconTypeDecoder{Val: post},
	})
	if err != nil {
		return nil, a.mapError(err)
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"owner_id": ownerID.Hex(),
		"uri":      res.Uri,
	}).Info("🦋 [BLUESKY] Post created")

	return &platforms.PublishResult{
		ExternalID:  res.Uri,
		ExternalURL: webURLFromAtURI(res.Uri, conn.PlatformUsername),
		Warnings:    warnings,
	}, nil
}

// mapError quy lỗi XRPC về mã lỗi chuẩn
func (a *Adapter) mapError(err error) error {
	var xrpcErr *xrpc.Error
	if ok := asXRPCError(err, &xrpcErr); ok {
		switch xrpcErr.StatusCode {
		case 401, 403:
			return common.NewPublishError(a.Name(), common.PublishErrUnauthorized, "Token bị từ chối", err)
		case 429:
			return common.NewPublishError(a.Name(), common.PublishErrRateLimited, "Nền tảng giới hạn tần suất", err)
		case 400:
			return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Nền tảng từ chối nội dung", err)
		}
	}
	return common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Đăng bài lên Bluesky thất bại", err)
}

func asXRPCError(err error, target **xrpc.Error) bool {
	for err != nil {
		if e, ok := err.(*xrpc.Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// webURLFromAtURI chuyển AT URI (at://did/collection/rkey) thành URL xem trên bsky.app
func webURLFromAtURI(atURI, handle string) string {
	parts := strings.Split(strings.TrimPrefix(atURI, "at://"), "/")
	if len(parts) != 3 {
		return ""
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, parts[2])
}
