// Package telegram là adapter đăng bài lên kênh/nhóm Telegram qua Bot API.
// Khác các nền tảng OAuth, Telegram dùng bot token chung của hệ thống;
// kết nối của người dùng chỉ lưu chat ID đích.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/ratelimit"

	connectionmodels "creator_hub/internal/api/connection/models"
	"creator_hub/internal/common"
	"creator_hub/internal/logger"
	"creator_hub/internal/platforms"
)

// Giới hạn nội dung của Telegram Bot API
const (
	maxTextLength    = 4096 // Số ký tự tối đa của sendMessage
	maxCaptionLength = 1024 // Số ký tự tối đa của caption sendPhoto
	maxPhotos        = 10   // Số ảnh tối đa cho một bài viết
)

const apiBaseURL = "https://api.telegram.org"

// ConnectionReader tra cứu kết nối để lấy chat ID đích
type ConnectionReader interface {
	GetConnection(ctx context.Context, ownerID primitive.ObjectID, platform string) (connectionmodels.PlatformConnection, error)
}

// Adapter đăng bài lên Telegram
type Adapter struct {
	botToken    string
	connections ConnectionReader
	httpClient  *http.Client
	limiter     ratelimit.Limiter // Bot API giới hạn ~30 msg/s, giữ 20/s cho an toàn
}

// NewAdapter tạo mới Telegram Adapter
func NewAdapter(botToken string, connections ConnectionReader) *Adapter {
	return &Adapter{
		botToken:    botToken,
		connections: connections,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     ratelimit.New(20),
	}
}

// Name trả về tên nền tảng
func (a *Adapter) Name() string {
	return platforms.PlatformTelegram
}

// ValidateContent kiểm tra giới hạn ký tự và số ảnh của Telegram
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

// apiResponse là envelope chuẩn của Telegram Bot API
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
	Result      json.RawMessage `json:"result"`
}

type messageResult struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"chat"`
}

// Publish gửi bài viết vào chat đã kết nối. Ảnh được gửi bằng sendPhoto theo URL,
// ảnh đầu tiên mang caption; media gửi lỗi bị bỏ qua kèm cảnh báo.
func (a *Adapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	if a.botToken == "" {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Telegram bot chưa được cấu hình", nil)
	}

	conn, err := a.connections.GetConnection(ctx, ownerID, a.Name())
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrNotConnected, "Người dùng chưa kết nối nền tảng này", err)
	}
	chatID := conn.PlatformUserID

	var warnings []string
	var firstMessage *messageResult

	if len(content.MediaURLs) == 0 {
		msg, err := a.sendMessage(ctx, chatID, content.Text)
		if err != nil {
			return nil, err
		}
		firstMessage = msg
	} else {
		// Caption dài quá giới hạn thì gửi văn bản thành message riêng trước
		caption := content.Text
		if utf8.RuneCountInString(caption) > maxCaptionLength {
			msg, err := a.sendMessage(ctx, chatID, content.Text)
			if err != nil {
				return nil, err
			}
			firstMessage = msg
			caption = ""
		}

		for i, mediaURL := range content.MediaURLs {
			photoCaption := ""
			if i == 0 {
				photoCaption = caption
			}
			msg, err := a.sendPhoto(ctx, chatID, mediaURL, photoCaption)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("Bỏ qua media %s: %v", mediaURL, err))
				continue
			}
			if firstMessage == nil {
				firstMessage = msg
			}
		}

		// Không gửi được message nào thì lượt đăng thất bại
		if firstMessage == nil {
			return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không gửi được media nào lên Telegram", nil)
		}
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"owner_id":   ownerID.Hex(),
		"message_id": firstMessage.MessageID,
	}).Info("📱 [TELEGRAM] Message sent")

	return &platforms.PublishResult{
		ExternalID:  fmt.Sprintf("%d", firstMessage.MessageID),
		ExternalURL: messageURL(firstMessage),
		Warnings:    warnings,
	}, nil
}

func (a *Adapter) sendMessage(ctx context.Context, chatID, text string) (*messageResult, error) {
	return a.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
}

func (a *Adapter) sendPhoto(ctx context.Context, chatID, photoURL, caption string) (*messageResult, error) {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"photo":   photoURL,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	return a.call(ctx, "sendPhoto", payload)
}

// call gọi một method của Bot API, chờ limiter trước mỗi request
func (a *Adapter) call(ctx context.Context, method string, payload map[string]interface{}) (*messageResult, error) {
	a.limiter.Take()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không thể tạo payload", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", apiBaseURL, a.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không thể tạo request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
			"method": method,
		}).Error("📱 [TELEGRAM] Lỗi khi gọi Telegram API")
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Telegram API không phản hồi", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không đọc được phản hồi từ Telegram", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Phản hồi từ Telegram không hợp lệ", err)
	}

	if !envelope.OK {
		logger.GetErrorLogger().WithFields(logrus.Fields{
			"method":      method,
			"status_code": resp.StatusCode,
			"description": envelope.Description,
		}).Error("📱 [TELEGRAM] Telegram API trả về lỗi")
		return nil, a.mapError(envelope.ErrorCode, envelope.Description)
	}

	var msg messageResult
	if err := json.Unmarshal(envelope.Result, &msg); err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Phản hồi từ Telegram không hợp lệ", err)
	}
	return &msg, nil
}

// mapError quy mã lỗi của Bot API về mã lỗi chuẩn
func (a *Adapter) mapError(code int, description string) error {
	detail := fmt.Sprintf("telegram API error %d: %s", code, description)
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.NewPublishError(a.Name(), common.PublishErrUnauthorized, detail, nil)
	case http.StatusTooManyRequests:
		return common.NewPublishError(a.Name(), common.PublishErrRateLimited, detail, nil)
	case http.StatusBadRequest:
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, detail, nil)
	default:
		return common.NewPublishError(a.Name(), common.PublishErrUnavailable, detail, nil)
	}
}

// messageURL dựng link t.me cho kênh public, chat riêng tư không có URL
func messageURL(msg *messageResult) string {
	if msg.Chat.Username == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s/%d", msg.Chat.Username, msg.MessageID)
}
