package common

import (
	"errors"
	"fmt"
)

// PublishErrorCode là mã lỗi chuẩn hóa khi đăng bài lên một nền tảng.
// Mọi adapter phải map lỗi của nền tảng về một trong các mã này.
type PublishErrorCode string

const (
	PublishErrNotConnected       PublishErrorCode = "not_connected"        // Chưa kết nối nền tảng
	PublishErrTokenRefreshFailed PublishErrorCode = "token_refresh_failed" // Làm mới token thất bại
	PublishErrValidationFailed   PublishErrorCode = "validation_failed"    // Nội dung không đạt ràng buộc của nền tảng
	PublishErrDuplicateContent   PublishErrorCode = "duplicate_content"    // Nền tảng từ chối vì nội dung trùng lặp
	PublishErrRateLimited        PublishErrorCode = "rate_limited"         // Nền tảng giới hạn tần suất
	PublishErrUnauthorized       PublishErrorCode = "unauthorized"         // Token bị thu hồi / không còn quyền
	PublishErrUnavailable        PublishErrorCode = "platform_unavailable" // Nền tảng lỗi hoặc không phản hồi
)

// PublishError là lỗi đăng bài gắn với một nền tảng cụ thể.
// Retryable được suy ra từ mã lỗi: rate_limited và platform_unavailable có thể thử lại.
type PublishError struct {
	Platform string           // Tên nền tảng (mastodon, bluesky, ...)
	Code     PublishErrorCode // Mã lỗi chuẩn hóa
	Message  string           // Mô tả chi tiết cho log / response
	Err      error            // Lỗi gốc từ nền tảng (nếu có)
}

// Error trả về chuỗi mô tả lỗi
func (e *PublishError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Platform, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Platform, e.Code)
}

// Unwrap trả về lỗi gốc (hỗ trợ errors.Is / errors.As)
func (e *PublishError) Unwrap() error {
	return e.Err
}

// Retryable cho biết lỗi có thể thử lại ở lần đăng sau hay không
func (e *PublishError) Retryable() bool {
	return e.Code == PublishErrRateLimited || e.Code == PublishErrUnavailable
}

// NewPublishError tạo PublishError mới cho một nền tảng
func NewPublishError(platform string, code PublishErrorCode, message string, err error) *PublishError {
	return &PublishError{
		Platform: platform,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}

// AsPublishError trích PublishError từ một error bất kỳ.
// Lỗi không phải PublishError được quy về platform_unavailable để mọi outcome luôn có mã chuẩn.
func AsPublishError(platform string, err error) *PublishError {
	if err == nil {
		return nil
	}
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr
	}
	return NewPublishError(platform, PublishErrUnavailable, err.Error(), err)
}
