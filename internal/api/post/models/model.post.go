// Package models - Post, PlatformOutcome thuộc domain post.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các trạng thái của bài viết
const (
	PostStatusDraft      = "draft"      // Bản nháp, chưa đăng
	PostStatusScheduled  = "scheduled"  // Đã lên lịch đăng
	PostStatusPublishing = "publishing" // Đang trong một lượt đăng
	PostStatusPublished  = "published"  // Đã đăng thành công ít nhất một nền tảng (trạng thái cuối)
	PostStatusFailed     = "failed"     // Lượt đăng gần nhất thất bại trên mọi nền tảng
	PostStatusCancelled  = "cancelled"  // Lịch đăng đã bị hủy trước khi chạy
)

// Các trạng thái outcome trên từng nền tảng
const (
	OutcomeStatusDraft      = "draft"
	OutcomeStatusPublishing = "publishing"
	OutcomeStatusPublished  = "published"
	OutcomeStatusFailed     = "failed"
)

// PlatformOutcome ghi nhận kết quả đăng bài trên một nền tảng.
// Mỗi lượt đăng ghi đè toàn bộ danh sách outcome, không giữ lịch sử từng dòng.
type PlatformOutcome struct {
	Platform    string `json:"platform" bson:"platform"`                           // Tên nền tảng
	Status      string `json:"status" bson:"status"`                               // Trạng thái: draft, publishing, published, failed
	ExternalID  string `json:"externalId,omitempty" bson:"externalId,omitempty"`   // ID bài viết trên nền tảng
	ExternalURL string `json:"externalUrl,omitempty" bson:"externalUrl,omitempty"` // URL bài viết trên nền tảng
	ErrorCode   string `json:"errorCode,omitempty" bson:"errorCode,omitempty"`     // Mã lỗi ổn định khi thất bại
	ErrorDetail string `json:"errorDetail,omitempty" bson:"errorDetail,omitempty"` // Chi tiết lỗi khi thất bại
}

// Post đại diện cho một bài viết đăng đa nền tảng
type Post struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của bài viết

	// ===== OWNERSHIP =====
	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId" index:"single:1;compound:ownerId_status"` // Người sở hữu bài viết

	// ===== CONTENT =====
	Content   string   `json:"content" bson:"content"`                         // Nội dung văn bản
	MediaURLs []string `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"` // Danh sách URL media, giữ nguyên thứ tự

	// ===== TARGETS =====
	Platforms []string `json:"platforms" bson:"platforms"` // Các nền tảng đích, không rỗng

	// ===== STATUS =====
	Status   string            `json:"status" bson:"status" index:"single:1;compound:ownerId_status"` // Trạng thái tổng hợp
	Outcomes []PlatformOutcome `json:"outcomes,omitempty" bson:"outcomes,omitempty"`                  // Kết quả từng nền tảng của lượt đăng gần nhất

	// ===== SCHEDULING =====
	ScheduledAt *int64 `json:"scheduledAt,omitempty" bson:"scheduledAt,omitempty" index:"single:1"` // Thời gian lên lịch đăng (unix millis)
	PublishedAt *int64 `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`                  // Thời gian đăng thành công lần đầu (unix millis)

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
