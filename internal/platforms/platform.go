// Package platforms định nghĩa contract chung cho các adapter đăng bài:
// mỗi nền tảng (feed nội bộ, Mastodon, Bluesky, Telegram, Facebook) implement
// Adapter và đăng ký vào RegistryAdapters lúc khởi động.
package platforms

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"creator_hub/internal/registry"
)

// Tên các nền tảng được hỗ trợ
const (
	PlatformInternal = "internal" // Feed nội bộ của hệ thống
	PlatformMastodon = "mastodon"
	PlatformBluesky  = "bluesky"
	PlatformTelegram = "telegram"
	PlatformFacebook = "facebook"
)

// Content là nội dung bài viết đưa cho adapter đăng
type Content struct {
	PostID    primitive.ObjectID // ID bài viết gốc
	Text      string             // Nội dung văn bản
	MediaURLs []string           // Danh sách URL media, giữ nguyên thứ tự
}

// PublishResult là kết quả đăng bài thành công trên một nền tảng
type PublishResult struct {
	ExternalID  string   // ID bài viết trên nền tảng
	ExternalURL string   // URL bài viết trên nền tảng (nếu có)
	Warnings    []string // Cảnh báo không chặn (ví dụ: media bị bỏ qua)
}

// Adapter là contract đăng bài của một nền tảng.
// Publish trả về *common.PublishError khi thất bại để orchestrator ghi nhận mã lỗi chuẩn.
type Adapter interface {
	// Name trả về tên nền tảng (trùng với khóa đăng ký trong RegistryAdapters)
	Name() string

	// ValidateContent kiểm tra nội dung theo ràng buộc của nền tảng
	// (giới hạn ký tự, số lượng media) trước khi gọi bất kỳ HTTP nào.
	ValidateContent(content Content) error

	// Publish đăng nội dung lên nền tảng thay mặt người dùng ownerID.
	Publish(ctx context.Context, ownerID primitive.ObjectID, content Content) (*PublishResult, error)
}

// TokenSource cấp access token còn hạn cho một nền tảng.
// Connection service implement interface này; adapter chỉ thấy token plaintext
// trong bộ nhớ, không bao giờ chạm tới bản mã hóa trong database.
type TokenSource interface {
	GetValidAccessToken(ctx context.Context, ownerID primitive.ObjectID, platform string) (string, error)
}

// RegistryAdapters chứa các adapter theo tên nền tảng.
// Tập adapter cố định sau khi khởi động, handler và worker chỉ đọc.
var RegistryAdapters = registry.NewRegistry[Adapter]()

// KnownPlatform kiểm tra tên nền tảng có adapter đã đăng ký hay không
func KnownPlatform(name string) bool {
	_, exists := RegistryAdapters.Get(name)
	return exists
}
