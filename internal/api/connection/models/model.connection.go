// Package models - PlatformConnection thuộc domain connection.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlatformConnection đại diện cho liên kết tài khoản của người dùng với một nền tảng.
// Token chỉ được lưu dưới dạng đã mã hóa (vault), không bao giờ ở dạng plaintext.
type PlatformConnection struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của kết nối

	// ===== OWNERSHIP =====
	OwnerID  primitive.ObjectID `json:"ownerId" bson:"ownerId" index:"single:1;compound:ownerId_platform_unique"` // Người sở hữu kết nối
	Platform string             `json:"platform" bson:"platform" index:"compound:ownerId_platform_unique"`        // Tên nền tảng

	// ===== TOKEN (đã mã hóa) =====
	AccessTokenEnc  string `json:"-" bson:"accessTokenEnc"`                              // Access token đã mã hóa
	RefreshTokenEnc string `json:"-" bson:"refreshTokenEnc,omitempty"`                   // Refresh token đã mã hóa (tùy nền tảng)
	TokenExpiry     *int64 `json:"tokenExpiry,omitempty" bson:"tokenExpiry,omitempty"`   // Thời điểm token hết hạn (unix millis, tùy nền tảng)
	Scopes          string `json:"scopes,omitempty" bson:"scopes,omitempty"`             // Các scope được cấp

	// ===== PLATFORM PROFILE =====
	PlatformUserID   string `json:"platformUserId,omitempty" bson:"platformUserId,omitempty"`     // ID tài khoản trên nền tảng (Telegram: chat ID)
	PlatformUsername string `json:"platformUsername,omitempty" bson:"platformUsername,omitempty"` // Username trên nền tảng
	DisplayName      string `json:"displayName,omitempty" bson:"displayName,omitempty"`           // Tên hiển thị
	AvatarURL        string `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`               // URL avatar

	// ===== TIMESTAMPS =====
	ConnectedAt int64 `json:"connectedAt" bson:"connectedAt"` // Thời gian kết nối lần đầu
	CreatedAt   int64 `json:"createdAt" bson:"createdAt"`     // Thời gian tạo
	UpdatedAt   int64 `json:"updatedAt" bson:"updatedAt"`     // Thời gian cập nhật
}
