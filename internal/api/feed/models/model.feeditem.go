// Package models - FeedItem thuộc domain feed.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedItem là một bài viết trên feed nội bộ, được ghi bởi adapter internal
// khi bài viết được đăng lên nền tảng "internal".
type FeedItem struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của feed item

	OwnerID primitive.ObjectID `json:"ownerId" bson:"ownerId" index:"single:1"` // Tác giả bài viết
	PostID  primitive.ObjectID `json:"postId" bson:"postId" index:"single:1"`   // Bài viết gốc

	Content   string   `json:"content" bson:"content"`                         // Nội dung văn bản
	MediaURLs []string `json:"mediaUrls,omitempty" bson:"mediaUrls,omitempty"` // Danh sách URL media

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1,order:-1"` // Thời gian đăng
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`                           // Thời gian cập nhật
}
