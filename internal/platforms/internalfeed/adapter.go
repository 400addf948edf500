// Package internalfeed là adapter đăng bài lên feed nội bộ của hệ thống.
// Sau khi ghi feed thành công, adapter dispatch hai side effect best-effort:
// ghi nhận chuỗi ngày hoạt động và cộng điểm thưởng.
package internalfeed

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	feedmodels "creator_hub/internal/api/feed/models"
	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

// FeedWriter ghi một bài viết lên feed nội bộ
type FeedWriter interface {
	Publish(ctx context.Context, ownerID, postID primitive.ObjectID, content string, mediaURLs []string) (feedmodels.FeedItem, error)
}

// StreakToucher ghi nhận hoạt động hôm nay của người dùng
type StreakToucher interface {
	Touch(ctx context.Context, ownerID primitive.ObjectID) error
}

// RewardsCreditor cộng điểm thưởng cho một bài viết đã đăng
type RewardsCreditor interface {
	CreditForPost(ctx context.Context, ownerID, postID primitive.ObjectID, content string) error
}

// Dispatcher chạy task best-effort không chặn caller
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}

// Adapter đăng bài lên feed nội bộ
type Adapter struct {
	feed       FeedWriter
	streak     StreakToucher
	rewards    RewardsCreditor
	dispatcher Dispatcher
}

// NewAdapter tạo mới internal feed Adapter
func NewAdapter(feed FeedWriter, streak StreakToucher, rewards RewardsCreditor, dispatcher Dispatcher) *Adapter {
	return &Adapter{
		feed:       feed,
		streak:     streak,
		rewards:    rewards,
		dispatcher: dispatcher,
	}
}

// Name trả về tên nền tảng
func (a *Adapter) Name() string {
	return platforms.PlatformInternal
}

// ValidateContent kiểm tra bài viết có nội dung (văn bản hoặc media)
func (a *Adapter) ValidateContent(content platforms.Content) error {
	if strings.TrimSpace(content.Text) == "" && len(content.MediaURLs) == 0 {
		return common.NewPublishError(a.Name(), common.PublishErrValidationFailed, "Bài viết phải có nội dung hoặc media", nil)
	}
	return nil
}

// Publish ghi bài viết lên feed nội bộ rồi dispatch streak và rewards.
// Thất bại của hai side effect không làm thất bại lượt đăng.
func (a *Adapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	item, err := a.feed.Publish(ctx, ownerID, content.PostID, content.Text, content.MediaURLs)
	if err != nil {
		return nil, common.NewPublishError(a.Name(), common.PublishErrUnavailable, "Không thể ghi bài viết lên feed", err)
	}

	postID := content.PostID
	text := content.Text
	a.dispatcher.Dispatch("streak.touch", func(ctx context.Context) error {
		return a.streak.Touch(ctx, ownerID)
	})
	a.dispatcher.Dispatch("rewards.credit", func(ctx context.Context) error {
		return a.rewards.CreditForPost(ctx, ownerID, postID, text)
	})

	return &platforms.PublishResult{
		ExternalID:  item.ID.Hex(),
		ExternalURL: "/feed/" + item.ID.Hex(),
	}, nil
}
