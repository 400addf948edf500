// Package postsvc quản lý vòng đời bài viết đa nền tảng:
// tạo nháp, lên lịch, hủy lịch, truy vấn bài đến hạn và ghi nhận kết quả đăng.
package postsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "creator_hub/internal/api/base/models"
	basesvc "creator_hub/internal/api/base/service"
	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/common"
	"creator_hub/internal/global"
)

// PostService là service quản lý bài viết đa nền tảng
type PostService struct {
	*basesvc.BaseServiceMongoImpl[postmodels.Post]
}

// NewPostService tạo mới PostService
func NewPostService() (*PostService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Posts)
	if !exist {
		return nil, fmt.Errorf("failed to get posts collection: %v", common.ErrNotFound)
	}

	return &PostService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[postmodels.Post](collection),
	}, nil
}

// Create tạo bài viết mới. ScheduledAt (nếu có) phải ở tương lai,
// khi đó bài viết ở trạng thái scheduled, ngược lại là draft.
func (s *PostService) Create(ctx context.Context, ownerID primitive.ObjectID, content string, mediaURLs []string, platforms []string, scheduledAt *int64) (postmodels.Post, error) {
	var zero postmodels.Post

	if len(platforms) == 0 {
		return zero, common.ErrNoTargetPlatform
	}

	status := postmodels.PostStatusDraft
	if scheduledAt != nil {
		if *scheduledAt <= time.Now().UnixMilli() {
			return zero, common.NewError(
				common.ErrCodeValidationInput,
				"Thời gian lên lịch phải ở tương lai",
				common.StatusBadRequest,
				nil,
			)
		}
		status = postmodels.PostStatusScheduled
	}

	// Mỗi nền tảng đích có một outcome khởi tạo ở trạng thái draft
	outcomes := make([]postmodels.PlatformOutcome, 0, len(platforms))
	for _, platform := range platforms {
		outcomes = append(outcomes, postmodels.PlatformOutcome{
			Platform: platform,
			Status:   postmodels.OutcomeStatusDraft,
		})
	}

	post := postmodels.Post{
		OwnerID:     ownerID,
		Content:     content,
		MediaURLs:   mediaURLs,
		Platforms:   platforms,
		Status:      status,
		Outcomes:    outcomes,
		ScheduledAt: scheduledAt,
	}

	return s.InsertOne(ctx, post)
}

// GetOwned lấy bài viết theo ID, kiểm tra quyền sở hữu
func (s *PostService) GetOwned(ctx context.Context, ownerID, postID primitive.ObjectID) (postmodels.Post, error) {
	return s.FindOne(ctx, bson.M{"_id": postID, "ownerId": ownerID}, nil)
}

// Schedule đặt hoặc thay thế lịch đăng cho bài viết.
// Chỉ áp dụng cho bài chưa đăng (draft, scheduled, failed, cancelled).
func (s *PostService) Schedule(ctx context.Context, ownerID, postID primitive.ObjectID, scheduledAt int64) (postmodels.Post, error) {
	var zero postmodels.Post

	if scheduledAt <= time.Now().UnixMilli() {
		return zero, common.NewError(
			common.ErrCodeValidationInput,
			"Thời gian lên lịch phải ở tương lai",
			common.StatusBadRequest,
			nil,
		)
	}

	post, err := s.GetOwned(ctx, ownerID, postID)
	if err != nil {
		return zero, err
	}

	switch post.Status {
	case postmodels.PostStatusPublished:
		return zero, common.ErrAlreadyPublished
	case postmodels.PostStatusPublishing:
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Bài viết đang trong một lượt đăng, không thể lên lịch",
			common.StatusConflict,
			nil,
		)
	}

	return s.UpdateById(ctx, post.ID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":      postmodels.PostStatusScheduled,
			"scheduledAt": scheduledAt,
		},
	})
}

// Cancel hủy lịch đăng của bài viết. Chỉ áp dụng cho bài đang ở trạng thái scheduled.
func (s *PostService) Cancel(ctx context.Context, ownerID, postID primitive.ObjectID) (postmodels.Post, error) {
	var zero postmodels.Post

	post, err := s.GetOwned(ctx, ownerID, postID)
	if err != nil {
		return zero, err
	}

	if post.Status != postmodels.PostStatusScheduled {
		return zero, common.NewError(
			common.ErrCodeBusinessState,
			"Chỉ có thể hủy bài viết đang ở trạng thái scheduled",
			common.StatusConflict,
			nil,
		)
	}

	return s.UpdateById(ctx, post.ID, &basesvc.UpdateData{
		Set:   map[string]interface{}{"status": postmodels.PostStatusCancelled},
		Unset: map[string]interface{}{"scheduledAt": ""},
	})
}

// Delete xóa bài viết, kiểm tra quyền sở hữu
func (s *PostService) Delete(ctx context.Context, ownerID, postID primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"_id": postID, "ownerId": ownerID})
}

// List liệt kê bài viết của một người dùng với filter trạng thái/nền tảng và phân trang
func (s *PostService) List(ctx context.Context, ownerID primitive.ObjectID, status, platform string, page, limit int64) (*basemodels.PaginateResult[postmodels.Post], error) {
	filter := bson.M{"ownerId": ownerID}
	if status != "" {
		filter["status"] = status
	}
	if platform != "" {
		filter["platforms"] = platform
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// FindDuePosts tìm các bài viết đã đến hạn đăng: status=scheduled và scheduledAt <= now
func (s *PostService) FindDuePosts(ctx context.Context, now int64, limit int64) ([]postmodels.Post, error) {
	filter := bson.M{
		"status":      postmodels.PostStatusScheduled,
		"scheduledAt": bson.M{"$lte": now},
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	return s.Find(ctx, filter, opts)
}

// GetForPublish lấy bài viết chuẩn bị cho một lượt đăng (không kiểm tra quyền sở hữu,
// dùng bởi orchestrator và sweep worker)
func (s *PostService) GetForPublish(ctx context.Context, postID primitive.ObjectID) (postmodels.Post, error) {
	return s.FindOneById(ctx, postID)
}

// MarkPublishing chuyển bài viết sang trạng thái publishing trước khi fan-out
func (s *PostService) MarkPublishing(ctx context.Context, postID primitive.ObjectID) error {
	_, err := s.UpdateById(ctx, postID, &basesvc.UpdateData{
		Set: map[string]interface{}{"status": postmodels.PostStatusPublishing},
	})
	return err
}

// ApplyPublishResult ghi kết quả một lượt đăng: trạng thái tổng hợp, toàn bộ danh sách
// outcome và publishedAt (chỉ set lần đầu có ít nhất một nền tảng thành công).
func (s *PostService) ApplyPublishResult(ctx context.Context, postID primitive.ObjectID, status string, publishedAt *int64, outcomes []postmodels.PlatformOutcome) error {
	set := map[string]interface{}{
		"status":   status,
		"outcomes": outcomes,
	}
	if publishedAt != nil {
		set["publishedAt"] = *publishedAt
	}

	_, err := s.UpdateById(ctx, postID, &basesvc.UpdateData{Set: set})
	return err
}
