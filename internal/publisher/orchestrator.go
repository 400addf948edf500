package publisher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/common"
	"creator_hub/internal/logger"
	"creator_hub/internal/platforms"
)

// PostStore là phần của post service mà orchestrator cần
type PostStore interface {
	GetForPublish(ctx context.Context, postID primitive.ObjectID) (postmodels.Post, error)
	MarkPublishing(ctx context.Context, postID primitive.ObjectID) error
	ApplyPublishResult(ctx context.Context, postID primitive.ObjectID, status string, publishedAt *int64, outcomes []postmodels.PlatformOutcome) error
}

// AdapterLookup tra cứu adapter theo tên nền tảng
type AdapterLookup func(name string) (platforms.Adapter, bool)

// Result là kết quả một lượt đăng bài
type Result struct {
	Status         string              // Trạng thái tổng hợp sau lượt đăng
	PublishedAt    *int64              // Thời điểm đăng, chỉ có khi ít nhất một nền tảng thành công
	PlatformErrors map[string]string   // Mã lỗi theo nền tảng thất bại
	Warnings       map[string][]string // Cảnh báo không chặn theo nền tảng
}

// Orchestrator chạy một lượt đăng: fan-out song song tới mọi nền tảng đích,
// chờ tất cả hoàn tất rồi quy kết quả về trạng thái tổng hợp.
type Orchestrator struct {
	store  PostStore
	lookup AdapterLookup
}

// NewOrchestrator tạo mới Orchestrator
func NewOrchestrator(store PostStore, lookup AdapterLookup) *Orchestrator {
	return &Orchestrator{
		store:  store,
		lookup: lookup,
	}
}

// DefaultAdapterLookup tra cứu adapter trong RegistryAdapters
func DefaultAdapterLookup(name string) (platforms.Adapter, bool) {
	return platforms.RegistryAdapters.Get(name)
}

// PublishNow chạy một lượt đăng cho bài viết. Bài đã published bị từ chối
// trước khi gọi bất kỳ adapter nào. Lỗi trả về khi mọi nền tảng đều thất bại.
func (o *Orchestrator) PublishNow(ctx context.Context, postID primitive.ObjectID) (*Result, error) {
	post, err := o.store.GetForPublish(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Các điều kiện chặn trước fan-out
	if post.Status == postmodels.PostStatusPublished {
		return nil, common.ErrAlreadyPublished
	}
	if len(post.Platforms) == 0 {
		return nil, common.ErrNoTargetPlatform
	}

	if err := o.store.MarkPublishing(ctx, post.ID); err != nil {
		return nil, err
	}

	content := platforms.Content{
		PostID:    post.ID,
		Text:      post.Content,
		MediaURLs: post.MediaURLs,
	}

	// Fan-out song song, mỗi nền tảng một goroutine, chờ tất cả hoàn tất
	outcomes := make([]postmodels.PlatformOutcome, len(post.Platforms))
	warnings := make(map[string][]string)
	var warningsMu sync.Mutex
	var wg sync.WaitGroup

	for i, platform := range post.Platforms {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()

			outcome, warns := o.publishToPlatform(ctx, name, post.OwnerID, content)
			outcomes[idx] = outcome
			if len(warns) > 0 {
				warningsMu.Lock()
				warnings[name] = warns
				warningsMu.Unlock()
			}
		}(i, platform)
	}
	wg.Wait()

	agg := Reduce(outcomes, time.Now().UnixMilli())

	if err := o.store.ApplyPublishResult(ctx, post.ID, agg.Status, agg.PublishedAt, outcomes); err != nil {
		return nil, err
	}

	result := &Result{
		Status:         agg.Status,
		PublishedAt:    agg.PublishedAt,
		PlatformErrors: agg.PlatformErrors,
		Warnings:       warnings,
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"post_id":   post.ID.Hex(),
		"status":    agg.Status,
		"platforms": len(post.Platforms),
		"failed":    len(agg.PlatformErrors),
	}).Info("📤 [PUBLISH] Publish pass completed")

	// Mọi nền tảng đều thất bại: trả về lỗi tổng hợp liệt kê từng nền tảng
	if agg.Status == postmodels.PostStatusFailed {
		return result, common.NewError(
			common.ErrCodePublish,
			"Đăng thất bại trên tất cả nền tảng: "+joinPlatformErrors(agg.PlatformErrors),
			common.StatusBadGateway,
			agg.PlatformErrors,
		)
	}

	return result, nil
}

// publishToPlatform đăng lên một nền tảng, bắt cả panic của adapter
// để một nền tảng hỏng không phá kết quả của các nền tảng khác.
func (o *Orchestrator) publishToPlatform(ctx context.Context, platform string, ownerID primitive.ObjectID, content platforms.Content) (outcome postmodels.PlatformOutcome, warns []string) {
	outcome = postmodels.PlatformOutcome{
		Platform: platform,
		Status:   postmodels.OutcomeStatusFailed,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.GetErrorLogger().WithFields(logrus.Fields{
				"platform": platform,
				"panic":    fmt.Sprintf("%v", r),
			}).Error("💥 [PUBLISH] Adapter panicked")
			outcome.Status = postmodels.OutcomeStatusFailed
			outcome.ErrorCode = string(common.PublishErrUnavailable)
			outcome.ErrorDetail = fmt.Sprintf("adapter panicked: %v", r)
		}
	}()

	adapter, exists := o.lookup(platform)
	if !exists {
		outcome.ErrorCode = string(common.PublishErrValidationFailed)
		outcome.ErrorDetail = "Nền tảng không được hỗ trợ"
		return outcome, nil
	}

	if err := adapter.ValidateContent(content); err != nil {
		pubErr := common.AsPublishError(platform, err)
		outcome.ErrorCode = string(pubErr.Code)
		outcome.ErrorDetail = pubErr.Message
		return outcome, nil
	}

	result, err := adapter.Publish(ctx, ownerID, content)
	if err != nil {
		pubErr := common.AsPublishError(platform, err)
		outcome.ErrorCode = string(pubErr.Code)
		outcome.ErrorDetail = pubErr.Message
		if pubErr.Message == "" && pubErr.Err != nil {
			outcome.ErrorDetail = pubErr.Err.Error()
		}
		return outcome, nil
	}

	outcome.Status = postmodels.OutcomeStatusPublished
	outcome.ExternalID = result.ExternalID
	outcome.ExternalURL = result.ExternalURL
	return outcome, result.Warnings
}

// Aggregate là trạng thái tổng hợp quy từ các outcome của một lượt đăng
type Aggregate struct {
	Status         string            // published nếu ít nhất một nền tảng thành công, failed nếu tất cả thất bại
	PublishedAt    *int64            // now nếu ít nhất một nền tảng thành công
	PlatformErrors map[string]string // Mã lỗi theo nền tảng thất bại
}

// Reduce quy danh sách outcome về trạng thái tổng hợp. Hàm thuần túy, không side effect.
func Reduce(outcomes []postmodels.PlatformOutcome, now int64) Aggregate {
	agg := Aggregate{
		Status:         postmodels.PostStatusFailed,
		PlatformErrors: make(map[string]string),
	}

	anySuccess := false
	for _, outcome := range outcomes {
		switch outcome.Status {
		case postmodels.OutcomeStatusPublished:
			anySuccess = true
		case postmodels.OutcomeStatusFailed:
			agg.PlatformErrors[outcome.Platform] = outcome.ErrorCode
		}
	}

	if anySuccess {
		agg.Status = postmodels.PostStatusPublished
		agg.PublishedAt = &now
	}

	return agg
}

// joinPlatformErrors nối danh sách lỗi theo nền tảng thành chuỗi ổn định
func joinPlatformErrors(platformErrors map[string]string) string {
	parts := make([]string, 0, len(platformErrors))
	for platform, code := range platformErrors {
		parts = append(parts, platform+"="+code)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
