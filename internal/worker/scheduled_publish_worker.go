package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/logger"
	"creator_hub/internal/publisher"
)

// DuePostSource đọc các bài viết đã đến hạn đăng
type DuePostSource interface {
	FindDuePosts(ctx context.Context, now int64, limit int64) ([]postmodels.Post, error)
}

// PublishRunner chạy một lượt đăng cho một bài viết
type PublishRunner interface {
	PublishNow(ctx context.Context, postID primitive.ObjectID) (*publisher.Result, error)
}

// ScheduledPublishWorker quét định kỳ các bài viết đã lên lịch và đến hạn rồi đăng chúng.
// Mỗi lần quét xử lý tối đa batchSize bài, tuần tự; một bài lỗi không chặn các bài còn lại
// (lượt đăng thất bại đưa bài về trạng thái failed nên lần quét sau không nhặt lại).
type ScheduledPublishWorker struct {
	posts     DuePostSource
	runner    PublishRunner
	interval  time.Duration // Khoảng thời gian giữa các lần quét
	batchSize int64         // Số bài viết tối đa mỗi lần quét
}

// NewScheduledPublishWorker tạo mới ScheduledPublishWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần quét (mặc định: 60 giây)
//   - batchSize: Số bài viết tối đa mỗi lần quét (mặc định: 50)
func NewScheduledPublishWorker(posts DuePostSource, runner PublishRunner, interval time.Duration, batchSize int64) *ScheduledPublishWorker {
	if interval < time.Second {
		interval = 60 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ScheduledPublishWorker{
		posts:     posts,
		runner:    runner,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start chạy worker trong vòng lặp: mỗi interval quét một batch bài đến hạn và đăng tuần tự.
func (w *ScheduledPublishWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"batchSize": w.batchSize,
	}).Info("⏰ [SCHEDULED_PUBLISH] Starting Scheduled Publish Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("⏰ [SCHEDULED_PUBLISH] Scheduled Publish Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep chạy một lần quét, bắt panic để worker sống qua các chu kỳ
func (w *ScheduledPublishWorker) sweep(ctx context.Context) {
	log := logger.GetAppLogger()

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(map[string]interface{}{
				"panic": r,
			}).Error("⏰ [SCHEDULED_PUBLISH] Panic khi quét bài đến hạn, sẽ tiếp tục ở lần quét tiếp theo")
			sentry.CaptureException(fmt.Errorf("scheduled publish sweep panicked: %v", r))
		}
	}()

	duePosts, err := w.posts.FindDuePosts(ctx, time.Now().UnixMilli(), w.batchSize)
	if err != nil {
		log.WithError(err).Error("⏰ [SCHEDULED_PUBLISH] Lỗi lấy danh sách bài đến hạn")
		return
	}
	if len(duePosts) == 0 {
		return
	}

	published := 0
	for _, post := range duePosts {
		if _, err := w.runner.PublishNow(ctx, post.ID); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"postId":  post.ID.Hex(),
				"ownerId": post.OwnerID.Hex(),
			}).Warn("⏰ [SCHEDULED_PUBLISH] Lượt đăng thất bại, tiếp tục bài tiếp theo")
			sentry.CaptureException(err)
			continue
		}
		published++
	}

	log.WithFields(map[string]interface{}{
		"published": published,
		"total":     len(duePosts),
	}).Info("⏰ [SCHEDULED_PUBLISH] Đã xử lý batch bài đến hạn")
}
