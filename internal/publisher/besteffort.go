// Package publisher điều phối việc đăng một bài viết lên nhiều nền tảng.
package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"creator_hub/internal/logger"
)

// besteffortTimeout giới hạn thời gian chạy của một task best-effort
const besteffortTimeout = 30 * time.Second

// Dispatcher chạy các side effect best-effort (ghi streak, cộng điểm thưởng).
// Task thất bại hoặc panic chỉ được log và báo về Sentry, không bao giờ
// lan ngược về caller.
type Dispatcher struct{}

// NewDispatcher tạo mới Dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch chạy một task trên goroutine riêng. Caller không chờ kết quả.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.GetErrorLogger().WithFields(logrus.Fields{
					"task":  name,
					"panic": fmt.Sprintf("%v", r),
				}).Error("💥 [BESTEFFORT] Task panicked")
				sentry.CaptureException(fmt.Errorf("besteffort task %s panicked: %v", name, r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), besteffortTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"task":  name,
				"error": err.Error(),
			}).Warn("⚠️ [BESTEFFORT] Task failed")
			sentry.CaptureException(fmt.Errorf("besteffort task %s failed: %w", name, err))
		}
	}()
}
