package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	postsvc "creator_hub/internal/api/post/service"
	"creator_hub/internal/global"
	"creator_hub/internal/publisher"
	"creator_hub/internal/worker"
)

// InitWorker khởi tạo và chạy nền worker quét bài viết đã lên lịch.
func InitWorker(ctx context.Context) {
	postService, err := postsvc.NewPostService()
	if err != nil {
		logrus.Fatalf("Failed to create post service for worker: %v", err)
	}

	orchestrator := publisher.NewOrchestrator(postService, publisher.DefaultAdapterLookup)

	cfg := global.MongoDB_ServerConfig
	sweepWorker := worker.NewScheduledPublishWorker(
		postService,
		orchestrator,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second,
		int64(cfg.SweepBatchSize),
	)

	go sweepWorker.Start(ctx)
	logrus.Info("Started scheduled publish worker")
}
