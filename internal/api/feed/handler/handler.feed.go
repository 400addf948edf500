package feedhdl

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basehdl "creator_hub/internal/api/base/handler"
	feedsvc "creator_hub/internal/api/feed/service"
	"creator_hub/internal/streak"
)

// FeedHandler xử lý các yêu cầu đọc feed nội bộ và chuỗi ngày hoạt động
type FeedHandler struct {
	basehdl.BaseHandler
	FeedService   *feedsvc.FeedService
	StreakService *streak.Service
}

// NewFeedHandler khởi tạo FeedHandler mới
func NewFeedHandler() (*FeedHandler, error) {
	feedService, err := feedsvc.NewFeedService()
	if err != nil {
		return nil, fmt.Errorf("failed to create feed service: %v", err)
	}
	streakService, err := streak.NewService()
	if err != nil {
		return nil, fmt.Errorf("failed to create streak service: %v", err)
	}
	return &FeedHandler{
		FeedService:   feedService,
		StreakService: streakService,
	}, nil
}

// HandleList liệt kê feed của người dùng, mới nhất trước, có phân trang
func (h *FeedHandler) HandleList(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	page, limit := h.ParsePagination(c)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	data, err := h.FeedService.FindWithPagination(context.Background(), bson.M{"ownerId": ownerID}, page, limit, opts)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleStreak trả về chuỗi ngày hoạt động hiện tại của người dùng
func (h *FeedHandler) HandleStreak(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	current, err := h.StreakService.Get(context.Background(), ownerID)
	h.HandleResponse(c, fiber.Map{"currentStreak": current}, err)
	return nil
}
