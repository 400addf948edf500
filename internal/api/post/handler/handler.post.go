package posthdl

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "creator_hub/internal/api/base/handler"
	postdto "creator_hub/internal/api/post/dto"
	postsvc "creator_hub/internal/api/post/service"
	"creator_hub/internal/publisher"
)

// PostHandler xử lý các yêu cầu liên quan đến bài viết đa nền tảng
type PostHandler struct {
	basehdl.BaseHandler
	PostService  *postsvc.PostService
	Orchestrator *publisher.Orchestrator
}

// NewPostHandler khởi tạo PostHandler mới
func NewPostHandler() (*PostHandler, error) {
	service, err := postsvc.NewPostService()
	if err != nil {
		return nil, fmt.Errorf("failed to create post service: %v", err)
	}
	return &PostHandler{
		PostService:  service,
		Orchestrator: publisher.NewOrchestrator(service, publisher.DefaultAdapterLookup),
	}, nil
}

// HandleCreate tạo bài viết mới (draft hoặc scheduled nếu có scheduledAt)
func (h *PostHandler) HandleCreate(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	input := new(postdto.PostCreateInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	data, err := h.PostService.Create(context.Background(), ownerID, input.Content, input.MediaURLs, input.Platforms, input.ScheduledAt)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleGet lấy một bài viết theo ID
func (h *PostHandler) HandleGet(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	postID, err := h.GetIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	data, err := h.PostService.GetOwned(context.Background(), ownerID, postID)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleList liệt kê bài viết của người dùng với filter status/platform và phân trang
func (h *PostHandler) HandleList(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	page, limit := h.ParsePagination(c)
	status := c.Query("status")
	platform := c.Query("platform")

	data, err := h.PostService.List(context.Background(), ownerID, status, platform, page, limit)
	h.HandleResponse(c, data, err)
	return nil
}

// HandlePublish chạy một lượt đăng ngay cho bài viết
func (h *PostHandler) HandlePublish(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	postID, err := h.GetIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	// Kiểm tra quyền sở hữu trước khi đưa cho orchestrator
	post, err := h.PostService.GetOwned(context.Background(), ownerID, postID)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	result, err := h.Orchestrator.PublishNow(context.Background(), post.ID)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	h.HandleResponse(c, postdto.PublishResponse{
		PostID:         post.ID.Hex(),
		Status:         result.Status,
		PublishedAt:    result.PublishedAt,
		PlatformErrors: result.PlatformErrors,
		Warnings:       result.Warnings,
	}, nil)
	return nil
}

// HandleSchedule đặt hoặc thay thế lịch đăng cho bài viết
func (h *PostHandler) HandleSchedule(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	postID, err := h.GetIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	input := new(postdto.PostScheduleInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	data, err := h.PostService.Schedule(context.Background(), ownerID, postID, input.ScheduledAt)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleCancel hủy lịch đăng của bài viết
func (h *PostHandler) HandleCancel(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	postID, err := h.GetIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	data, err := h.PostService.Cancel(context.Background(), ownerID, postID)
	h.HandleResponse(c, data, err)
	return nil
}

// HandleDelete xóa bài viết
func (h *PostHandler) HandleDelete(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	postID, err := h.GetIDFromContext(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	err = h.PostService.Delete(context.Background(), ownerID, postID)
	h.HandleResponse(c, fiber.Map{"deleted": err == nil}, err)
	return nil
}
