// Package router đăng ký các route thuộc domain Feed: đọc feed nội bộ và chuỗi ngày hoạt động.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	feedhdl "creator_hub/internal/api/feed/handler"
	"creator_hub/internal/api/middleware"
	apirouter "creator_hub/internal/api/router"
)

// Register đăng ký tất cả route Feed lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	feedHandler, err := feedhdl.NewFeedHandler()
	if err != nil {
		return fmt.Errorf("create feed handler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(v1, "/feed", "GET", "/", []fiber.Handler{authMiddleware}, feedHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/feed", "GET", "/streak", []fiber.Handler{authMiddleware}, feedHandler.HandleStreak)

	return nil
}
