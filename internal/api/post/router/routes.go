// Package router đăng ký các route thuộc domain Post: tạo, xem, đăng, lên lịch, hủy lịch, xóa.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"creator_hub/internal/api/middleware"
	posthdl "creator_hub/internal/api/post/handler"
	apirouter "creator_hub/internal/api/router"
)

// Register đăng ký tất cả route Post lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	postHandler, err := posthdl.NewPostHandler()
	if err != nil {
		return fmt.Errorf("create post handler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "POST", "/create", []fiber.Handler{authMiddleware}, postHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "GET", "/", []fiber.Handler{authMiddleware}, postHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "GET", "/:id", []fiber.Handler{authMiddleware}, postHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "POST", "/:id/publish", []fiber.Handler{authMiddleware}, postHandler.HandlePublish)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "POST", "/:id/schedule", []fiber.Handler{authMiddleware}, postHandler.HandleSchedule)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "POST", "/:id/cancel", []fiber.Handler{authMiddleware}, postHandler.HandleCancel)
	apirouter.RegisterRouteWithMiddleware(v1, "/posts", "DELETE", "/:id", []fiber.Handler{authMiddleware}, postHandler.HandleDelete)

	return nil
}
