// Package router đăng ký các route thuộc domain Connection: liệt kê, ủy quyền, exchange, ngắt kết nối.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	connectionhdl "creator_hub/internal/api/connection/handler"
	"creator_hub/internal/api/middleware"
	apirouter "creator_hub/internal/api/router"
)

// Register trả về hàm đăng ký route Connection với các adapter đã khởi tạo.
func Register(deps connectionhdl.Deps) apirouter.RegisterFunc {
	return func(v1 fiber.Router, r *apirouter.Router) error {
		connectionHandler, err := connectionhdl.NewConnectionHandler(deps)
		if err != nil {
			return fmt.Errorf("create connection handler: %w", err)
		}

		authMiddleware := middleware.AuthMiddleware()
		apirouter.RegisterRouteWithMiddleware(v1, "/connections", "GET", "/", []fiber.Handler{authMiddleware}, connectionHandler.HandleList)
		apirouter.RegisterRouteWithMiddleware(v1, "/connections", "GET", "/:platform/authorize", []fiber.Handler{authMiddleware}, connectionHandler.HandleAuthorize)
		apirouter.RegisterRouteWithMiddleware(v1, "/connections", "POST", "/:platform/exchange", []fiber.Handler{authMiddleware}, connectionHandler.HandleExchange)
		apirouter.RegisterRouteWithMiddleware(v1, "/connections", "DELETE", "/:platform", []fiber.Handler{authMiddleware}, connectionHandler.HandleDisconnect)

		return nil
	}
}
