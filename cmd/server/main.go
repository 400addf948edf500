package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "creator_hub/internal/api/base/handler"
	connectionhdl "creator_hub/internal/api/connection/handler"
	connectionrouter "creator_hub/internal/api/connection/router"
	feedrouter "creator_hub/internal/api/feed/router"
	postrouter "creator_hub/internal/api/post/router"
	apirouter "creator_hub/internal/api/router"
	"creator_hub/internal/database"
	"creator_hub/internal/global"
	"creator_hub/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// registerSystemRoutes đăng ký route hệ thống (health check, không cần auth)
func registerSystemRoutes(v1 fiber.Router, r *apirouter.Router) error {
	systemHandler := basehdl.NewSystemHandler()
	apirouter.RegisterRouteWithMiddleware(v1, "/system", "GET", "/health", nil, systemHandler.HandleHealth)
	return nil
}

func main() {
	initLogger()
	InitGlobal()
	InitRegistry()

	log := logger.GetAppLogger()
	cfg := global.MongoDB_ServerConfig

	// Khởi tạo các platform adapter và đăng ký vào registry
	mastodonAdapter, blueskyAdapter, facebookAdapter, err := InitAdapters(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize platform adapters: %v", err)
	}

	// Khởi tạo Fiber app và đăng ký route các domain
	app, err := InitFiberApp(
		registerSystemRoutes,
		postrouter.Register,
		feedrouter.Register,
		connectionrouter.Register(connectionhdl.Deps{
			Mastodon:    mastodonAdapter,
			Bluesky:     blueskyAdapter,
			Facebook:    facebookAdapter,
			FrontendURL: cfg.FrontendURL,
		}),
	)
	if err != nil {
		log.Fatalf("Failed to initialize Fiber app: %v", err)
	}

	// Worker quét bài đã lên lịch chạy nền, dừng theo context khi shutdown
	workerCtx, stopWorker := context.WithCancel(context.Background())
	InitWorker(workerCtx)

	// Shutdown khi nhận SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		log.Infof("Received signal %s, shutting down...", sig)
		stopWorker()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorf("Server shutdown error: %v", err)
		}

		if err := database.CloseInstance(global.MongoDB_Session); err != nil {
			log.Errorf("MongoDB close error: %v", err)
		}
	}()

	log.Infof("Starting Fiber server on %s", cfg.Address)
	if err := app.Listen(cfg.Address); err != nil {
		stopWorker()
		log.Fatalf("Server stopped with error: %v", err)
	}

	log.Info("Server stopped")
}
