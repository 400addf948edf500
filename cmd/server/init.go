package main

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"creator_hub/config"
	connectionmodels "creator_hub/internal/api/connection/models"
	feedmodels "creator_hub/internal/api/feed/models"
	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/database"
	"creator_hub/internal/global"
	"creator_hub/internal/streak"
	"creator_hub/internal/vault"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initVault()            // Khởi tạo vault mã hóa token nền tảng
	initDatabase_MongoDB() // Khởi tạo kết nối database
	initSentry()           // Khởi tạo Sentry (tùy chọn)
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Posts = "posts"
	global.MongoDB_ColNames.PlatformConnections = "platform_connections"
	global.MongoDB_ColNames.FeedItems = "feed_items"
	global.MongoDB_ColNames.UserStreaks = "user_streaks"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, platform_name)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo vault mã hóa token. Thiếu khóa mã hóa là lỗi chết người:
// server không được phép chạy khi không thể mã hóa token nền tảng.
func initVault() {
	v, err := vault.New(global.MongoDB_ServerConfig.TokenVaultKey)
	if err != nil {
		logrus.Fatalf("Failed to initialize token vault: %v", err)
	}
	global.TokenVault = v
	logrus.Info("Initialized token vault")
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection
	dbName := global.MongoDB_ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Posts), postmodels.Post{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.PlatformConnections), connectionmodels.PlatformConnection{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.FeedItems), feedmodels.FeedItem{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.UserStreaks), streak.UserStreak{})
}

// initSentry khởi tạo Sentry để bắt lỗi các tác vụ best-effort. DSN rỗng thì tắt.
func initSentry() {
	dsn := global.MongoDB_ServerConfig.SentryDSN
	if dsn == "" {
		logrus.Info("Sentry disabled (no DSN)")
		return
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn: dsn,
	}); err != nil {
		logrus.Errorf("Failed to initialize Sentry: %v", err)
		return
	}
	logrus.Info("Initialized Sentry")
}
