package global

import (
	"creator_hub/config"
	"creator_hub/internal/registry"
	"creator_hub/internal/vault"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Posts               string // Tên collection cho bài viết đa nền tảng
	PlatformConnections string // Tên collection cho kết nối nền tảng của người dùng
	FeedItems           string // Tên collection cho bài viết trên feed nội bộ
	UserStreaks         string // Tên collection cho chuỗi ngày hoạt động của người dùng
}

// Các biến toàn cục
var Validate *validator.Validate                                                 // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                   // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName)       // Tên các collection
var TokenVault *vault.Vault                                                      // Vault mã hóa token nền tảng (fatal nếu thiếu khóa lúc khởi động)

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
