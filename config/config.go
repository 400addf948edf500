package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Bao gồm cấu hình server, database, khóa mã hóa token và thông tin các nền tảng mạng xã hội.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	JwtSecret             string `env:"JWT_SECRET,required"`                       // Bí mật JWT
	TokenVaultKey         string `env:"TOKEN_VAULT_KEY,required"`                  // Khóa mã hóa token nền tảng (bắt buộc, thiếu là fatal)
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`                   // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Sentry (optional - bắt lỗi các tác vụ best-effort)
	SentryDSN string `env:"SENTRY_DSN"` // DSN của Sentry, rỗng = tắt

	// Scheduled Publish Worker
	SweepIntervalSeconds int `env:"SWEEP_INTERVAL_SECONDS" envDefault:"60"` // Chu kỳ quét bài viết đã lên lịch (giây)
	SweepBatchSize       int `env:"SWEEP_BATCH_SIZE" envDefault:"50"`       // Số bài viết tối đa mỗi lần quét

	// Mastodon
	MastodonServer       string `env:"MASTODON_SERVER" envDefault:"https://mastodon.social"` // URL instance Mastodon
	MastodonClientID     string `env:"MASTODON_CLIENT_ID"`                                   // Client ID của app Mastodon
	MastodonClientSecret string `env:"MASTODON_CLIENT_SECRET"`                               // Client Secret của app Mastodon

	// Bluesky
	BlueskyPDS string `env:"BLUESKY_PDS" envDefault:"https://bsky.social"` // URL của PDS Bluesky

	// Facebook
	FacebookAppID        string `env:"FACEBOOK_APP_ID"`                          // App ID của Facebook
	FacebookAppSecret    string `env:"FACEBOOK_APP_SECRET"`                      // App Secret của Facebook
	FacebookGraphVersion string `env:"FACEBOOK_GRAPH_VERSION" envDefault:"v19.0"` // Phiên bản Graph API

	// Telegram
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"` // Bot token dùng để đăng bài lên kênh/nhóm Telegram

	// Rewards Service (cộng điểm thưởng khi đăng bài nội bộ - fire and forget)
	RewardsBaseURL string `env:"REWARDS_BASE_URL"` // URL của rewards service, rỗng = tắt
	RewardsAPIKey  string `env:"REWARDS_API_KEY"`  // API key gọi rewards service

	// Frontend URL (dùng làm redirect URL cho OAuth)
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL frontend
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
