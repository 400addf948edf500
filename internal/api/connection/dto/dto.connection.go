package connectiondto

// ExchangeInput dữ liệu đầu vào khi hoàn tất kết nối một nền tảng.
// Mỗi nền tảng dùng một tập field khác nhau:
//   - Mastodon, Facebook: Code (OAuth authorization code)
//   - Bluesky: Identifier + AppPassword
//   - Telegram: ChatID
type ExchangeInput struct {
	Code        string `json:"code,omitempty"`
	Identifier  string `json:"identifier,omitempty"`
	AppPassword string `json:"appPassword,omitempty"`
	ChatID      string `json:"chatId,omitempty"`
}

// ConnectionResponse thông tin kết nối trả về cho client, không chứa token.
type ConnectionResponse struct {
	ID               string `json:"id"`
	Platform         string `json:"platform"`
	PlatformUserID   string `json:"platformUserId,omitempty"`
	PlatformUsername string `json:"platformUsername,omitempty"`
	DisplayName      string `json:"displayName,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	Scopes           string `json:"scopes,omitempty"`
	TokenExpiry      *int64 `json:"tokenExpiry,omitempty"`
	ConnectedAt      int64  `json:"connectedAt"`
}

// AuthorizeResponse URL ủy quyền OAuth cho client chuyển hướng người dùng.
type AuthorizeResponse struct {
	AuthorizeURL string `json:"authorizeUrl"`
}
