package postdto

// PostCreateInput dữ liệu đầu vào khi tạo bài viết
type PostCreateInput struct {
	Content     string   `json:"content" validate:"required,no_xss"`
	MediaURLs   []string `json:"mediaUrls,omitempty" validate:"omitempty,dive,url"`
	Platforms   []string `json:"platforms" validate:"required,min=1,dive,platform_name"`
	ScheduledAt *int64   `json:"scheduledAt,omitempty"`
}

// PostScheduleInput dữ liệu đầu vào khi lên lịch đăng bài
type PostScheduleInput struct {
	ScheduledAt int64 `json:"scheduledAt" validate:"required"`
}

// PublishResponse kết quả một lượt đăng bài
type PublishResponse struct {
	PostID         string              `json:"postId"`
	Status         string              `json:"status"`
	PublishedAt    *int64              `json:"publishedAt,omitempty"`
	PlatformErrors map[string]string   `json:"platformErrors,omitempty"`
	Warnings       map[string][]string `json:"warnings,omitempty"`
}
