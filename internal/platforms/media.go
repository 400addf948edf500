package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// maxMediaSize giới hạn kích thước một file media tải về (20MB)
const maxMediaSize = 20 << 20

var mediaHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Media là một file media đã tải về bộ nhớ, sẵn sàng upload lên nền tảng
type Media struct {
	Data        []byte // Nội dung file
	ContentType string // MIME type (từ header hoặc đoán từ nội dung)
	Filename    string // Tên file lấy từ URL
}

// FetchMedia tải một media từ URL về bộ nhớ.
// Dùng bởi các adapter cần upload media lên nền tảng (Mastodon, Bluesky).
func FetchMedia(ctx context.Context, mediaURL string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := mediaHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching media", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	if len(data) > maxMediaSize {
		return nil, fmt.Errorf("media exceeds size limit")
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	filename := path.Base(req.URL.Path)
	if filename == "/" || filename == "." {
		filename = "media"
	}

	return &Media{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
	}, nil
}

// IsImage cho biết media có phải hình ảnh hay không
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}
