// Package rewards là client gọi sang hệ thống thưởng điểm.
// Mọi lời gọi đều best-effort: lỗi được trả về cho dispatcher ghi nhận,
// không bao giờ làm thất bại lượt đăng bài.
package rewards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client gọi HTTP API của hệ thống thưởng điểm
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient tạo mới rewards Client. BaseURL rỗng tạo client vô hiệu (mọi lời gọi là no-op).
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled cho biết client có được cấu hình hay không
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// creditRequest là payload ghi điểm cho một bài viết đã đăng
type creditRequest struct {
	OwnerID string `json:"ownerId"`
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// CreditForPost ghi điểm thưởng cho người dùng khi một bài viết được đăng thành công
func (c *Client) CreditForPost(ctx context.Context, ownerID, postID primitive.ObjectID, content string) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(creditRequest{
		OwnerID: ownerID.Hex(),
		PostID:  postID.Hex(),
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/rewards/credit", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call rewards service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("rewards service returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
