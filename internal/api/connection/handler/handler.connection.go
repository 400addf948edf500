package connectionhdl

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"

	basehdl "creator_hub/internal/api/base/handler"
	connectiondto "creator_hub/internal/api/connection/dto"
	connectionmodels "creator_hub/internal/api/connection/models"
	connectionsvc "creator_hub/internal/api/connection/service"
	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
	blueskyadapter "creator_hub/internal/platforms/bluesky"
	facebookadapter "creator_hub/internal/platforms/facebook"
	mastodonadapter "creator_hub/internal/platforms/mastodon"
)

// Deps là các adapter mà flow kết nối cần đến.
// Telegram không cần adapter ở đây: exchange chỉ là bind chat ID.
type Deps struct {
	Mastodon    *mastodonadapter.Adapter
	Bluesky     *blueskyadapter.Adapter
	Facebook    *facebookadapter.Adapter
	FrontendURL string
}

// ConnectionHandler xử lý các yêu cầu kết nối/ngắt kết nối nền tảng
type ConnectionHandler struct {
	basehdl.BaseHandler
	ConnectionService *connectionsvc.ConnectionService
	deps              Deps
}

// NewConnectionHandler khởi tạo ConnectionHandler mới
func NewConnectionHandler(deps Deps) (*ConnectionHandler, error) {
	service, err := connectionsvc.NewConnectionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create connection service: %v", err)
	}
	return &ConnectionHandler{
		ConnectionService: service,
		deps:              deps,
	}, nil
}

// redirectURL dựng URL callback trên frontend cho flow OAuth của một nền tảng
func (h *ConnectionHandler) redirectURL(platform string) string {
	return fmt.Sprintf("%s/connect/%s/callback", strings.TrimRight(h.deps.FrontendURL, "/"), platform)
}

// toResponse chuyển PlatformConnection thành response không chứa token
func toResponse(conn connectionmodels.PlatformConnection) connectiondto.ConnectionResponse {
	return connectiondto.ConnectionResponse{
		ID:               conn.ID.Hex(),
		Platform:         conn.Platform,
		PlatformUserID:   conn.PlatformUserID,
		PlatformUsername: conn.PlatformUsername,
		DisplayName:      conn.DisplayName,
		AvatarURL:        conn.AvatarURL,
		Scopes:           conn.Scopes,
		TokenExpiry:      conn.TokenExpiry,
		ConnectedAt:      conn.ConnectedAt,
	}
}

// getPlatformParam lấy và kiểm tra tên nền tảng từ URI params.
// Feed nội bộ không phải là kết nối nên không hợp lệ ở đây.
func (h *ConnectionHandler) getPlatformParam(c fiber.Ctx) (string, error) {
	platform := c.Params("platform")
	switch platform {
	case platforms.PlatformMastodon, platforms.PlatformBluesky, platforms.PlatformTelegram, platforms.PlatformFacebook:
		return platform, nil
	default:
		return "", common.NewError(
			common.ErrCodeValidationInput,
			"Nền tảng không được hỗ trợ: "+platform,
			common.StatusBadRequest,
			nil,
		)
	}
}

// HandleList liệt kê các kết nối của người dùng (không chứa token)
func (h *ConnectionHandler) HandleList(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	conns, err := h.ConnectionService.ListByOwner(context.Background(), ownerID)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	responses := make([]connectiondto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		responses = append(responses, toResponse(conn))
	}
	h.HandleResponse(c, responses, nil)
	return nil
}

// HandleAuthorize trả về URL ủy quyền OAuth cho nền tảng.
// Bluesky và Telegram không có flow chuyển hướng, client gọi thẳng exchange.
func (h *ConnectionHandler) HandleAuthorize(c fiber.Ctx) error {
	platform, err := h.getPlatformParam(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	state := c.Query("state")
	var authorizeURL string
	switch platform {
	case platforms.PlatformMastodon:
		conf := h.deps.Mastodon.OAuthConfig(h.redirectURL(platform))
		authorizeURL = conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	case platforms.PlatformFacebook:
		authorizeURL = h.deps.Facebook.AuthorizeURL(h.redirectURL(platform), state)
	default:
		h.HandleResponse(c, nil, common.NewError(
			common.ErrCodeValidationInput,
			"Nền tảng này không dùng flow ủy quyền OAuth",
			common.StatusBadRequest,
			nil,
		))
		return nil
	}

	h.HandleResponse(c, connectiondto.AuthorizeResponse{AuthorizeURL: authorizeURL}, nil)
	return nil
}

// HandleExchange hoàn tất kết nối một nền tảng: đổi credential lấy token,
// mã hóa và lưu kết nối. Mỗi nền tảng dùng một tập field đầu vào khác nhau.
func (h *ConnectionHandler) HandleExchange(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	platform, err := h.getPlatformParam(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	input := new(connectiondto.ExchangeInput)
	if err := h.ParseRequestBody(c, input); err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	var conn connectionmodels.PlatformConnection
	switch platform {
	case platforms.PlatformMastodon:
		conn, err = h.exchangeMastodon(context.Background(), ownerID, input)
	case platforms.PlatformBluesky:
		conn, err = h.exchangeBluesky(context.Background(), ownerID, input)
	case platforms.PlatformFacebook:
		conn, err = h.exchangeFacebook(context.Background(), ownerID, input)
	case platforms.PlatformTelegram:
		conn, err = h.exchangeTelegram(context.Background(), ownerID, input)
	}
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	h.HandleResponse(c, toResponse(conn), nil)
	return nil
}

// exchangeMastodon đổi authorization code lấy token Mastodon và lưu kết nối
func (h *ConnectionHandler) exchangeMastodon(ctx context.Context, ownerID primitive.ObjectID, input *connectiondto.ExchangeInput) (connectionmodels.PlatformConnection, error) {
	var zero connectionmodels.PlatformConnection
	if input.Code == "" {
		return zero, common.NewError(common.ErrCodeValidationInput, "Thiếu authorization code", common.StatusBadRequest, nil)
	}

	token, account, err := h.deps.Mastodon.ExchangeCode(ctx, input.Code, h.redirectURL(platforms.PlatformMastodon))
	if err != nil {
		return zero, common.NewError(common.ErrCodeAuthToken, "Kết nối Mastodon thất bại", common.StatusUnauthorized, err)
	}

	conn := connectionmodels.PlatformConnection{
		OwnerID:          ownerID,
		Platform:         platforms.PlatformMastodon,
		Scopes:           "read write",
		PlatformUserID:   string(account.ID),
		PlatformUsername: account.Acct,
		DisplayName:      account.DisplayName,
		AvatarURL:        account.Avatar,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UnixMilli()
		conn.TokenExpiry = &expiry
	}

	return h.ConnectionService.UpsertConnection(ctx, conn, token.AccessToken, token.RefreshToken)
}

// exchangeBluesky tạo phiên với PDS bằng identifier + app password và lưu kết nối
func (h *ConnectionHandler) exchangeBluesky(ctx context.Context, ownerID primitive.ObjectID, input *connectiondto.ExchangeInput) (connectionmodels.PlatformConnection, error) {
	var zero connectionmodels.PlatformConnection
	if input.Identifier == "" || input.AppPassword == "" {
		return zero, common.NewError(common.ErrCodeValidationInput, "Thiếu identifier hoặc app password", common.StatusBadRequest, nil)
	}

	sess, err := h.deps.Bluesky.CreateSession(ctx, input.Identifier, input.AppPassword)
	if err != nil {
		return zero, common.NewError(common.ErrCodeAuthToken, "Kết nối Bluesky thất bại", common.StatusUnauthorized, err)
	}

	conn := connectionmodels.PlatformConnection{
		OwnerID:          ownerID,
		Platform:         platforms.PlatformBluesky,
		TokenExpiry:      &sess.TokenExpiry,
		PlatformUserID:   sess.Did,
		PlatformUsername: sess.Handle,
	}

	return h.ConnectionService.UpsertConnection(ctx, conn, sess.AccessJwt, sess.RefreshJwt)
}

// exchangeFacebook đổi authorization code lấy page token Facebook và lưu kết nối
func (h *ConnectionHandler) exchangeFacebook(ctx context.Context, ownerID primitive.ObjectID, input *connectiondto.ExchangeInput) (connectionmodels.PlatformConnection, error) {
	var zero connectionmodels.PlatformConnection
	if input.Code == "" {
		return zero, common.NewError(common.ErrCodeValidationInput, "Thiếu authorization code", common.StatusBadRequest, nil)
	}

	page, err := h.deps.Facebook.ExchangeCode(ctx, input.Code, h.redirectURL(platforms.PlatformFacebook))
	if err != nil {
		return zero, common.NewError(common.ErrCodeAuthToken, "Kết nối Facebook thất bại", common.StatusUnauthorized, err)
	}

	conn := connectionmodels.PlatformConnection{
		OwnerID:        ownerID,
		Platform:       platforms.PlatformFacebook,
		Scopes:         "pages_manage_posts pages_read_engagement",
		PlatformUserID: page.ID,
		DisplayName:    page.Name,
	}

	return h.ConnectionService.UpsertConnection(ctx, conn, page.AccessToken, "")
}

// exchangeTelegram bind chat ID đích cho người dùng.
// Telegram dùng bot token chung của hệ thống nên không có token theo người dùng.
func (h *ConnectionHandler) exchangeTelegram(ctx context.Context, ownerID primitive.ObjectID, input *connectiondto.ExchangeInput) (connectionmodels.PlatformConnection, error) {
	var zero connectionmodels.PlatformConnection
	if input.ChatID == "" {
		return zero, common.NewError(common.ErrCodeValidationInput, "Thiếu chat ID", common.StatusBadRequest, nil)
	}

	conn := connectionmodels.PlatformConnection{
		OwnerID:        ownerID,
		Platform:       platforms.PlatformTelegram,
		PlatformUserID: input.ChatID,
	}

	return h.ConnectionService.UpsertConnection(ctx, conn, "", "")
}

// HandleDisconnect ngắt kết nối một nền tảng
func (h *ConnectionHandler) HandleDisconnect(c fiber.Ctx) error {
	ownerID, err := h.GetUserID(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	platform, err := h.getPlatformParam(c)
	if err != nil {
		h.HandleResponse(c, nil, err)
		return nil
	}

	err = h.ConnectionService.Disconnect(context.Background(), ownerID, platform)
	h.HandleResponse(c, fiber.Map{"disconnected": err == nil}, err)
	return nil
}
