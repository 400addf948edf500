// Package connectionsvc quản lý kết nối nền tảng của người dùng:
// lưu token đã mã hóa, cấp access token còn hạn (tự refresh khi sắp hết hạn)
// và xử lý kết nối/ngắt kết nối.
package connectionsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "creator_hub/internal/api/base/service"
	connectionmodels "creator_hub/internal/api/connection/models"
	"creator_hub/internal/common"
	"creator_hub/internal/global"
	"creator_hub/internal/logger"
	"creator_hub/internal/registry"
)

// tokenExpiryBuffer: token còn hạn dưới ngưỡng này được coi là sắp hết hạn và phải refresh
const tokenExpiryBuffer = 5 * time.Minute

// RefreshedToken là cặp token mới sau khi refresh thành công
type RefreshedToken struct {
	AccessToken  string // Access token mới (plaintext, chỉ tồn tại trong bộ nhớ)
	RefreshToken string // Refresh token mới, rỗng nếu nền tảng giữ nguyên token cũ
	TokenExpiry  *int64 // Thời điểm hết hạn mới (unix millis), nil nếu không hết hạn
}

// TokenRefresher refresh token cho một nền tảng. Adapter của nền tảng nào hỗ trợ
// refresh thì implement interface này và đăng ký vào RegistryRefreshers lúc khởi động.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, conn connectionmodels.PlatformConnection, refreshToken string) (*RefreshedToken, error)
}

// RegistryRefreshers chứa refresher theo tên nền tảng
var RegistryRefreshers = registry.NewRegistry[TokenRefresher]()

// ConnectionService là service quản lý kết nối nền tảng
type ConnectionService struct {
	*basesvc.BaseServiceMongoImpl[connectionmodels.PlatformConnection]

	// Khóa theo (ownerId, platform) để serial hóa các lượt refresh cùng một kết nối
	refreshLocks sync.Map

	// persistTokens ghi cặp token mới xuống database, mặc định dùng UpdateById.
	// Test có thể thay thế để kiểm tra phần mã hóa và lưu.
	persistTokens func(ctx context.Context, id primitive.ObjectID, update *basesvc.UpdateData) error
}

// NewConnectionService tạo mới ConnectionService
func NewConnectionService() (*ConnectionService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PlatformConnections)
	if !exist {
		return nil, fmt.Errorf("failed to get platform_connections collection: %v", common.ErrNotFound)
	}

	return &ConnectionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[connectionmodels.PlatformConnection](collection),
	}, nil
}

// GetConnection lấy kết nối của một người dùng với một nền tảng
func (s *ConnectionService) GetConnection(ctx context.Context, ownerID primitive.ObjectID, platform string) (connectionmodels.PlatformConnection, error) {
	return s.FindOne(ctx, bson.M{"ownerId": ownerID, "platform": platform}, nil)
}

// ListByOwner liệt kê tất cả kết nối của một người dùng
func (s *ConnectionService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]connectionmodels.PlatformConnection, error) {
	return s.Find(ctx, bson.M{"ownerId": ownerID}, nil)
}

// UpsertConnection tạo hoặc cập nhật kết nối. Token plaintext được mã hóa trước khi lưu,
// connectedAt chỉ set khi tạo mới.
func (s *ConnectionService) UpsertConnection(ctx context.Context, conn connectionmodels.PlatformConnection, accessToken, refreshToken string) (connectionmodels.PlatformConnection, error) {
	var zero connectionmodels.PlatformConnection

	accessTokenEnc, err := global.TokenVault.EncryptString(accessToken)
	if err != nil {
		return zero, common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa access token", common.StatusInternalServerError, err)
	}

	set := map[string]interface{}{
		"accessTokenEnc":   accessTokenEnc,
		"scopes":           conn.Scopes,
		"platformUserId":   conn.PlatformUserID,
		"platformUsername": conn.PlatformUsername,
		"displayName":      conn.DisplayName,
		"avatarUrl":        conn.AvatarURL,
	}
	if conn.TokenExpiry != nil {
		set["tokenExpiry"] = *conn.TokenExpiry
	}
	if refreshToken != "" {
		refreshTokenEnc, err := global.TokenVault.EncryptString(refreshToken)
		if err != nil {
			return zero, common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa refresh token", common.StatusInternalServerError, err)
		}
		set["refreshTokenEnc"] = refreshTokenEnc
	}

	filter := bson.M{"ownerId": conn.OwnerID, "platform": conn.Platform}
	return s.Upsert(ctx, filter, &basesvc.UpdateData{
		Set: set,
		SetOnInsert: map[string]interface{}{
			"ownerId":     conn.OwnerID,
			"platform":    conn.Platform,
			"connectedAt": time.Now().UnixMilli(),
		},
	})
}

// Disconnect xóa kết nối của một người dùng với một nền tảng
func (s *ConnectionService) Disconnect(ctx context.Context, ownerID primitive.ObjectID, platform string) error {
	return s.DeleteOne(ctx, bson.M{"ownerId": ownerID, "platform": platform})
}

// GetValidAccessToken trả về access token còn hạn cho một nền tảng.
// Token còn hạn trên 5 phút được trả về ngay; token sắp hết hạn được refresh qua
// refresher của nền tảng, cặp token mới được mã hóa và lưu lại trước khi trả về.
// Các lượt refresh cùng một (owner, platform) được serial hóa bằng mutex theo khóa.
func (s *ConnectionService) GetValidAccessToken(ctx context.Context, ownerID primitive.ObjectID, platform string) (string, error) {
	conn, err := s.GetConnection(ctx, ownerID, platform)
	if err != nil {
		return "", common.NewPublishError(platform, common.PublishErrNotConnected, "Người dùng chưa kết nối nền tảng này", err)
	}

	token, needRefresh, err := s.decryptIfValid(conn)
	if err != nil {
		return "", err
	}
	if !needRefresh {
		return token, nil
	}

	// Serial hóa refresh theo (owner, platform)
	lockKey := ownerID.Hex() + ":" + platform
	lockAny, _ := s.refreshLocks.LoadOrStore(lockKey, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	// Đọc lại sau khi giữ khóa: một goroutine khác có thể đã refresh xong
	conn, err = s.GetConnection(ctx, ownerID, platform)
	if err != nil {
		return "", common.NewPublishError(platform, common.PublishErrNotConnected, "Người dùng chưa kết nối nền tảng này", err)
	}
	token, needRefresh, err = s.decryptIfValid(conn)
	if err != nil {
		return "", err
	}
	if !needRefresh {
		return token, nil
	}

	return s.refreshAndPersist(ctx, conn)
}

// decryptIfValid giải mã access token và cho biết có cần refresh hay không
func (s *ConnectionService) decryptIfValid(conn connectionmodels.PlatformConnection) (token string, needRefresh bool, err error) {
	token, err = global.TokenVault.DecryptString(conn.AccessTokenEnc)
	if err != nil {
		return "", false, common.NewPublishError(conn.Platform, common.PublishErrUnauthorized, "Không thể giải mã access token", err)
	}

	if conn.TokenExpiry == nil {
		return token, false, nil
	}

	threshold := time.Now().Add(tokenExpiryBuffer).UnixMilli()
	if *conn.TokenExpiry > threshold {
		return token, false, nil
	}

	return "", true, nil
}

// refreshAndPersist refresh token qua refresher của nền tảng và lưu cặp token mới.
// Token hết hạn mà không có cách refresh (không có refresher hoặc không có refresh
// token) nghĩa là người dùng phải kết nối lại, không phải lỗi refresh.
func (s *ConnectionService) refreshAndPersist(ctx context.Context, conn connectionmodels.PlatformConnection) (string, error) {
	refresher, exists := RegistryRefreshers.Get(conn.Platform)
	if !exists {
		return "", common.NewPublishError(conn.Platform, common.PublishErrNotConnected, "Token đã hết hạn, người dùng cần kết nối lại nền tảng", nil)
	}

	if conn.RefreshTokenEnc == "" {
		return "", common.NewPublishError(conn.Platform, common.PublishErrNotConnected, "Token đã hết hạn và kết nối không có refresh token, người dùng cần kết nối lại", nil)
	}

	refreshToken, err := global.TokenVault.DecryptString(conn.RefreshTokenEnc)
	if err != nil {
		return "", common.NewPublishError(conn.Platform, common.PublishErrTokenRefreshFailed, "Không thể giải mã refresh token", err)
	}

	refreshed, err := refresher.RefreshToken(ctx, conn, refreshToken)
	if err != nil {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"owner_id": conn.OwnerID.Hex(),
			"platform": conn.Platform,
			"error":    err.Error(),
		}).Warn("⚠️ [CONNECTION] Token refresh failed")
		return "", common.NewPublishError(conn.Platform, common.PublishErrTokenRefreshFailed, "Refresh token thất bại", err)
	}

	accessTokenEnc, err := global.TokenVault.EncryptString(refreshed.AccessToken)
	if err != nil {
		return "", common.NewPublishError(conn.Platform, common.PublishErrTokenRefreshFailed, "Không thể mã hóa access token mới", err)
	}

	set := map[string]interface{}{
		"accessTokenEnc": accessTokenEnc,
	}
	if refreshed.RefreshToken != "" {
		refreshTokenEnc, err := global.TokenVault.EncryptString(refreshed.RefreshToken)
		if err != nil {
			return "", common.NewPublishError(conn.Platform, common.PublishErrTokenRefreshFailed, "Không thể mã hóa refresh token mới", err)
		}
		set["refreshTokenEnc"] = refreshTokenEnc
	}
	if refreshed.TokenExpiry != nil {
		set["tokenExpiry"] = *refreshed.TokenExpiry
	}

	persist := s.persistTokens
	if persist == nil {
		persist = func(ctx context.Context, id primitive.ObjectID, update *basesvc.UpdateData) error {
			_, err := s.UpdateById(ctx, id, update)
			return err
		}
	}
	if err := persist(ctx, conn.ID, &basesvc.UpdateData{Set: set}); err != nil {
		return "", common.NewPublishError(conn.Platform, common.PublishErrTokenRefreshFailed, "Không thể lưu token mới", err)
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"owner_id": conn.OwnerID.Hex(),
		"platform": conn.Platform,
	}).Info("🔄 [CONNECTION] Token refreshed")

	return refreshed.AccessToken, nil
}
