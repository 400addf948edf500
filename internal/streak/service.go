// Package streak theo dõi chuỗi ngày hoạt động của người dùng.
// Được gọi best-effort từ adapter feed nội bộ sau mỗi lần đăng bài thành công.
package streak

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "creator_hub/internal/api/base/service"
	"creator_hub/internal/common"
	"creator_hub/internal/global"
)

// dateLayout định dạng ngày hoạt động (theo UTC)
const dateLayout = "2006-01-02"

// UserStreak là chuỗi ngày hoạt động liên tiếp của một người dùng
type UserStreak struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	OwnerID          primitive.ObjectID `json:"ownerId" bson:"ownerId" index:"unique"` // Người dùng, mỗi người một document
	CurrentStreak    int                `json:"currentStreak" bson:"currentStreak"`    // Số ngày hoạt động liên tiếp
	LastActivityDate string             `json:"lastActivityDate" bson:"lastActivityDate"` // Ngày hoạt động gần nhất (YYYY-MM-DD, UTC)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// Service quản lý chuỗi ngày hoạt động
type Service struct {
	*basesvc.BaseServiceMongoImpl[UserStreak]
}

// NewService tạo mới streak Service
func NewService() (*Service, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.UserStreaks)
	if !exist {
		return nil, fmt.Errorf("failed to get user_streaks collection: %v", common.ErrNotFound)
	}

	return &Service{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[UserStreak](collection),
	}, nil
}

// Touch ghi nhận hoạt động hôm nay của người dùng:
// cùng ngày thì giữ nguyên, hôm qua thì tăng chuỗi, ngắt quãng thì reset về 1.
func (s *Service) Touch(ctx context.Context, ownerID primitive.ObjectID) error {
	now := time.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	existing, err := s.FindOne(ctx, bson.M{"ownerId": ownerID}, nil)
	if err == nil {
		if existing.LastActivityDate == today {
			return nil
		}

		newStreak := 1
		if existing.LastActivityDate == yesterday {
			newStreak = existing.CurrentStreak + 1
		}

		_, err = s.UpdateById(ctx, existing.ID, &basesvc.UpdateData{
			Set: map[string]interface{}{
				"currentStreak":    newStreak,
				"lastActivityDate": today,
			},
		})
		return err
	}

	if !common.IsNotFound(err) {
		return err
	}

	_, err = s.InsertOne(ctx, UserStreak{
		OwnerID:          ownerID,
		CurrentStreak:    1,
		LastActivityDate: today,
	})
	return err
}

// Get trả về chuỗi ngày hoạt động hiện tại của người dùng (0 nếu chưa có)
func (s *Service) Get(ctx context.Context, ownerID primitive.ObjectID) (int, error) {
	existing, err := s.FindOne(ctx, bson.M{"ownerId": ownerID}, nil)
	if err != nil {
		if common.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return existing.CurrentStreak, nil
}
