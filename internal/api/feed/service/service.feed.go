// Package feedsvc quản lý feed nội bộ.
package feedsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "creator_hub/internal/api/base/service"
	feedmodels "creator_hub/internal/api/feed/models"
	"creator_hub/internal/common"
	"creator_hub/internal/global"
)

// FeedService là service quản lý feed nội bộ
type FeedService struct {
	*basesvc.BaseServiceMongoImpl[feedmodels.FeedItem]
}

// NewFeedService tạo mới FeedService
func NewFeedService() (*FeedService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.FeedItems)
	if !exist {
		return nil, fmt.Errorf("failed to get feed_items collection: %v", common.ErrNotFound)
	}

	return &FeedService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[feedmodels.FeedItem](collection),
	}, nil
}

// Publish ghi một bài viết lên feed nội bộ
func (s *FeedService) Publish(ctx context.Context, ownerID, postID primitive.ObjectID, content string, mediaURLs []string) (feedmodels.FeedItem, error) {
	item := feedmodels.FeedItem{
		OwnerID:   ownerID,
		PostID:    postID,
		Content:   content,
		MediaURLs: mediaURLs,
	}
	return s.InsertOne(ctx, item)
}

// ListByOwner liệt kê feed item của một người dùng, mới nhất trước
func (s *FeedService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]feedmodels.FeedItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.Find(ctx, bson.M{"ownerId": ownerID}, opts)
}
