package main

import (
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"creator_hub/config"
	connectionsvc "creator_hub/internal/api/connection/service"
	feedsvc "creator_hub/internal/api/feed/service"
	"creator_hub/internal/global"
	"creator_hub/internal/platforms"
	blueskyadapter "creator_hub/internal/platforms/bluesky"
	facebookadapter "creator_hub/internal/platforms/facebook"
	"creator_hub/internal/platforms/internalfeed"
	mastodonadapter "creator_hub/internal/platforms/mastodon"
	telegramadapter "creator_hub/internal/platforms/telegram"
	"creator_hub/internal/publisher"
	"creator_hub/internal/rewards"
	"creator_hub/internal/streak"
)

func InitRegistry() {
	// Khởi tạo registry và đăng ký các collections
	err := InitCollections(global.MongoDB_Session, global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to initialize collections: %v", err)
	}
	logrus.Info("Initialized collection registry")
}

// InitCollections khởi tạo và đăng ký các collections MongoDB
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)
	colNames := []string{
		global.MongoDB_ColNames.Posts,
		global.MongoDB_ColNames.PlatformConnections,
		global.MongoDB_ColNames.FeedItems,
		global.MongoDB_ColNames.UserStreaks,
	}

	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}

// InitAdapters khởi tạo các platform adapter, đăng ký vào RegistryAdapters và
// RegistryRefreshers, rồi gắn hàm kiểm tra tên nền tảng cho validator.
// Trả về các adapter mà flow kết nối cần tham chiếu trực tiếp.
func InitAdapters(cfg *config.Configuration) (*mastodonadapter.Adapter, *blueskyadapter.Adapter, *facebookadapter.Adapter, error) {
	connectionService, err := connectionsvc.NewConnectionService()
	if err != nil {
		return nil, nil, nil, err
	}
	feedService, err := feedsvc.NewFeedService()
	if err != nil {
		return nil, nil, nil, err
	}
	streakService, err := streak.NewService()
	if err != nil {
		return nil, nil, nil, err
	}

	rewardsClient := rewards.NewClient(cfg.RewardsBaseURL, cfg.RewardsAPIKey)
	dispatcher := publisher.NewDispatcher()

	internalAdapter := internalfeed.NewAdapter(feedService, streakService, rewardsClient, dispatcher)
	mastodonAdapter := mastodonadapter.NewAdapter(cfg.MastodonServer, cfg.MastodonClientID, cfg.MastodonClientSecret, connectionService)
	blueskyAdapter := blueskyadapter.NewAdapter(cfg.BlueskyPDS, connectionService)
	telegramAdapter := telegramadapter.NewAdapter(cfg.TelegramBotToken, connectionService)
	facebookAdapter := facebookadapter.NewAdapter(cfg.FacebookAppID, cfg.FacebookAppSecret, cfg.FacebookGraphVersion, connectionService)

	adapters := []platforms.Adapter{internalAdapter, mastodonAdapter, blueskyAdapter, telegramAdapter, facebookAdapter}
	for _, adapter := range adapters {
		if _, err := platforms.RegistryAdapters.Register(adapter.Name(), adapter); err != nil {
			return nil, nil, nil, err
		}
		logrus.Infof("Platform adapter %s registered", adapter.Name())
	}

	// Bluesky refresh phiên qua PDS; Mastodon refresh qua oauth2 khi instance
	// cấp token có hạn. Facebook cấp page token dài hạn không lưu expiry,
	// Telegram dùng bot token chung nên cả hai không có refresher.
	if _, err := connectionsvc.RegistryRefreshers.Register(blueskyAdapter.Name(), blueskyAdapter); err != nil {
		return nil, nil, nil, err
	}
	if _, err := connectionsvc.RegistryRefreshers.Register(mastodonAdapter.Name(), mastodonAdapter); err != nil {
		return nil, nil, nil, err
	}

	global.SetKnownPlatformFunc(platforms.KnownPlatform)

	return mastodonAdapter, blueskyAdapter, facebookAdapter, nil
}
