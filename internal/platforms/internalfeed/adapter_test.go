package internalfeed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	feedmodels "creator_hub/internal/api/feed/models"
	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

type fakeFeed struct {
	item feedmodels.FeedItem
	err  error
}

func (f *fakeFeed) Publish(ctx context.Context, ownerID, postID primitive.ObjectID, content string, mediaURLs []string) (feedmodels.FeedItem, error) {
	return f.item, f.err
}

type fakeStreak struct{ touched int }

func (f *fakeStreak) Touch(ctx context.Context, ownerID primitive.ObjectID) error {
	f.touched++
	return nil
}

type fakeRewards struct{ credited int }

func (f *fakeRewards) CreditForPost(ctx context.Context, ownerID, postID primitive.ObjectID, content string) error {
	f.credited++
	return nil
}

// syncDispatcher chạy task ngay trong test thay vì goroutine
type syncDispatcher struct{ names []string }

func (d *syncDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	d.names = append(d.names, name)
	_ = fn(context.Background())
}

func TestValidateContentRequiresTextOrMedia(t *testing.T) {
	a := NewAdapter(&fakeFeed{}, &fakeStreak{}, &fakeRewards{}, &syncDispatcher{})

	err := a.ValidateContent(platforms.Content{Text: "   "})
	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrValidationFailed, pubErr.Code)

	assert.NoError(t, a.ValidateContent(platforms.Content{Text: "xin chào"}))
	assert.NoError(t, a.ValidateContent(platforms.Content{MediaURLs: []string{"https://cdn/x.png"}}))
}

func TestPublishWritesFeedAndDispatchesSideEffects(t *testing.T) {
	itemID := primitive.NewObjectID()
	feed := &fakeFeed{item: feedmodels.FeedItem{ID: itemID}}
	streak := &fakeStreak{}
	rewards := &fakeRewards{}
	dispatcher := &syncDispatcher{}

	a := NewAdapter(feed, streak, rewards, dispatcher)
	result, err := a.Publish(context.Background(), primitive.NewObjectID(), platforms.Content{
		PostID: primitive.NewObjectID(),
		Text:   "xin chào",
	})

	require.NoError(t, err)
	assert.Equal(t, itemID.Hex(), result.ExternalID)
	assert.Equal(t, "/feed/"+itemID.Hex(), result.ExternalURL)

	// Mỗi side effect được dispatch đúng một lần
	assert.Equal(t, []string{"streak.touch", "rewards.credit"}, dispatcher.names)
	assert.Equal(t, 1, streak.touched)
	assert.Equal(t, 1, rewards.credited)
}

func TestPublishFeedFailureSkipsSideEffects(t *testing.T) {
	feed := &fakeFeed{err: errors.New("insert failed")}
	dispatcher := &syncDispatcher{}

	a := NewAdapter(feed, &fakeStreak{}, &fakeRewards{}, dispatcher)
	_, err := a.Publish(context.Background(), primitive.NewObjectID(), platforms.Content{Text: "xin chào"})

	require.Error(t, err)
	var pubErr *common.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, common.PublishErrUnavailable, pubErr.Code)
	assert.Empty(t, dispatcher.names)
}
