package publisher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/common"
	"creator_hub/internal/platforms"
)

// fakeStore là PostStore trong bộ nhớ cho test
type fakeStore struct {
	post            postmodels.Post
	getErr          error
	markedCount     int32
	appliedStatus   string
	appliedAt       *int64
	appliedOutcomes []postmodels.PlatformOutcome
}

func (s *fakeStore) GetForPublish(ctx context.Context, postID primitive.ObjectID) (postmodels.Post, error) {
	return s.post, s.getErr
}

func (s *fakeStore) MarkPublishing(ctx context.Context, postID primitive.ObjectID) error {
	atomic.AddInt32(&s.markedCount, 1)
	return nil
}

func (s *fakeStore) ApplyPublishResult(ctx context.Context, postID primitive.ObjectID, status string, publishedAt *int64, outcomes []postmodels.PlatformOutcome) error {
	s.appliedStatus = status
	s.appliedAt = publishedAt
	s.appliedOutcomes = outcomes
	return nil
}

// fakeAdapter là Adapter cấu hình được cho test
type fakeAdapter struct {
	name        string
	validateErr error
	publishErr  error
	result      *platforms.PublishResult
	panics      bool
	calls       int32
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) ValidateContent(content platforms.Content) error { return a.validateErr }

func (a *fakeAdapter) Publish(ctx context.Context, ownerID primitive.ObjectID, content platforms.Content) (*platforms.PublishResult, error) {
	atomic.AddInt32(&a.calls, 1)
	if a.panics {
		panic("adapter exploded")
	}
	if a.publishErr != nil {
		return nil, a.publishErr
	}
	if a.result != nil {
		return a.result, nil
	}
	return &platforms.PublishResult{ExternalID: a.name + "-id"}, nil
}

func lookupFrom(adapters ...*fakeAdapter) AdapterLookup {
	byName := make(map[string]platforms.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.name] = a
	}
	return func(name string) (platforms.Adapter, bool) {
		a, ok := byName[name]
		return a, ok
	}
}

func newTestPost(platformNames ...string) postmodels.Post {
	return postmodels.Post{
		ID:        primitive.NewObjectID(),
		OwnerID:   primitive.NewObjectID(),
		Content:   "hello world",
		Platforms: platformNames,
		Status:    postmodels.PostStatusDraft,
	}
}

func TestPublishNowAllSuccess(t *testing.T) {
	store := &fakeStore{post: newTestPost("internal", "mastodon")}
	internal := &fakeAdapter{name: "internal"}
	mastodon := &fakeAdapter{name: "mastodon", result: &platforms.PublishResult{ExternalID: "42", ExternalURL: "https://m.social/@u/42"}}

	o := NewOrchestrator(store, lookupFrom(internal, mastodon))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.NoError(t, err)
	assert.Equal(t, postmodels.PostStatusPublished, result.Status)
	require.NotNil(t, result.PublishedAt)
	assert.Empty(t, result.PlatformErrors)

	assert.Equal(t, int32(1), store.markedCount)
	assert.Equal(t, postmodels.PostStatusPublished, store.appliedStatus)
	require.Len(t, store.appliedOutcomes, 2)
	for _, outcome := range store.appliedOutcomes {
		assert.Equal(t, postmodels.OutcomeStatusPublished, outcome.Status)
	}
}

func TestPublishNowPartialSuccess(t *testing.T) {
	store := &fakeStore{post: newTestPost("internal", "mastodon")}
	internal := &fakeAdapter{name: "internal"}
	mastodon := &fakeAdapter{
		name:       "mastodon",
		publishErr: common.NewPublishError("mastodon", common.PublishErrRateLimited, "slow down", nil),
	}

	o := NewOrchestrator(store, lookupFrom(internal, mastodon))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.NoError(t, err)
	assert.Equal(t, postmodels.PostStatusPublished, result.Status)
	require.NotNil(t, result.PublishedAt)
	assert.Equal(t, string(common.PublishErrRateLimited), result.PlatformErrors["mastodon"])

	// Outcome giữ đúng thứ tự nền tảng của bài viết
	require.Len(t, store.appliedOutcomes, 2)
	assert.Equal(t, "internal", store.appliedOutcomes[0].Platform)
	assert.Equal(t, postmodels.OutcomeStatusPublished, store.appliedOutcomes[0].Status)
	assert.Equal(t, "mastodon", store.appliedOutcomes[1].Platform)
	assert.Equal(t, postmodels.OutcomeStatusFailed, store.appliedOutcomes[1].Status)
}

func TestPublishNowAllFailed(t *testing.T) {
	store := &fakeStore{post: newTestPost("mastodon", "bluesky")}
	mastodon := &fakeAdapter{
		name:       "mastodon",
		publishErr: common.NewPublishError("mastodon", common.PublishErrUnauthorized, "token revoked", nil),
	}
	bluesky := &fakeAdapter{
		name:       "bluesky",
		publishErr: common.NewPublishError("bluesky", common.PublishErrUnavailable, "pds down", nil),
	}

	o := NewOrchestrator(store, lookupFrom(mastodon, bluesky))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.Error(t, err)
	var customErr *common.Error
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, common.StatusBadGateway, customErr.StatusCode)

	require.NotNil(t, result)
	assert.Equal(t, postmodels.PostStatusFailed, result.Status)
	assert.Nil(t, result.PublishedAt)
	assert.Equal(t, string(common.PublishErrUnauthorized), result.PlatformErrors["mastodon"])
	assert.Equal(t, string(common.PublishErrUnavailable), result.PlatformErrors["bluesky"])
}

func TestPublishNowAlreadyPublished(t *testing.T) {
	post := newTestPost("internal")
	post.Status = postmodels.PostStatusPublished
	store := &fakeStore{post: post}
	internal := &fakeAdapter{name: "internal"}

	o := NewOrchestrator(store, lookupFrom(internal))
	_, err := o.PublishNow(context.Background(), post.ID)

	assert.ErrorIs(t, err, common.ErrAlreadyPublished)
	assert.Equal(t, int32(0), store.markedCount)
	assert.Equal(t, int32(0), internal.calls)
}

func TestPublishNowNoPlatforms(t *testing.T) {
	store := &fakeStore{post: newTestPost()}

	o := NewOrchestrator(store, lookupFrom())
	_, err := o.PublishNow(context.Background(), store.post.ID)

	assert.ErrorIs(t, err, common.ErrNoTargetPlatform)
	assert.Equal(t, int32(0), store.markedCount)
}

func TestPublishNowUnknownPlatform(t *testing.T) {
	store := &fakeStore{post: newTestPost("internal", "myspace")}
	internal := &fakeAdapter{name: "internal"}

	o := NewOrchestrator(store, lookupFrom(internal))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.NoError(t, err)
	assert.Equal(t, postmodels.PostStatusPublished, result.Status)
	assert.Equal(t, string(common.PublishErrValidationFailed), result.PlatformErrors["myspace"])
}

func TestPublishNowAdapterPanicDoesNotPoisonOthers(t *testing.T) {
	store := &fakeStore{post: newTestPost("internal", "mastodon")}
	internal := &fakeAdapter{name: "internal"}
	mastodon := &fakeAdapter{name: "mastodon", panics: true}

	o := NewOrchestrator(store, lookupFrom(internal, mastodon))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.NoError(t, err)
	assert.Equal(t, postmodels.PostStatusPublished, result.Status)
	assert.Equal(t, string(common.PublishErrUnavailable), result.PlatformErrors["mastodon"])
}

func TestPublishNowValidationFailureSkipsPublish(t *testing.T) {
	store := &fakeStore{post: newTestPost("mastodon")}
	mastodon := &fakeAdapter{
		name:        "mastodon",
		validateErr: common.NewPublishError("mastodon", common.PublishErrValidationFailed, "too long", nil),
	}

	o := NewOrchestrator(store, lookupFrom(mastodon))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.Error(t, err)
	assert.Equal(t, postmodels.PostStatusFailed, result.Status)
	assert.Equal(t, int32(0), mastodon.calls)
}

func TestPublishNowCollectsWarnings(t *testing.T) {
	store := &fakeStore{post: newTestPost("mastodon")}
	mastodon := &fakeAdapter{
		name:   "mastodon",
		result: &platforms.PublishResult{ExternalID: "7", Warnings: []string{"Bỏ qua media https://x/y.mp4: upload thất bại"}},
	}

	o := NewOrchestrator(store, lookupFrom(mastodon))
	result, err := o.PublishNow(context.Background(), store.post.ID)

	require.NoError(t, err)
	require.Len(t, result.Warnings["mastodon"], 1)
}

func TestReduce(t *testing.T) {
	now := int64(1700000000000)

	tests := []struct {
		name        string
		outcomes    []postmodels.PlatformOutcome
		wantStatus  string
		wantTime    bool
		wantFailed  int
	}{
		{
			name: "all published",
			outcomes: []postmodels.PlatformOutcome{
				{Platform: "internal", Status: postmodels.OutcomeStatusPublished},
				{Platform: "mastodon", Status: postmodels.OutcomeStatusPublished},
			},
			wantStatus: postmodels.PostStatusPublished,
			wantTime:   true,
		},
		{
			name: "partial success is published",
			outcomes: []postmodels.PlatformOutcome{
				{Platform: "internal", Status: postmodels.OutcomeStatusPublished},
				{Platform: "mastodon", Status: postmodels.OutcomeStatusFailed, ErrorCode: "rate_limited"},
			},
			wantStatus: postmodels.PostStatusPublished,
			wantTime:   true,
			wantFailed: 1,
		},
		{
			name: "all failed",
			outcomes: []postmodels.PlatformOutcome{
				{Platform: "internal", Status: postmodels.OutcomeStatusFailed, ErrorCode: "platform_unavailable"},
				{Platform: "mastodon", Status: postmodels.OutcomeStatusFailed, ErrorCode: "unauthorized"},
			},
			wantStatus: postmodels.PostStatusFailed,
			wantFailed: 2,
		},
		{
			name:       "no outcomes is failed",
			outcomes:   nil,
			wantStatus: postmodels.PostStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Reduce(tt.outcomes, now)
			assert.Equal(t, tt.wantStatus, agg.Status)
			assert.Len(t, agg.PlatformErrors, tt.wantFailed)
			if tt.wantTime {
				require.NotNil(t, agg.PublishedAt)
				assert.Equal(t, now, *agg.PublishedAt)
			} else {
				assert.Nil(t, agg.PublishedAt)
			}
		})
	}
}

func TestPublishNowGetError(t *testing.T) {
	store := &fakeStore{getErr: errors.New("boom")}
	o := NewOrchestrator(store, lookupFrom())
	_, err := o.PublishNow(context.Background(), primitive.NewObjectID())
	assert.Error(t, err)
}
