package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "creator_hub/internal/api/post/models"
	"creator_hub/internal/publisher"
)

type fakeDueSource struct {
	posts []postmodels.Post
	err   error
	limit int64
}

func (s *fakeDueSource) FindDuePosts(ctx context.Context, now int64, limit int64) ([]postmodels.Post, error) {
	s.limit = limit
	return s.posts, s.err
}

type fakeRunner struct {
	published []primitive.ObjectID
	failOn    map[primitive.ObjectID]error
}

func (r *fakeRunner) PublishNow(ctx context.Context, postID primitive.ObjectID) (*publisher.Result, error) {
	if err, ok := r.failOn[postID]; ok {
		return nil, err
	}
	r.published = append(r.published, postID)
	return &publisher.Result{Status: postmodels.PostStatusPublished}, nil
}

func duePost() postmodels.Post {
	return postmodels.Post{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID(), Status: postmodels.PostStatusScheduled}
}

func TestSweepPublishesAllDuePosts(t *testing.T) {
	posts := []postmodels.Post{duePost(), duePost(), duePost()}
	source := &fakeDueSource{posts: posts}
	runner := &fakeRunner{}

	w := NewScheduledPublishWorker(source, runner, 0, 25)
	w.sweep(context.Background())

	assert.Equal(t, int64(25), source.limit)
	assert.Len(t, runner.published, 3)
}

func TestSweepContinuesPastFailedPost(t *testing.T) {
	failing := duePost()
	ok := duePost()
	source := &fakeDueSource{posts: []postmodels.Post{failing, ok}}
	runner := &fakeRunner{
		failOn: map[primitive.ObjectID]error{failing.ID: errors.New("all platforms failed")},
	}

	w := NewScheduledPublishWorker(source, runner, 0, 0)
	w.sweep(context.Background())

	// Bài lỗi không chặn bài còn lại trong batch
	assert.Equal(t, []primitive.ObjectID{ok.ID}, runner.published)
}

func TestSweepSourceErrorDoesNothing(t *testing.T) {
	source := &fakeDueSource{err: errors.New("db down")}
	runner := &fakeRunner{}

	w := NewScheduledPublishWorker(source, runner, 0, 0)
	w.sweep(context.Background())

	assert.Empty(t, runner.published)
}

func TestNewWorkerAppliesDefaults(t *testing.T) {
	w := NewScheduledPublishWorker(&fakeDueSource{}, &fakeRunner{}, 0, 0)
	assert.Equal(t, int64(50), w.batchSize)
	assert.Equal(t, "1m0s", w.interval.String())
}
