package targetcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
)

type countingRepo struct {
	target    *model.WebhookTarget
	getCalls  int
	listCalls int
}

func (r *countingRepo) Get(_ context.Context, id uuid.UUID) (*model.WebhookTarget, error) {
	r.getCalls++
	if r.target == nil || r.target.ID != id {
		return nil, errors.New("not found")
	}
	return r.target, nil
}

func (r *countingRepo) List(context.Context) ([]*model.WebhookTarget, error) {
	return []*model.WebhookTarget{r.target}, nil
}

func (r *countingRepo) ListByEventType(context.Context, model.EventType) ([]*model.WebhookTarget, error) {
	r.listCalls++
	return []*model.WebhookTarget{r.target}, nil
}

func TestGetCachesHits(t *testing.T) {
	target := &model.WebhookTarget{ID: uuid.New(), Name: "erp"}
	repo := &countingRepo{target: target}
	cache := New(repo, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(context.Background(), target.ID)
		require.NoError(t, err)
		assert.Equal(t, target, got)
	}
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	repo := &countingRepo{}
	cache := New(repo, time.Minute)

	id := uuid.New()
	_, err := cache.Get(context.Background(), id)
	require.Error(t, err)
	_, err = cache.Get(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestListByEventTypeCachesHits(t *testing.T) {
	repo := &countingRepo{target: &model.WebhookTarget{ID: uuid.New()}}
	cache := New(repo, time.Minute)

	for i := 0; i < 3; i++ {
		targets, err := cache.ListByEventType(context.Background(), model.EventOrderPlaced)
		require.NoError(t, err)
		assert.Len(t, targets, 1)
	}
	assert.Equal(t, 1, repo.listCalls)
}

func TestInvalidateDropsEntries(t *testing.T) {
	target := &model.WebhookTarget{ID: uuid.New()}
	repo := &countingRepo{target: target}
	cache := New(repo, time.Minute)

	_, err := cache.Get(context.Background(), target.ID)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}
