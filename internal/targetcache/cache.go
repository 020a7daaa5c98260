// Package targetcache decorates the webhook target repository with a TTL
// cache so dispatch hot paths do not hit the configuration store on every
// event.
package targetcache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/model"
	"github.com/matt11seven/fuelogic-enterprise-control-sub000/internal/repository"
)

type Cache struct {
	repo  repository.WebhookTargetRepository
	cache *gocache.Cache
}

// New wraps repo with a cache of the given TTL. Expired entries are swept
// at twice the TTL.
func New(repo repository.WebhookTargetRepository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		repo:  repo,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*model.WebhookTarget, error) {
	key := "target:" + id.String()
	if v, ok := c.cache.Get(key); ok {
		return v.(*model.WebhookTarget), nil
	}

	target, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, target)
	return target, nil
}

func (c *Cache) List(ctx context.Context) ([]*model.WebhookTarget, error) {
	return c.repo.List(ctx)
}

func (c *Cache) ListByEventType(ctx context.Context, eventType model.EventType) ([]*model.WebhookTarget, error) {
	key := "event:" + string(eventType)
	if v, ok := c.cache.Get(key); ok {
		return v.([]*model.WebhookTarget), nil
	}

	targets, err := c.repo.ListByEventType(ctx, eventType)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, targets)
	return targets, nil
}

// Invalidate drops every cached entry. Called when target configuration
// changes upstream.
func (c *Cache) Invalidate() {
	c.cache.Flush()
}

var _ repository.WebhookTargetRepository = (*Cache)(nil)
