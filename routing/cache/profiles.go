// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package cache holds the profile cache used for rule engine routing.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/absmach/edgesync/entities"
	"github.com/absmach/edgesync/pkg/errors"
	"github.com/absmach/edgesync/routing"
	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const keyPrefix = "profile"

// Config holds profile cache expirations.
type Config struct {
	LocalTTL time.Duration `env:"LOCAL_TTL" envDefault:"1m"`
	RedisTTL time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

// Cache is a profile cache that can be invalidated.
type Cache interface {
	routing.ProfileCache

	// Remove evicts the profile of entity from every tier.
	Remove(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) error
}

var _ Cache = (*profileCache)(nil)

type profileCache struct {
	local  *gocache.Cache
	client *redis.Client
	ttl    time.Duration
	source routing.ProfileSource
}

// NewCache returns a two tier profile cache. Lookups go to the in-process
// cache, then Redis and finally to source; hits are written back to the
// faster tiers.
func NewCache(client *redis.Client, source routing.ProfileSource, cfg Config) Cache {
	return &profileCache{
		local:  gocache.New(cfg.LocalTTL, 2*cfg.LocalTTL),
		client: client,
		ttl:    cfg.RedisTTL,
		source: source,
	}
}

func (pc *profileCache) Get(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) (routing.Profile, error) {
	key := cacheKey(tenantID, entity)
	if v, ok := pc.local.Get(key); ok {
		return v.(routing.Profile), nil
	}

	// Redis is a best-effort tier; its failures fall through to the source.
	if data, err := pc.client.Get(ctx, key).Bytes(); err == nil {
		var p routing.Profile
		if err := json.Unmarshal(data, &p); err == nil {
			pc.local.SetDefault(key, p)
			return p, nil
		}
	}

	p, err := pc.source.Profile(ctx, tenantID, entity)
	if err != nil {
		return routing.Profile{}, err
	}
	pc.local.SetDefault(key, p)
	if data, err := json.Marshal(p); err == nil {
		pc.client.Set(ctx, key, data, pc.ttl)
	}

	return p, nil
}

func (pc *profileCache) Remove(ctx context.Context, tenantID uuid.UUID, entity entities.EntityID) error {
	key := cacheKey(tenantID, entity)
	pc.local.Delete(key)
	if err := pc.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(errors.ErrRemoveEntity, err)
	}

	return nil
}

func cacheKey(tenantID uuid.UUID, entity entities.EntityID) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, tenantID, entity.Type, entity.ID)
}
