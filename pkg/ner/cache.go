package ner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// CachedClient memoizes entity extraction keyed by a hash of the input
// text. The cache is best-effort: any Redis failure falls through to the
// wrapped client and is logged at debug level only.
type CachedClient struct {
	inner Client
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedClient(inner Client, redisClient *redis.Client, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, redis: redisClient, ttl: ttl}
}

func (c *CachedClient) ExtractEntities(ctx context.Context, text string) ([]models.Entity, error) {
	key := cacheKey(text)

	if cached, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var entities []models.Entity
		if err := json.Unmarshal(cached, &entities); err == nil {
			return entities, nil
		}
	} else if err != redis.Nil {
		logger.Log.WithError(err).Debug("entity cache read failed")
	}

	entities, err := c.inner.ExtractEntities(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(entities); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Log.WithError(err).Debug("entity cache write failed")
		}
	}

	return entities, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "ner:entities:" + hex.EncodeToString(sum[:])
}
