package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) (models.AISuggestion, bool)
	Set(ctx context.Context, key string, s models.AISuggestion)
}

type NopCache struct{}

func (NopCache) Get(context.Context, string) (models.AISuggestion, bool) { return models.AISuggestion{}, false }
func (NopCache) Set(context.Context, string, models.AISuggestion)        {}

// CacheKey — ai:suggestion:<symbol>:<md5 снапшота>. Те же свечи дают тот же ответ.
func CacheKey(snap models.IndicatorSnapshot) string {
	data, _ := sonic.Marshal(snap)
	sum := md5.Sum(data)
	return fmt.Sprintf("ai:suggestion:%s:%s", snap.Symbol, hex.EncodeToString(sum[:]))
}

// RedisCache хранит ответы модели с TTL, при чтении проверяет их заново. Ошибки Redis только логируются.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.AISuggestion, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("[AI] cache get %s: %v", key, err)
		}
		return models.AISuggestion{}, false
	}

	var s models.AISuggestion
	if err := sonic.Unmarshal(data, &s); err != nil {
		logger.Warn("[AI] cache decode %s: %v", key, err)
		return models.AISuggestion{}, false
	}
	// в Redis мог писать кто угодно
	s, err = Revalidate(s)
	if err != nil {
		logger.Warn("[AI] cache entry %s dropped: %v", key, err)
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			logger.Warn("[AI] cache del %s: %v", key, err)
		}
		return models.AISuggestion{}, false
	}
	return s, true
}

func (c *RedisCache) Set(ctx context.Context, key string, s models.AISuggestion) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("[AI] cache set %s: %v", key, err)
	}
}
