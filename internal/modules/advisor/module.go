package advisor

import (
	"context"

	"github.com/Regasking/trade-bot/internal/modules/advisor/service"
	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewCache — Redis, если задан адрес, иначе без кэша.
func NewCache(lc fx.Lifecycle, cfg *config.Config) service.Cache {
	if cfg.Redis.Addr == "" {
		return service.NopCache{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				// кэш необязателен, бот работает и без него
				logger.Warn("[AI] redis %s unavailable: %v", cfg.Redis.Addr, err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
	return service.NewRedisCache(rdb, cfg.AI.CacheTTL)
}

func Module() fx.Option {
	return fx.Module("advisor",
		fx.Provide(
			NewCache,
			service.NewAdvisor,
		),
	)
}
