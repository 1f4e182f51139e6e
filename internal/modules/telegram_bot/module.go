package telegram

import (
	"context"

	"github.com/Regasking/trade-bot/internal/modules/telegram_bot/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				if t == nil {
					return
				}
				ctx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						t.Start(ctx)
						return nil
					},
					OnStop: func(context.Context) error {
						cancel()
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
