package binance

import (
	"context"

	"github.com/Regasking/trade-bot/internal/modules/binance/service"
	bootstrap "github.com/Regasking/trade-bot/internal/modules/bootstrap/service"
	health "github.com/Regasking/trade-bot/internal/modules/health/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("binance",
		fx.Provide(
			service.NewClient,
		),
		// websocket цены живут всё время работы приложения
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, wl *bootstrap.Watchlist, state *health.State) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go c.StreamPrices(ctx, wl.Symbols(), state.SetWSConnected)
					return nil
				},
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
