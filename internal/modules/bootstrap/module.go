package bootstrap

import (
	"context"

	bootstrap "github.com/Regasking/trade-bot/internal/modules/bootstrap/service"
	health "github.com/Regasking/trade-bot/internal/modules/health/service"
	quantizer "github.com/Regasking/trade-bot/internal/modules/quantizer/service"
	"github.com/Regasking/trade-bot/internal/notify"
	"github.com/Regasking/trade-bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			bootstrap.NewWatchlist,
			func(q *quantizer.Quantizer) bootstrap.RulesLoader { return q },
			func(n notify.Notifier) bootstrap.Notifier { return n },
			bootstrap.NewWarmuper,
		),
		fx.Invoke(func(lc fx.Lifecycle, wl *bootstrap.Watchlist, wu *bootstrap.Warmuper, state *health.State) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						syms := wl.Symbols()
						failed := wu.Warmup(ctx, syms)
						logger.Info("[BOOT] warmup done: %d/%d symbols", len(syms)-len(failed), len(syms))
						state.SetReady(true)
					}()
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
