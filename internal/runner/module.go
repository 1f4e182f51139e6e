package runner

import (
	"context"

	advisor "github.com/Regasking/trade-bot/internal/modules/advisor/service"
	binance "github.com/Regasking/trade-bot/internal/modules/binance/service"
	bootstrap "github.com/Regasking/trade-bot/internal/modules/bootstrap/service"
	"github.com/Regasking/trade-bot/internal/modules/config"
	health "github.com/Regasking/trade-bot/internal/modules/health/service"
	market "github.com/Regasking/trade-bot/internal/modules/market/service"
	positions "github.com/Regasking/trade-bot/internal/modules/positions/service"
	strategy "github.com/Regasking/trade-bot/internal/modules/strategy/service"
	telegram "github.com/Regasking/trade-bot/internal/modules/telegram_bot/service"
	"github.com/Regasking/trade-bot/internal/notify"

	"go.uber.org/fx"
)

func NewRunner(
	cfg *config.Config,
	wl *bootstrap.Watchlist,
	ex *binance.Client,
	an *market.Analyzer,
	adv *advisor.Advisor,
	sc *strategy.Scorer,
	pm *positions.Manager,
	n notify.Notifier,
	state *health.State,
) *Runner {
	return New(OptionsFromConfig(cfg, wl.Symbols()), Deps{
		Exchange:  ex,
		Analyzer:  an,
		Advisor:   adv,
		Scorer:    sc,
		Positions: pm,
		Notifier:  n,
		Health:    state,
	})
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewRunner,
		),
		// /positions и /stats читают состояние менеджера
		fx.Invoke(func(tg *telegram.Telegram, pm *positions.Manager, ex *binance.Client) {
			if tg != nil {
				tg.SetStatus(pm, ex)
			}
		}),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						defer close(done)
						r.Run(ctx)
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
					}
					return nil
				},
			})
		}),
	)
}
