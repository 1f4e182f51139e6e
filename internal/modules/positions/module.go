package positions

import (
	binance "github.com/Regasking/trade-bot/internal/modules/binance/service"
	market "github.com/Regasking/trade-bot/internal/modules/market/service"
	"github.com/Regasking/trade-bot/internal/modules/positions/service"
	quantizer "github.com/Regasking/trade-bot/internal/modules/quantizer/service"
	"github.com/Regasking/trade-bot/internal/notify"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("positions",
		fx.Provide(
			func(c *binance.Client) service.Exchange { return c },
			func(q *quantizer.Quantizer) service.Quantizer { return q },
			func(a *market.Analyzer) service.TargetSource { return a },
			func(n notify.Notifier) service.Notifier { return n },
			service.NewManager,
		),
	)
}
