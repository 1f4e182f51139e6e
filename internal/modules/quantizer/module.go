package quantizer

import (
	binance "github.com/Regasking/trade-bot/internal/modules/binance/service"
	"github.com/Regasking/trade-bot/internal/modules/quantizer/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("quantizer",
		fx.Provide(
			func(c *binance.Client) service.RulesSource { return c },
			service.NewQuantizer,
		),
	)
}
