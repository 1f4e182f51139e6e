package market

import (
	binance "github.com/Regasking/trade-bot/internal/modules/binance/service"
	"github.com/Regasking/trade-bot/internal/modules/market/service"
	sentiment "github.com/Regasking/trade-bot/internal/modules/sentiment/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			func(c *binance.Client) service.CandleSource { return c },
			func(c *sentiment.Client) service.SentimentSource { return c },
			service.NewAnalyzer,
		),
	)
}
