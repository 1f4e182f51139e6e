package sentiment

import (
	"github.com/Regasking/trade-bot/internal/modules/sentiment/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("sentiment",
		fx.Provide(
			service.NewClient,
		),
	)
}
