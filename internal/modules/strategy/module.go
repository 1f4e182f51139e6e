package strategy

import (
	"github.com/Regasking/trade-bot/internal/modules/strategy/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			service.NewScorer,
		),
	)
}
