package notify

import (
	"github.com/Regasking/trade-bot/internal/modules/config"
	telegram "github.com/Regasking/trade-bot/internal/modules/telegram_bot/service"
	"github.com/Regasking/trade-bot/pkg/logger"

	"go.uber.org/fx"
)

// NewNotifier собирает все настроенные каналы; лог есть всегда.
func NewNotifier(cfg *config.Config, tg *telegram.Telegram) Notifier {
	out := Multi{NewStdout()}
	if tg != nil {
		out = append(out, tg)
	}
	if cfg.Discord.WebhookURL != "" {
		out = append(out, NewDiscord(cfg.Discord.WebhookURL, nil))
	}
	logger.Info("[NOTIFY] %d channel(s) enabled", len(out))
	return out
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			NewNotifier,
		),
	)
}
