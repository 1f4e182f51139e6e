package main

import (
	"context"
	"log"

	"github.com/Regasking/trade-bot/internal/modules/advisor"
	"github.com/Regasking/trade-bot/internal/modules/binance"
	"github.com/Regasking/trade-bot/internal/modules/bootstrap"
	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/internal/modules/health"
	"github.com/Regasking/trade-bot/internal/modules/market"
	"github.com/Regasking/trade-bot/internal/modules/positions"
	"github.com/Regasking/trade-bot/internal/modules/quantizer"
	"github.com/Regasking/trade-bot/internal/modules/sentiment"
	"github.com/Regasking/trade-bot/internal/modules/strategy"
	telegram "github.com/Regasking/trade-bot/internal/modules/telegram_bot"
	"github.com/Regasking/trade-bot/internal/notify"
	"github.com/Regasking/trade-bot/internal/runner"
	"github.com/Regasking/trade-bot/pkg/logger"
	"github.com/Regasking/trade-bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "trade-bot"

func main() {
	app := fx.New(
		config.Module(),
		fx.Module("observability", fx.Invoke(initObservability)),
		health.Module(),
		binance.Module(),
		quantizer.Module(),
		sentiment.Module(),
		market.Module(),
		advisor.Module(),
		strategy.Module(),
		telegram.Module(),
		notify.Module(),
		positions.Module(),
		bootstrap.Module(),
		runner.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}

	// Run ждёт SIGINT/SIGTERM и останавливает хуки
	app.Run()
}

func initObservability(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	if err := logger.Init(cfg.Log.Level); err != nil {
		return err
	}

	_, closer, err := tracing.InitTracer(tracing.Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
	if err != nil {
		logger.Warn("[BOOT] tracer disabled: %v", err)
		closer = func() {}
	}

	logger.Info("[BOOT] %s starting, testnet=%v", serviceName, cfg.Binance.Testnet)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			logger.Sync()
			return nil
		},
	})
	return nil
}
