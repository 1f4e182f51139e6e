package service

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/pkg/errors"
)

const (
	regimeWindow = 200
	regimeBand   = 0.02
)

// ClassifyRegime — EMA50 против EMA200 с полосой ±2%.
func ClassifyRegime(daily []models.Candle) (models.Regime, error) {
	px := closes(daily)
	ema50, ok50 := EMA(px, 50)
	ema200, ok200 := EMA(px, regimeWindow)
	if !ok50 || !ok200 {
		return models.RegimeUnknown, errors.Wrapf(ErrNotEnoughCandles, "regime: have %d, need %d", len(daily), regimeWindow)
	}

	switch {
	case ema50 > ema200*(1+regimeBand):
		return models.RegimeBull, nil
	case ema50 < ema200*(1-regimeBand):
		return models.RegimeBear, nil
	default:
		return models.RegimeSideways, nil
	}
}

// GlobalRegime — режим по дневкам символа; при сбое RegimeUnknown.
func (a *Analyzer) GlobalRegime(ctx context.Context, symbol string) models.Regime {
	daily, err := a.candles.GetCandles(ctx, symbol, "1d", regimeWindow)
	if err != nil {
		logger.Warn("[REGIME] %s candles: %v", symbol, err)
		return models.RegimeUnknown
	}
	r, err := ClassifyRegime(daily)
	if err != nil {
		logger.Warn("[REGIME] %s: %v", symbol, err)
		return models.RegimeUnknown
	}
	logger.Info("[REGIME] %s %s", symbol, r)
	return r
}
