package service

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/pkg/errors"
)

const (
	snapshotTimeframe = "4h"
	snapshotWindow    = 100
)

// BuildSnapshot — индикаторы для промпта. Цена берётся из последнего закрытия, если live-цены нет.
func BuildSnapshot(symbol string, candles []models.Candle, price float64) (models.IndicatorSnapshot, error) {
	if len(candles) < trendWindow {
		return models.IndicatorSnapshot{}, errors.Wrapf(ErrNotEnoughCandles, "%s snapshot: have %d", symbol, len(candles))
	}
	px := closes(candles)
	if price <= 0 {
		price = px[len(px)-1]
	}

	line, sig, _ := MACD(px, macdFast, macdSlow, macdSignal)
	upper, _, lower := Bollinger(px, bbPeriod, bbDeviation)
	ema20, _ := EMA(px, 20)
	ema50, _ := EMA(px, 50)

	return models.IndicatorSnapshot{
		Symbol:     symbol,
		Price:      price,
		RSI:        RSI(px, rsiPeriod),
		MACD:       line,
		MACDSignal: sig,
		BBUpper:    upper,
		BBLower:    lower,
		EMA20:      ema20,
		EMA50:      ema50,
	}, nil
}

func (a *Analyzer) Snapshot(ctx context.Context, symbol string, price float64) (models.IndicatorSnapshot, error) {
	candles, err := a.candles.GetCandles(ctx, symbol, snapshotTimeframe, snapshotWindow)
	if err != nil {
		return models.IndicatorSnapshot{}, errors.Wrapf(err, "%s snapshot candles", symbol)
	}
	return BuildSnapshot(symbol, candles, price)
}
