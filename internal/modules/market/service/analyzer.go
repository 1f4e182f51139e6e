package service

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"
)

type CandleSource interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

type SentimentSource interface {
	FearGreed(ctx context.Context) (int, error)
}

// Analyzer — тренд по таймфреймам, режим рынка, цели по ATR, сентимент.
// Любой сбой источника заменяется нейтральным значением.
type Analyzer struct {
	candles   CandleSource
	sentiment SentimentSource
}

func NewAnalyzer(candles CandleSource, sentiment SentimentSource) *Analyzer {
	return &Analyzer{candles: candles, sentiment: sentiment}
}
