package service

import (
	"context"
	"fmt"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/pkg/errors"
)

var ErrNotEnoughCandles = errors.New("not enough candles")

const (
	trendWindow   = 50
	rsiOverbought = 70
	rsiOversold   = 30
)

type timeframeWeight struct {
	tf     string
	weight int
}

// дневка весит больше всего
var alignmentFrames = []timeframeWeight{
	{tf: "1d", weight: 3},
	{tf: "4h", weight: 2},
	{tf: "1h", weight: 1},
}

func NeutralAssessment() models.TrendAssessment {
	return models.TrendAssessment{Trend: models.TrendNeutral, RSI: 50}
}

// AnalyzeTimeframe: BULL если EMA20>EMA50, MACD выше сигнала и RSI<70; BEAR зеркально с RSI>30.
func AnalyzeTimeframe(candles []models.Candle) (models.TrendAssessment, error) {
	if len(candles) < trendWindow {
		return NeutralAssessment(), errors.Wrapf(ErrNotEnoughCandles, "have %d, need %d", len(candles), trendWindow)
	}

	px := closes(candles)
	rsi := RSI(px, rsiPeriod)
	line, sig, _ := MACD(px, macdFast, macdSlow, macdSignal)
	ema20, _ := EMA(px, 20)
	ema50, _ := EMA(px, 50)

	a := models.TrendAssessment{
		Trend:     models.TrendNeutral,
		RSI:       rsi,
		MACDDelta: line - sig,
		EMACross:  ema20 > ema50,
	}
	switch {
	case ema20 > ema50 && line > sig && rsi < rsiOverbought:
		a.Trend = models.TrendBull
	case ema20 < ema50 && line < sig && rsi > rsiOversold:
		a.Trend = models.TrendBear
	}
	return a, nil
}

// RecommendationFor: >=5 STRONG_BUY, >=3 BUY, <=1 STRONG_SELL, иначе HOLD.
func RecommendationFor(score int) models.Recommendation {
	switch {
	case score >= 5:
		return models.RecommendationStrongBuy
	case score >= 3:
		return models.RecommendationBuy
	case score <= 1:
		return models.RecommendationStrongSell
	default:
		return models.RecommendationHold
	}
}

// Align считает взвешенное согласие по BULL. Отсутствующий таймфрейм даёт 0.
func Align(frames map[string]models.TrendAssessment) models.AlignmentResult {
	score := 0
	for _, f := range alignmentFrames {
		if a, ok := frames[f.tf]; ok && a.Trend == models.TrendBull {
			score += f.weight
		}
	}
	return models.AlignmentResult{
		Timeframes:     frames,
		Score:          score,
		Recommendation: RecommendationFor(score),
	}
}

func (a *Analyzer) MultiTimeframe(ctx context.Context, symbol string) models.AlignmentResult {
	frames := make(map[string]models.TrendAssessment, len(alignmentFrames))
	for _, f := range alignmentFrames {
		frames[f.tf] = a.assessTimeframe(ctx, symbol, f.tf)
	}
	res := Align(frames)
	logger.Info("[MTF] %s score=%d/6 rec=%s %s", symbol, res.Score, res.Recommendation, describeFrames(frames))
	return res
}

func (a *Analyzer) assessTimeframe(ctx context.Context, symbol, tf string) models.TrendAssessment {
	candles, err := a.candles.GetCandles(ctx, symbol, tf, trendWindow)
	if err != nil {
		logger.Warn("[MTF] %s %s candles: %v", symbol, tf, err)
		return NeutralAssessment()
	}
	res, err := AnalyzeTimeframe(candles)
	if err != nil {
		logger.Warn("[MTF] %s %s: %v", symbol, tf, err)
	}
	return res
}

func describeFrames(frames map[string]models.TrendAssessment) string {
	s := ""
	for _, f := range alignmentFrames {
		s += fmt.Sprintf("%s=%s ", f.tf, frames[f.tf].Trend)
	}
	return s
}
