package service

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
)

func NeutralSentiment() models.SentimentReading {
	return models.SentimentReading{Value: 50, Label: models.SentimentNeutral, Bias: models.BiasNeutral}
}

// BucketSentiment — контрарная трактовка Fear & Greed.
func BucketSentiment(value int) models.SentimentReading {
	r := models.SentimentReading{Value: value}
	switch {
	case value < 25:
		r.Label, r.Bias = models.SentimentExtremeFear, models.BiasBullish
	case value < 45:
		r.Label, r.Bias = models.SentimentFear, models.BiasNeutralBullish
	case value < 55:
		r.Label, r.Bias = models.SentimentNeutral, models.BiasNeutral
	case value < 75:
		r.Label, r.Bias = models.SentimentGreed, models.BiasNeutralBearish
	default:
		r.Label, r.Bias = models.SentimentExtremeGreed, models.BiasBearish
	}
	return r
}

func (a *Analyzer) Sentiment(ctx context.Context) models.SentimentReading {
	if a.sentiment == nil {
		return NeutralSentiment()
	}
	v, err := a.sentiment.FearGreed(ctx)
	if err != nil || v < 0 || v > 100 {
		logger.Warn("[SENTIMENT] fear&greed unavailable (value=%d): %v", v, err)
		return NeutralSentiment()
	}
	r := BucketSentiment(v)
	logger.Info("[SENTIMENT] %d %s (%s)", r.Value, r.Label, r.Bias)
	return r
}
