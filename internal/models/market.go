package models

import "time"

type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

type Trend string

const (
	TrendBull    Trend = "BULL"
	TrendBear    Trend = "BEAR"
	TrendNeutral Trend = "NEUTRAL"
)

// TrendAssessment — классификация одного таймфрейма.
type TrendAssessment struct {
	Trend     Trend
	RSI       float64
	MACDDelta float64 // macd line - signal
	EMACross  bool    // ema20 > ema50
}

type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "STRONG_BUY"
	RecommendationBuy        Recommendation = "BUY"
	RecommendationHold       Recommendation = "HOLD"
	RecommendationSell       Recommendation = "SELL"
	RecommendationStrongSell Recommendation = "STRONG_SELL"
)

type AlignmentResult struct {
	Timeframes     map[string]TrendAssessment // "1d" / "4h" / "1h"
	Score          int                        // [0,6]
	Recommendation Recommendation
}

type Regime string

const (
	RegimeUnknown  Regime = ""
	RegimeBull     Regime = "BULL"
	RegimeBear     Regime = "BEAR"
	RegimeSideways Regime = "SIDEWAYS"
)

type VolatilityTargets struct {
	TakeProfit float64
	StopLoss   float64
	ATRPercent float64
	TPPercent  float64
	SLPercent  float64
}

type SentimentLabel string

const (
	SentimentExtremeFear  SentimentLabel = "EXTREME_FEAR"
	SentimentFear         SentimentLabel = "FEAR"
	SentimentNeutral      SentimentLabel = "NEUTRAL"
	SentimentGreed        SentimentLabel = "GREED"
	SentimentExtremeGreed SentimentLabel = "EXTREME_GREED"
)

type Bias string

const (
	BiasBullish        Bias = "BULLISH"
	BiasNeutralBullish Bias = "NEUTRAL_BULLISH"
	BiasNeutral        Bias = "NEUTRAL"
	BiasNeutralBearish Bias = "NEUTRAL_BEARISH"
	BiasBearish        Bias = "BEARISH"
)

type SentimentReading struct {
	Value int // [0,100]
	Label SentimentLabel
	Bias  Bias
}
