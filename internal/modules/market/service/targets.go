package service

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
)

const targetsWindow = 50

type atrBucket struct {
	below float64 // atr% строго меньше
	tp    float64
	sl    float64
}

var atrBuckets = []atrBucket{
	{below: 2, tp: 4, sl: 2},
	{below: 4, tp: 6, sl: 3},
}

var wideBucket = atrBucket{tp: 10, sl: 4}

// fallbackATRPercent — средняя корзина, если ATR посчитать не удалось.
const fallbackATRPercent = 3.0

func bucketFor(atrPct float64) atrBucket {
	for _, b := range atrBuckets {
		if atrPct < b.below {
			return b
		}
	}
	return wideBucket
}

func targetsFrom(entry, atrPct float64, b atrBucket) models.VolatilityTargets {
	return models.VolatilityTargets{
		TakeProfit: entry * (1 + b.tp/100),
		StopLoss:   entry * (1 - b.sl/100),
		ATRPercent: atrPct,
		TPPercent:  b.tp,
		SLPercent:  b.sl,
	}
}

// TargetsFromATR — TP/SL от волатильности: <2% -> +4/-2, <4% -> +6/-3, иначе +10/-4.
func TargetsFromATR(entry, atr float64) models.VolatilityTargets {
	if entry <= 0 || atr <= 0 {
		return FallbackTargets(entry)
	}
	pct := atr / entry * 100
	return targetsFrom(entry, pct, bucketFor(pct))
}

func FallbackTargets(entry float64) models.VolatilityTargets {
	return targetsFrom(entry, fallbackATRPercent, atrBuckets[1])
}

func (a *Analyzer) DynamicTargets(ctx context.Context, symbol string, entry float64) models.VolatilityTargets {
	candles, err := a.candles.GetCandles(ctx, symbol, "4h", targetsWindow)
	if err != nil {
		logger.Warn("[TARGETS] %s candles: %v, using fallback", symbol, err)
		return FallbackTargets(entry)
	}
	atr, ok := ATR(candles, atrPeriod)
	if !ok {
		logger.Warn("[TARGETS] %s: not enough candles for ATR (%d), using fallback", symbol, len(candles))
		return FallbackTargets(entry)
	}
	t := TargetsFromATR(entry, atr)
	logger.Info("[TARGETS] %s atr=%.2f%% tp=+%.0f%% sl=-%.0f%%", symbol, t.ATRPercent, t.TPPercent, t.SLPercent)
	return t
}
