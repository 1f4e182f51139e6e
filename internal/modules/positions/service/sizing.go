package service

import (
	"math"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/shopspring/decimal"
)

// лимит стоп-лимит ордера ниже стоп-цены
const stopLimitOffset = 0.995

type riskTier struct {
	minConfidence float64
	percent       float64
}

var riskTiers = []riskTier{
	{80, 3},
	{70, 2.5},
	{60, 2},
	{50, 1.5},
}

// RiskPercent — доля баланса в процентах по уверенности AI; 0 значит не входим.
func RiskPercent(confidence float64) float64 {
	for _, t := range riskTiers {
		if confidence >= t.minConfidence {
			return t.percent
		}
	}
	return 0
}

func RegimeMultiplier(r models.Regime) float64 {
	switch r {
	case models.RegimeBull:
		return 1.2
	case models.RegimeBear:
		return 0.5
	default:
		// SIDEWAYS и неизвестный режим
		return 0.8
	}
}

// AdvancedSizeUSD — баланс × риск по уверенности × множитель режима.
func AdvancedSizeUSD(balance, confidence float64, regime models.Regime) float64 {
	return balance * RiskPercent(confidence) / 100 * RegimeMultiplier(regime)
}

// BasicSizeUSD — размер от AI, но не больше maxRisk% баланса.
func BasicSizeUSD(balance, aiSize, maxRiskPercent float64) float64 {
	limit := balance * maxRiskPercent / 100
	if aiSize <= 0 {
		return limit
	}
	return math.Min(aiSize, limit)
}

// BasicTargets берёт уровни AI, если они по разные стороны от входа, иначе процент стопа.
func BasicTargets(entry float64, ai models.AISuggestion, stopLossPercent float64) (stop, take float64) {
	if ai.StopLoss > 0 && ai.StopLoss < entry && ai.TakeProfit > entry {
		return ai.StopLoss, ai.TakeProfit
	}
	return entry * (1 - stopLossPercent/100), entry * (1 + 2*stopLossPercent/100)
}

// TrailCandidate — новый стоп price×(1-trail%), если прибыль выше порога и стоп растёт.
func TrailCandidate(p models.Position, price, activationPercent, trailPercent float64) (float64, bool) {
	if p.ProfitPercent(price) <= activationPercent {
		return 0, false
	}
	cand := price * (1 - trailPercent/100)
	if cand <= p.StopLoss {
		return 0, false
	}
	return cand, true
}

var pyramidFractions = []float64{0.5, 0.25}

// PyramidAddUSD — объём доливки от исходного номинала; 0 после лимита.
func PyramidAddUSD(p models.Position) float64 {
	if p.PyramidCount < 0 || p.PyramidCount >= len(pyramidFractions) {
		return 0
	}
	return p.OriginalNotional * pyramidFractions[p.PyramidCount]
}

// WeightedEntry — средняя цена входа с учётом доливки.
func WeightedEntry(entry, qty, addPrice, addQty float64) float64 {
	total := qty + addQty
	if total <= 0 {
		return entry
	}
	return (entry*qty + addPrice*addQty) / total
}

// AddQuantity складывает количества в decimal: сумма кратных шагу остаётся кратной.
func AddQuantity(qty, addQty float64) float64 {
	return decimal.NewFromFloat(qty).Add(decimal.NewFromFloat(addQty)).InexactFloat64()
}
