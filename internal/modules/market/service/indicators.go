package service

import (
	"math"

	"github.com/Regasking/trade-bot/internal/models"
)

const (
	rsiPeriod   = 14
	macdFast    = 12
	macdSlow    = 26
	macdSignal  = 9
	atrPeriod   = 14
	bbPeriod    = 20
	bbDeviation = 2.0
)

func closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// RSI по Уайлдеру: первое среднее SMA, дальше сглаживание. 50 при нехватке данных.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		ch := prices[i] - prices[i-1]
		if ch > 0 {
			avgGain += ch
		} else {
			avgLoss -= ch
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		ch := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if ch > 0 {
			gain = ch
		} else {
			loss = -ch
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD — последние значения линии и сигнальной.
func MACD(prices []float64, fast, slow, signal int) (line, sig float64, ok bool) {
	if len(prices) < slow+signal-1 {
		return 0, 0, false
	}
	f := emaSeries(prices, fast)
	s := emaSeries(prices, slow)

	lines := make([]float64, 0, len(prices)-slow+1)
	for i := slow - 1; i < len(prices); i++ {
		lines = append(lines, f[i]-s[i])
	}
	sig, ok = EMA(lines, signal)
	return lines[len(lines)-1], sig, ok
}

// ATR по Уайлдеру на true range.
func ATR(candles []models.Candle, period int) (float64, bool) {
	if len(candles) < period+1 {
		return 0, false
	}

	tr := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr = append(tr, math.Max(hl, math.Max(hc, lc)))
	}

	atr := 0.0
	for i := 0; i < period; i++ {
		atr += tr[i]
	}
	atr /= float64(period)
	for i := period; i < len(tr); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
	}
	return atr, true
}

func Bollinger(prices []float64, period int, k float64) (upper, middle, lower float64) {
	if len(prices) < period {
		return 0, 0, 0
	}
	window := prices[len(prices)-period:]
	for _, p := range window {
		middle += p
	}
	middle /= float64(period)

	variance := 0.0
	for _, p := range window {
		variance += (p - middle) * (p - middle)
	}
	sd := math.Sqrt(variance / float64(period))
	return middle + k*sd, middle, middle - k*sd
}
