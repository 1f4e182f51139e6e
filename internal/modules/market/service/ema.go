package service

// emaState — инкрементальная EMA, стартует с первой цены (adjust=false).
type emaState struct {
	period int
	alpha  float64
	value  float64
	warmup int
}

func newEMA(period int) emaState {
	if period <= 1 {
		period = 1
	}
	return emaState{
		period: period,
		alpha:  2.0 / (float64(period) + 1),
	}
}

func (e *emaState) Update(price float64) {
	if e.warmup == 0 {
		e.value = price
		e.warmup = 1
		return
	}
	e.value = e.alpha*price + (1-e.alpha)*e.value
	if e.warmup < e.period {
		e.warmup++
	}
}

func (e *emaState) Ready() bool    { return e.warmup >= e.period }
func (e *emaState) Value() float64 { return e.value }

// emaSeries — значения EMA на каждой точке ряда.
func emaSeries(values []float64, period int) []float64 {
	e := newEMA(period)
	out := make([]float64, len(values))
	for i, v := range values {
		e.Update(v)
		out[i] = e.Value()
	}
	return out
}

// EMA — последнее значение; ok=false если точек меньше периода.
func EMA(values []float64, period int) (float64, bool) {
	e := newEMA(period)
	for _, v := range values {
		e.Update(v)
	}
	return e.Value(), e.Ready() && len(values) > 0
}
