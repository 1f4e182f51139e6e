package service

import (
	"context"
	"math"
	"sync"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrRulesUnavailable — у биржи нет фильтров по символу. Прерывает только текущий ордер.
var ErrRulesUnavailable = errors.New("symbol rules unavailable")

// minNotionalMargin — запас сверх минимального notional при автокоррекции.
const minNotionalMargin = 1.1

type RulesSource interface {
	GetSymbolRules(ctx context.Context, symbol string) (models.SymbolRules, error)
}

type Precision struct {
	Quantity int32
	Price    int32
}

type NotionalResult struct {
	Quantity float64
	Notional float64
	Adjusted bool
}

// Quantizer приводит количество и цену к шагам биржи. Правила кэшируются на всё время жизни процесса.
type Quantizer struct {
	src RulesSource

	mu    sync.RWMutex
	rules map[string]models.SymbolRules
}

func NewQuantizer(src RulesSource) *Quantizer {
	return &Quantizer{
		src:   src,
		rules: make(map[string]models.SymbolRules),
	}
}

// Rules — fetch-once. Ошибка источника не кэшируется.
func (q *Quantizer) Rules(ctx context.Context, symbol string) (models.SymbolRules, error) {
	q.mu.RLock()
	r, ok := q.rules[symbol]
	q.mu.RUnlock()
	if ok {
		return r, nil
	}

	r, err := q.src.GetSymbolRules(ctx, symbol)
	if err != nil {
		return models.SymbolRules{}, errors.Wrapf(ErrRulesUnavailable, "%s: %v", symbol, err)
	}
	if r.StepSize <= 0 || r.TickSize <= 0 {
		return models.SymbolRules{}, errors.Wrapf(ErrRulesUnavailable, "%s: step=%v tick=%v", symbol, r.StepSize, r.TickSize)
	}

	q.mu.Lock()
	q.rules[symbol] = r
	q.mu.Unlock()
	return r, nil
}

func (q *Quantizer) PrecisionFor(ctx context.Context, symbol string) (Precision, error) {
	r, err := q.Rules(ctx, symbol)
	if err != nil {
		return Precision{}, err
	}
	return Precision{
		Quantity: decimals(r.StepSize),
		Price:    decimals(r.TickSize),
	}, nil
}

func (q *Quantizer) AdjustQuantity(ctx context.Context, symbol string, rawQty float64) (float64, error) {
	r, err := q.Rules(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return AdjustQuantity(r, rawQty), nil
}

// AdjustPrice — цена вниз к шагу tickSize.
func (q *Quantizer) AdjustPrice(ctx context.Context, symbol string, price float64) (float64, error) {
	r, err := q.Rules(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return AdjustPrice(r, price), nil
}

func (q *Quantizer) EnsureMinNotional(ctx context.Context, symbol string, qty, price float64) (NotionalResult, error) {
	r, err := q.Rules(ctx, symbol)
	if err != nil {
		return NotionalResult{}, err
	}
	if price <= 0 {
		return NotionalResult{}, errors.Errorf("%s: price must be positive, got %v", symbol, price)
	}
	return EnsureMinNotional(r, qty, price), nil
}

// decimals — round(-log10(step)), не меньше 0.
func decimals(step float64) int32 {
	if step <= 0 || step >= 1 {
		return 0
	}
	return int32(math.Round(-math.Log10(step)))
}

// AdjustQuantity: округление до точности, вниз к кратному stepSize, повторное округление, затем не меньше minQty.
func AdjustQuantity(r models.SymbolRules, rawQty float64) float64 {
	prec := decimals(r.StepSize)
	step := decimal.NewFromFloat(r.StepSize)

	qty := decimal.NewFromFloat(rawQty).Round(prec)
	qty = floorToStep(qty, step).Round(prec)

	minQty := decimal.NewFromFloat(r.MinQty)
	if qty.LessThan(minQty) {
		// minQty не всегда кратен шагу, берём ближайший кратный сверху
		qty = ceilToStep(minQty, step).Round(prec)
	}
	if qty.IsNegative() {
		qty = decimal.Zero
	}

	f, _ := qty.Float64()
	return f
}

func AdjustPrice(r models.SymbolRules, price float64) float64 {
	prec := decimals(r.TickSize)
	tick := decimal.NewFromFloat(r.TickSize)
	px := floorToStep(decimal.NewFromFloat(price).Round(prec+2), tick).Round(prec)
	f, _ := px.Float64()
	return f
}

// EnsureMinNotional пересчитывает количество как minNotional*1.1/price, если notional ниже минимума.
func EnsureMinNotional(r models.SymbolRules, qty, price float64) NotionalResult {
	px := decimal.NewFromFloat(price)
	minNotional := decimal.NewFromFloat(r.MinNotional)

	q := decimal.NewFromFloat(qty)
	if !q.Mul(px).LessThan(minNotional) {
		n, _ := q.Mul(px).Float64()
		return NotionalResult{Quantity: qty, Notional: n}
	}

	target := minNotional.Mul(decimal.NewFromFloat(minNotionalMargin)).Div(px)
	tf, _ := target.Float64()
	q = decimal.NewFromFloat(AdjustQuantity(r, tf))

	// крупный шаг может съесть запас: добиваем шагами, их не больше двух
	step := decimal.NewFromFloat(r.StepSize)
	for step.IsPositive() && q.Mul(px).LessThan(minNotional) {
		q = q.Add(step)
	}

	out, _ := q.Float64()
	n, _ := q.Mul(px).Float64()
	return NotionalResult{Quantity: out, Notional: n, Adjusted: true}
}

func floorToStep(v, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return v
	}
	return v.Div(step).Floor().Mul(step)
}

func ceilToStep(v, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return v
	}
	return v.Div(step).Ceil().Mul(step)
}
