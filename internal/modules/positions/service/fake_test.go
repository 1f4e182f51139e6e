package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/Regasking/trade-bot/internal/models"
	quantizer "github.com/Regasking/trade-bot/internal/modules/quantizer/service"

	"github.com/pkg/errors"
)

var btcRules = models.SymbolRules{Symbol: "BTCUSDT", StepSize: 0.001, TickSize: 0.01, MinQty: 0.001, MinNotional: 10}

type fakeExchange struct {
	mu      sync.Mutex
	prices  map[string]float64
	balance float64
	open    map[string]models.Order // id -> открытый стоп
	placed  []models.OrderRequest
	cancels []string
	nextID  int

	failSell   bool
	failOrders bool
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		prices:  map[string]float64{"BTCUSDT": 100},
		balance: 10000,
		open:    map[string]models.Order{},
	}
}

func (f *fakeExchange) GetCurrentPrice(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	px, ok := f.prices[symbol]
	if !ok {
		return 0, errors.Errorf("no price for %s", symbol)
	}
	return px, nil
}

func (f *fakeExchange) GetBalance(context.Context, string) (float64, error) {
	return f.balance, nil
}

func (f *fakeExchange) PlaceOrder(_ context.Context, req models.OrderRequest) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSell && req.Side == models.SideSell && req.Type == models.OrderMarket {
		return models.Order{}, errors.New("insufficient balance")
	}
	f.placed = append(f.placed, req)
	f.nextID++
	o := models.Order{
		ID:        strconv.Itoa(f.nextID),
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		StopPrice: req.StopPrice,
	}
	if req.Type == models.OrderStopLossLimit {
		o.Status = "NEW"
		f.open[o.ID] = o
		return o, nil
	}
	o.Status = "FILLED"
	o.Quantity = req.Quantity
	o.AvgPrice = f.prices[req.Symbol]
	return o, nil
}

func (f *fakeExchange) GetOpenOrders(context.Context, string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOrders {
		return nil, errors.New("timeout")
	}
	out := make([]models.Order, 0, len(f.open))
	for _, o := range f.open {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeExchange) CancelOrder(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, id)
	delete(f.open, id)
	return nil
}

func (f *fakeExchange) setPrice(symbol string, px float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = px
}

// fillStops — биржа исполнила все защитные ордера.
func (f *fakeExchange) fillStops() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = map[string]models.Order{}
}

func (f *fakeExchange) ordersOf(t models.OrderType, side models.Side) []models.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderRequest
	for _, r := range f.placed {
		if r.Type == t && r.Side == side {
			out = append(out, r)
		}
	}
	return out
}

type fakeQuantizer struct{ rules models.SymbolRules }

func (q fakeQuantizer) AdjustQuantity(_ context.Context, _ string, raw float64) (float64, error) {
	return quantizer.AdjustQuantity(q.rules, raw), nil
}

func (q fakeQuantizer) AdjustPrice(_ context.Context, _ string, px float64) (float64, error) {
	return quantizer.AdjustPrice(q.rules, px), nil
}

func (q fakeQuantizer) EnsureMinNotional(_ context.Context, _ string, qty, px float64) (quantizer.NotionalResult, error) {
	return quantizer.EnsureMinNotional(q.rules, qty, px), nil
}

// fixedTargets: tp +6%, sl -3%.
type fixedTargets struct{}

func (fixedTargets) DynamicTargets(_ context.Context, _ string, entry float64) models.VolatilityTargets {
	return models.VolatilityTargets{
		TakeProfit: entry * 1.06,
		StopLoss:   entry * 0.97,
		ATRPercent: 3,
		TPPercent:  6,
		SLPercent:  3,
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Title)
	}
	return out
}
