package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
	"github.com/Regasking/trade-bot/pkg/tracing"
)

// trail подтягивает стоп вслед за ценой. Стоп только растёт.
func (m *Manager) trail(ctx context.Context, p models.Position, price float64) models.Position {
	cand, ok := TrailCandidate(p, price, m.opts.TrailActivation, m.opts.TrailPercent)
	if !ok {
		return p
	}
	if px, err := m.quant.AdjustPrice(ctx, p.Symbol, cand); err == nil {
		cand = px
	}
	if cand <= p.StopLoss {
		return p
	}

	old := p.StopLoss
	p.StopLoss = cand
	p.Trailing = true
	p.StopOrderID = m.replaceStop(ctx, p)
	m.update(p)

	logger.Info("[POS] %s trailing stop %.6f -> %.6f (price %.6f, +%.2f%%)",
		p.Symbol, old, cand, price, p.ProfitPercent(price))
	m.notify(ctx, models.SeverityInfo, "🛡 Трейлинг-стоп", fmt.Sprintf(
		"%s\nСтоп: %.6f → %.6f\nЦена: %.6f (%+.2f%%)", p.Symbol, old, cand, price, p.ProfitPercent(price)))
	return p
}

// pyramid доливает в прибыльную позицию: 50% исходного номинала, затем 25%.
func (m *Manager) pyramid(ctx context.Context, p models.Position, price float64) {
	if p.PyramidCount >= m.opts.PyramidMaxAdds || p.ProfitPercent(price) < m.opts.PyramidActivation {
		return
	}
	addUSD := PyramidAddUSD(p)
	if addUSD <= 0 {
		return
	}

	span, ctx := tracing.StartSpan(ctx, "positions.pyramid", "symbol", p.Symbol, "level", p.PyramidCount+1)
	defer span.Finish()

	balance, err := m.exchange.GetBalance(ctx, m.opts.QuoteAsset)
	if err != nil {
		tracing.Fail(span, err)
		logger.Warn("[POS] %s: pyramid balance: %v", p.Symbol, err)
		return
	}
	if balance < addUSD {
		logger.Info("[POS] %s: pyramid skipped, balance %.2f < %.2f", p.Symbol, balance, addUSD)
		return
	}

	qty, err := m.legalQuantity(ctx, p.Symbol, addUSD/price, price)
	if err != nil {
		tracing.Fail(span, err)
		logger.Warn("[POS] %s: pyramid quantity: %v", p.Symbol, err)
		return
	}
	order, err := m.exchange.PlaceOrder(ctx, models.OrderRequest{
		Symbol:        p.Symbol,
		Side:          models.SideBuy,
		Type:          models.OrderMarket,
		Quantity:      qty,
		ClientOrderID: newClientID(),
	})
	if err != nil {
		tracing.Fail(span, err)
		logger.Error("[POS] %s: pyramid buy: %v", p.Symbol, err)
		return
	}
	fillPrice, fillQty := filled(order, price, qty)

	oldEntry := p.EntryPrice
	p.EntryPrice = WeightedEntry(p.EntryPrice, p.Quantity, fillPrice, fillQty)
	total := AddQuantity(p.Quantity, fillQty)
	if q, err := m.quant.AdjustQuantity(ctx, p.Symbol, total); err == nil {
		total = q
	}
	p.Quantity = total
	p.PyramidCount++

	t := m.targets.DynamicTargets(ctx, p.Symbol, p.EntryPrice)
	stop := t.StopLoss
	if p.Trailing {
		stop = math.Max(stop, p.StopLoss)
	}
	if px, err := m.quant.AdjustPrice(ctx, p.Symbol, stop); err == nil {
		stop = px
	}
	if p.Trailing && stop < p.StopLoss {
		stop = p.StopLoss
	}
	p.StopLoss = stop
	if px, err := m.quant.AdjustPrice(ctx, p.Symbol, t.TakeProfit); err == nil {
		p.TakeProfit = px
	} else {
		p.TakeProfit = t.TakeProfit
	}

	// количество выросло, защитный ордер на весь объём
	p.StopOrderID = m.replaceStop(ctx, p)
	m.update(p)

	logger.Info("[POS] %s pyramid #%d qty=+%v @%.6f entry %.6f -> %.6f sl=%.6f tp=%.6f",
		p.Symbol, p.PyramidCount, fillQty, fillPrice, oldEntry, p.EntryPrice, p.StopLoss, p.TakeProfit)
	m.notify(ctx, models.SeveritySuccess, "🔺 Пирамидинг", fmt.Sprintf(
		"%s (#%d)\nДокуплено: %v @ %.6f\nСредний вход: %.6f\nStop Loss: %.6f\nTake Profit: %.6f",
		p.Symbol, p.PyramidCount, fillQty, fillPrice, p.EntryPrice, p.StopLoss, p.TakeProfit))
}
