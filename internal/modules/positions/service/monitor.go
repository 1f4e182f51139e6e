package service

import (
	"context"
	"fmt"

	"github.com/Regasking/trade-bot/internal/helper"
	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
	"github.com/Regasking/trade-bot/pkg/tracing"

	"go.uber.org/zap"
)

// MonitorAll проходит по всем открытым позициям. Ошибка одной не мешает остальным.
func (m *Manager) MonitorAll(ctx context.Context) []models.ClosedTrade {
	span, ctx := tracing.StartSpan(ctx, "positions.monitor", "open", m.Count())
	defer span.Finish()

	var closed []models.ClosedTrade
	for _, p := range m.Positions() {
		if ctx.Err() != nil {
			break
		}
		if t, ok := m.monitorOne(ctx, p); ok {
			closed = append(closed, t)
		}
	}
	return closed
}

func (m *Manager) monitorOne(ctx context.Context, p models.Position) (models.ClosedTrade, bool) {
	price, err := m.exchange.GetCurrentPrice(ctx, p.Symbol)
	if err != nil || price <= 0 {
		logger.Warn("[POS] %s: no price, skip monitoring: %v", p.Symbol, err)
		return models.ClosedTrade{}, false
	}

	// исполненный биржей защитный ордер важнее локальной проверки уровней
	if m.stopFilled(ctx, p) {
		return m.reconcile(ctx, p, price)
	}

	switch {
	case price <= p.StopLoss:
		t, err := m.closeAt(ctx, p, price, models.CloseStopLoss)
		if err != nil {
			logger.Error("[POS] %s: stop loss close: %v", p.Symbol, err)
			return models.ClosedTrade{}, false
		}
		return t, true
	case price >= p.TakeProfit:
		t, err := m.closeAt(ctx, p, price, models.CloseTakeProfit)
		if err != nil {
			logger.Error("[POS] %s: take profit close: %v", p.Symbol, err)
			return models.ClosedTrade{}, false
		}
		return t, true
	}

	if !m.Advanced() {
		return models.ClosedTrade{}, false
	}
	p = m.trail(ctx, p, price)
	m.pyramid(ctx, p, price)
	return models.ClosedTrade{}, false
}

// stopFilled — защитного ордера больше нет среди открытых. При ошибке запроса считаем, что он на месте.
func (m *Manager) stopFilled(ctx context.Context, p models.Position) bool {
	if p.StopOrderID == "" {
		return false
	}
	orders, err := m.exchange.GetOpenOrders(ctx, p.Symbol)
	if err != nil {
		logger.Warn("[POS] %s: open orders: %v", p.Symbol, err)
		return false
	}
	for _, o := range orders {
		if o.ID == p.StopOrderID {
			return false
		}
	}
	return true
}

// reconcile учитывает позицию, закрытую на бирже.
func (m *Manager) reconcile(ctx context.Context, p models.Position, price float64) (models.ClosedTrade, bool) {
	reason, exit := models.CloseStopLoss, p.StopLoss
	if price >= p.TakeProfit {
		reason, exit = models.CloseTakeProfit, price
	}

	t := trade(p, exit, reason)
	t.Reconcile = true
	if !m.finish(t) {
		return models.ClosedTrade{}, false
	}
	logger.Info("[POS] %s closed on exchange (%s) exit=%.6f pnl=%.2f", p.Symbol, reason, exit, t.PnL)
	m.notifyClosed(ctx, t)
	return t, true
}

// Close закрывает позицию по рынку вручную.
func (m *Manager) Close(ctx context.Context, symbol string, reason models.CloseReason) (models.ClosedTrade, error) {
	p, ok := m.Position(symbol)
	if !ok {
		return models.ClosedTrade{}, ErrNoPosition
	}
	price, err := m.exchange.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return models.ClosedTrade{}, err
	}
	return m.closeAt(ctx, p, price, reason)
}

func (m *Manager) closeAt(ctx context.Context, p models.Position, price float64, reason models.CloseReason) (t models.ClosedTrade, err error) {
	span, ctx := tracing.StartSpan(ctx, "positions.close", "symbol", p.Symbol, "reason", string(reason))
	defer func() {
		tracing.Fail(span, err)
		span.Finish()
	}()

	if p.StopOrderID != "" {
		if err := m.exchange.CancelOrder(ctx, p.Symbol, p.StopOrderID); err != nil {
			logger.Warn("[POS] %s: cancel stop %s before close: %v", p.Symbol, p.StopOrderID, err)
		}
	}

	order, err := m.exchange.PlaceOrder(ctx, models.OrderRequest{
		Symbol:        p.Symbol,
		Side:          models.SideSell,
		Type:          models.OrderMarket,
		Quantity:      p.Quantity,
		ClientOrderID: newClientID(),
	})
	if err != nil {
		m.notify(ctx, models.SeverityDanger, "❌ Ошибка закрытия",
			fmt.Sprintf("%s: не удалось продать %v: %v", p.Symbol, p.Quantity, err))
		// стоп сняли, ставим обратно
		if p.StopOrderID != "" {
			p.StopOrderID = m.placeStop(ctx, p)
			m.update(p)
		}
		return models.ClosedTrade{}, err
	}
	exit, _ := filled(order, price, p.Quantity)

	t = trade(p, exit, reason)
	if !m.finish(t) {
		return models.ClosedTrade{}, ErrNoPosition
	}
	logger.With(
		zap.String("symbol", p.Symbol),
		zap.String("reason", string(reason)),
		zap.Float64("qty", t.Quantity),
		zap.Float64("exit", exit),
		zap.Float64("pnl", t.PnL),
	).Info("[POS] position closed")
	m.notifyClosed(ctx, t)
	return t, nil
}

func trade(p models.Position, exit float64, reason models.CloseReason) models.ClosedTrade {
	return models.ClosedTrade{
		Symbol:   p.Symbol,
		Entry:    p.EntryPrice,
		Exit:     exit,
		Quantity: p.Quantity,
		PnL:      (exit - p.EntryPrice) * p.Quantity,
		Reason:   reason,
	}
}

func (m *Manager) notifyClosed(ctx context.Context, t models.ClosedTrade) {
	sev, emoji := models.SeveritySuccess, "✅"
	if t.PnL <= 0 {
		sev, emoji = models.SeverityDanger, "🔴"
	}
	text := fmt.Sprintf("%s (%s)\nВход: %.6f\nВыход: %.6f\nP&L: %+.2f USDT (%+.2f%%)",
		t.Symbol, t.Reason, t.Entry, t.Exit, t.PnL, helper.PercentChange(t.Entry, t.Exit))
	if t.Reconcile {
		text += "\nИсполнено биржей"
	}
	m.notify(ctx, sev, emoji+" Позиция закрыта", text)
}
