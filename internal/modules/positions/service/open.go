package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
	"github.com/Regasking/trade-bot/pkg/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Open открывает позицию по принятому BUY-сигналу.
func (m *Manager) Open(ctx context.Context, symbol string, ai models.AISuggestion, regime models.Regime) (pos models.Position, err error) {
	span, ctx := tracing.StartSpan(ctx, "positions.open", "symbol", symbol, "regime", string(regime))
	defer func() {
		tracing.Fail(span, err)
		span.Finish()
	}()

	if m.Has(symbol) {
		return models.Position{}, errors.Wrap(ErrPositionExists, symbol)
	}
	if n := m.Count(); n >= m.opts.MaxPositions {
		logger.Warn("[POS] %s: BUY rejected, %d/%d positions open", symbol, n, m.opts.MaxPositions)
		m.notify(ctx, models.SeverityInfo, "⚠️ Лимит позиций",
			fmt.Sprintf("%s: сигнал BUY пропущен, открыто %d/%d", symbol, n, m.opts.MaxPositions))
		return models.Position{}, errors.Wrapf(ErrMaxPositions, "%s: %d/%d", symbol, n, m.opts.MaxPositions)
	}

	balance, err := m.exchange.GetBalance(ctx, m.opts.QuoteAsset)
	if err != nil {
		return models.Position{}, errors.Wrapf(err, "%s: get balance", symbol)
	}
	price, err := m.exchange.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return models.Position{}, errors.Wrapf(err, "%s: get price", symbol)
	}
	if price <= 0 {
		return models.Position{}, errors.Errorf("%s: bad price %v", symbol, price)
	}

	var sizeUSD float64
	if m.Advanced() {
		if RiskPercent(ai.Confidence) == 0 {
			return models.Position{}, errors.Wrapf(ErrLowConfidence, "%s: %.0f%%", symbol, ai.Confidence)
		}
		sizeUSD = AdvancedSizeUSD(balance, ai.Confidence, regime)
	} else {
		sizeUSD = BasicSizeUSD(balance, ai.PositionSizeUSD, m.opts.MaxRiskPercent)
	}
	if sizeUSD < m.opts.MinPositionUSD {
		return models.Position{}, errors.Wrapf(ErrSizeTooSmall, "%s: $%.2f < $%.2f", symbol, sizeUSD, m.opts.MinPositionUSD)
	}

	qty, err := m.legalQuantity(ctx, symbol, sizeUSD/price, price)
	if err != nil {
		return models.Position{}, err
	}

	order, err := m.exchange.PlaceOrder(ctx, models.OrderRequest{
		Symbol:        symbol,
		Side:          models.SideBuy,
		Type:          models.OrderMarket,
		Quantity:      qty,
		ClientOrderID: newClientID(),
	})
	if err != nil {
		return models.Position{}, errors.Wrapf(err, "%s: market buy", symbol)
	}
	fillPrice, fillQty := filled(order, price, qty)

	pos = models.Position{
		Symbol:           symbol,
		EntryPrice:       fillPrice,
		Quantity:         fillQty,
		OriginalQuantity: fillQty,
		OriginalNotional: fillPrice * fillQty,
		OpenedAt:         m.now(),
	}
	pos.Updated = pos.OpenedAt

	if m.Advanced() {
		t := m.targets.DynamicTargets(ctx, symbol, fillPrice)
		pos.StopLoss, pos.TakeProfit = t.StopLoss, t.TakeProfit
	} else {
		pos.StopLoss, pos.TakeProfit = BasicTargets(fillPrice, ai, m.opts.StopLossPercent)
	}
	if px, err := m.quant.AdjustPrice(ctx, symbol, pos.StopLoss); err == nil {
		pos.StopLoss = px
	}
	if px, err := m.quant.AdjustPrice(ctx, symbol, pos.TakeProfit); err == nil {
		pos.TakeProfit = px
	}

	pos.StopOrderID = m.placeStop(ctx, pos)
	m.store(pos)

	logger.With(
		zap.String("symbol", symbol),
		zap.Float64("qty", pos.Quantity),
		zap.Float64("entry", pos.EntryPrice),
		zap.Float64("sl", pos.StopLoss),
		zap.Float64("tp", pos.TakeProfit),
		zap.Float64("size_usd", pos.OriginalNotional),
		zap.String("stop_order", pos.StopOrderID),
	).Info("[POS] position opened")
	m.notify(ctx, models.SeveritySuccess, "🟢 Позиция открыта", fmt.Sprintf(
		"%s\nВход: %.6f\nКол-во: %v ($%.2f)\nStop Loss: %.6f\nTake Profit: %.6f\nУверенность AI: %.0f%%",
		symbol, pos.EntryPrice, pos.Quantity, pos.OriginalNotional, pos.StopLoss, pos.TakeProfit, ai.Confidence))

	return pos, nil
}

// legalQuantity квантует количество и добивает до minNotional.
func (m *Manager) legalQuantity(ctx context.Context, symbol string, raw, price float64) (float64, error) {
	qty, err := m.quant.AdjustQuantity(ctx, symbol, raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s: adjust quantity", symbol)
	}
	res, err := m.quant.EnsureMinNotional(ctx, symbol, qty, price)
	if err != nil {
		return 0, errors.Wrapf(err, "%s: min notional", symbol)
	}
	if res.Adjusted {
		logger.Warn("[POS] %s: quantity %v raised to %v for min notional ($%.2f)", symbol, qty, res.Quantity, res.Notional)
	}
	if res.Quantity <= 0 {
		return 0, errors.Wrapf(ErrSizeTooSmall, "%s: zero quantity", symbol)
	}
	return res.Quantity, nil
}

// placeStop ставит защитный STOP_LOSS_LIMIT на всё количество. Пустой id: стоп только локальный.
func (m *Manager) placeStop(ctx context.Context, p models.Position) string {
	limit, err := m.quant.AdjustPrice(ctx, p.Symbol, p.StopLoss*stopLimitOffset)
	if err != nil {
		logger.Error("[POS] %s: stop limit price: %v", p.Symbol, err)
		return ""
	}
	order, err := m.exchange.PlaceOrder(ctx, models.OrderRequest{
		Symbol:        p.Symbol,
		Side:          models.SideSell,
		Type:          models.OrderStopLossLimit,
		Quantity:      p.Quantity,
		Price:         limit,
		StopPrice:     p.StopLoss,
		ClientOrderID: newClientID(),
	})
	if err != nil {
		logger.Error("[POS] %s: place protective stop at %.6f: %v", p.Symbol, p.StopLoss, err)
		m.notify(ctx, models.SeverityDanger, "⚠️ Стоп не выставлен",
			fmt.Sprintf("%s: защитный ордер на %.6f не принят биржей, стоп отслеживается ботом", p.Symbol, p.StopLoss))
		return ""
	}
	return order.ID
}

// replaceStop снимает текущий защитный ордер и ставит новый.
func (m *Manager) replaceStop(ctx context.Context, p models.Position) string {
	if p.StopOrderID != "" {
		if err := m.exchange.CancelOrder(ctx, p.Symbol, p.StopOrderID); err != nil {
			logger.Warn("[POS] %s: cancel stop %s: %v", p.Symbol, p.StopOrderID, err)
		}
	}
	return m.placeStop(ctx, p)
}

func filled(o models.Order, price, qty float64) (float64, float64) {
	fillPrice, fillQty := o.AvgPrice, o.Quantity
	if fillPrice <= 0 {
		fillPrice = price
	}
	if fillQty <= 0 {
		fillQty = qty
	}
	return fillPrice, fillQty
}

// newClientID — не длиннее 36 символов, как требует биржа.
func newClientID() string {
	return "tb" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
