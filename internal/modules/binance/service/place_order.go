package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Status              string `json:"status"`
	Type                string `json:"type"`
	Side                string `json:"side"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	StopPrice           string `json:"stopPrice"`
}

func (r orderResponse) toModel() models.Order {
	o := models.Order{
		ID:            strconv.FormatInt(r.OrderID, 10),
		ClientOrderID: r.ClientOrderID,
		Symbol:        r.Symbol,
		Side:          models.Side(r.Side),
		Type:          models.OrderType(r.Type),
		Status:        r.Status,
	}
	o.Quantity, _ = strconv.ParseFloat(r.ExecutedQty, 64)
	o.StopPrice, _ = strconv.ParseFloat(r.StopPrice, 64)
	if quote, err := strconv.ParseFloat(r.CummulativeQuoteQty, 64); err == nil && o.Quantity > 0 {
		o.AvgPrice = quote / o.Quantity
	}
	return o
}

// PlaceOrder — MARKET / LIMIT / STOP_LOSS_LIMIT. Количество и цены уже квантованы.
func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	if req.Quantity <= 0 {
		return models.Order{}, errors.Errorf("PlaceOrder %s: quantity <= 0", req.Symbol)
	}

	params := url.Values{
		"symbol":           {req.Symbol},
		"side":             {string(req.Side)},
		"type":             {string(req.Type)},
		"quantity":         {formatFloat(req.Quantity)},
		"newOrderRespType": {"FULL"},
	}
	if req.ClientOrderID != "" {
		params.Set("newClientOrderId", req.ClientOrderID)
	}

	switch req.Type {
	case models.OrderMarket:
	case models.OrderLimit:
		if req.Price <= 0 {
			return models.Order{}, errors.Errorf("PlaceOrder %s: LIMIT without price", req.Symbol)
		}
		params.Set("price", formatFloat(req.Price))
		params.Set("timeInForce", "GTC")
	case models.OrderStopLossLimit:
		if req.Price <= 0 || req.StopPrice <= 0 {
			return models.Order{}, errors.Errorf("PlaceOrder %s: STOP_LOSS_LIMIT needs price and stopPrice", req.Symbol)
		}
		params.Set("price", formatFloat(req.Price))
		params.Set("stopPrice", formatFloat(req.StopPrice))
		params.Set("timeInForce", "GTC")
	default:
		return models.Order{}, errors.Errorf("PlaceOrder %s: unsupported type %q", req.Symbol, req.Type)
	}

	log := logger.With(
		zap.String("symbol", req.Symbol),
		zap.String("side", string(req.Side)),
		zap.String("type", string(req.Type)),
		zap.String("quantity", params.Get("quantity")),
		zap.String("client_id", req.ClientOrderID),
	)

	var resp orderResponse
	if err := c.doSigned(ctx, http.MethodPost, "/api/v3/order", params, &resp); err != nil {
		log.Warn("[BINANCE] order rejected", zap.Error(err))
		return models.Order{}, errors.Wrapf(err, "order %s %s %s", req.Symbol, req.Side, req.Type)
	}
	o := resp.toModel()
	log.Debug("[BINANCE] order placed", zap.String("order_id", o.ID), zap.String("status", o.Status))
	return o, nil
}
