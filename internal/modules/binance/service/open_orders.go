package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/pkg/errors"
)

func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	var raw []orderResponse
	if err := c.doSigned(ctx, http.MethodGet, "/api/v3/openOrders", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, errors.Wrapf(err, "openOrders %s", symbol)
	}
	out := make([]models.Order, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toModel())
	}
	return out, nil
}
