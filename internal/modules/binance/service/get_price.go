package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// GetCurrentPrice — свежая цена из websocket, иначе REST тикер.
func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	if px, ok := c.GetPrice(symbol); ok {
		return px, nil
	}

	var t struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.doPublic(ctx, http.MethodGet, "/api/v3/ticker/price", url.Values{"symbol": {symbol}}, &t); err != nil {
		return 0, errors.Wrapf(err, "ticker %s", symbol)
	}
	px, err := parsePos("price", t.Price)
	if err != nil {
		return 0, err
	}
	c.SetPrice(symbol, px)
	return px, nil
}

func (c *Client) SetPrice(symbol string, px float64) {
	c.mu.Lock()
	c.prices[symbol] = cachedPrice{px: px, at: c.now()}
	c.mu.Unlock()
}

// GetPrice отдаёт цену из кэша, если она не старше priceMaxAge.
func (c *Client) GetPrice(symbol string) (float64, bool) {
	c.mu.RLock()
	p, ok := c.prices[symbol]
	c.mu.RUnlock()
	if !ok || c.priceMaxAge <= 0 || c.now().Sub(p.at) > c.priceMaxAge {
		return 0, false
	}
	return p.px, true
}
