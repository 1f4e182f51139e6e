package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	if orderID == "" {
		return errors.Errorf("CancelOrder %s: empty orderId", symbol)
	}
	params := url.Values{
		"symbol":  {symbol},
		"orderId": {orderID},
	}
	if err := c.doSigned(ctx, http.MethodDelete, "/api/v3/order", params, nil); err != nil {
		return errors.Wrapf(err, "cancel %s #%s", symbol, orderID)
	}
	return nil
}
