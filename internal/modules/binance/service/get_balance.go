package service

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

// GetBalance — свободный остаток актива.
func (c *Client) GetBalance(ctx context.Context, asset string) (float64, error) {
	var acc struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := c.doSigned(ctx, http.MethodGet, "/api/v3/account", nil, &acc); err != nil {
		return 0, errors.Wrap(err, "account")
	}

	for _, b := range acc.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "parse %s free %q", asset, b.Free)
		}
		return free, nil
	}
	return 0, nil
}
