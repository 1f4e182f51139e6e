package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Regasking/trade-bot/internal/models"

	"github.com/pkg/errors"
)

type symbolFilter struct {
	FilterType  string `json:"filterType"`
	StepSize    string `json:"stepSize"`
	MinQty      string `json:"minQty"`
	TickSize    string `json:"tickSize"`
	MinNotional string `json:"minNotional"`
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol  string         `json:"symbol"`
		Status  string         `json:"status"`
		Filters []symbolFilter `json:"filters"`
	} `json:"symbols"`
}

// GetSymbolRules — LOT_SIZE / PRICE_FILTER / NOTIONAL (MIN_NOTIONAL на старых символах).
func (c *Client) GetSymbolRules(ctx context.Context, symbol string) (models.SymbolRules, error) {
	var info exchangeInfo
	if err := c.doPublic(ctx, http.MethodGet, "/api/v3/exchangeInfo", url.Values{"symbol": {symbol}}, &info); err != nil {
		return models.SymbolRules{}, errors.Wrapf(err, "exchangeInfo %s", symbol)
	}
	if len(info.Symbols) == 0 {
		return models.SymbolRules{}, errors.Errorf("symbol %s not found", symbol)
	}

	s := info.Symbols[0]
	rules := models.SymbolRules{Symbol: s.Symbol}
	var err error
	for _, f := range s.Filters {
		switch f.FilterType {
		case "LOT_SIZE":
			if rules.StepSize, err = parsePos("stepSize", f.StepSize); err != nil {
				return models.SymbolRules{}, err
			}
			// minQty бывает 0, тогда ограничивает только шаг
			rules.MinQty, _ = strconv.ParseFloat(f.MinQty, 64)
		case "PRICE_FILTER":
			if rules.TickSize, err = parsePos("tickSize", f.TickSize); err != nil {
				return models.SymbolRules{}, err
			}
		case "NOTIONAL", "MIN_NOTIONAL":
			rules.MinNotional, _ = strconv.ParseFloat(f.MinNotional, 64)
		}
	}

	if rules.StepSize == 0 || rules.TickSize == 0 {
		return models.SymbolRules{}, errors.Errorf("symbol %s: LOT_SIZE/PRICE_FILTER missing", symbol)
	}
	return rules, nil
}
