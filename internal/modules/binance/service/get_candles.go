package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Regasking/trade-bot/internal/helper"
	"github.com/Regasking/trade-bot/internal/models"

	"github.com/pkg/errors"
)

// GetCandles — klines от старых к новым.
func (c *Client) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	params := url.Values{
		"symbol":   {symbol},
		"interval": {helper.NormTF(timeframe)},
		"limit":    {strconv.Itoa(limit)},
	}

	var raw [][]any
	if err := c.doPublic(ctx, http.MethodGet, "/api/v3/klines", params, &raw); err != nil {
		return nil, errors.Wrapf(err, "klines %s %s", symbol, timeframe)
	}

	out := make([]models.Candle, 0, len(raw))
	for i, row := range raw {
		cd, err := parseKline(row)
		if err != nil {
			return nil, errors.Wrapf(err, "kline %s #%d", symbol, i)
		}
		out = append(out, cd)
	}
	return out, nil
}

// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
func parseKline(row []any) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, errors.Errorf("short row: %d fields", len(row))
	}
	ts, ok := toFloat(row[0])
	if !ok {
		return models.Candle{}, errors.Errorf("bad openTime %v", row[0])
	}

	var vals [5]float64
	for i := range vals {
		s, ok := row[i+1].(string)
		if !ok {
			return models.Candle{}, errors.Errorf("field %d is %T", i+1, row[i+1])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, errors.Wrapf(err, "field %d", i+1)
		}
		vals[i] = v
	}

	return models.Candle{
		OpenTime: time.UnixMilli(int64(ts)),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
