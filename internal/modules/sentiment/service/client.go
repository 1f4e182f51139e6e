package service

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Regasking/trade-bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Client — индекс Fear & Greed (alternative.me).
type Client struct {
	http *http.Client
	url  string
}

func NewClient(cfg *config.Config) *Client {
	return New(cfg.Sentiment.URL, &http.Client{Timeout: cfg.Sentiment.Timeout})
}

func New(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{http: hc, url: url}
}

type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
	} `json:"data"`
}

// FearGreed — последнее значение индекса [0,100].
func (c *Client) FearGreed(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?limit=1", nil)
	if err != nil {
		return 0, errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return 0, errors.Errorf("fng http %d: %s", resp.StatusCode, string(body))
	}

	var payload fngResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return 0, errors.Wrap(err, "decode")
	}
	if len(payload.Data) == 0 {
		return 0, errors.New("fng: empty data")
	}

	v, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return 0, errors.Wrapf(err, "fng value %q", payload.Data[0].Value)
	}
	if v < 0 || v > 100 {
		return 0, errors.Errorf("fng value out of range: %d", v)
	}
	return v, nil
}
