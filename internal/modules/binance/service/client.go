package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Regasking/trade-bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// APIError — тело ошибки Binance {"code":-1013,"msg":"..."}.
type APIError struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance http %d: code=%d msg=%s", e.Status, e.Code, e.Msg)
}

type Options struct {
	BaseURL     string
	StreamURL   string
	APIKey      string
	APISecret   string
	RecvWindow  int
	PriceMaxAge time.Duration
	HTTP        *http.Client
}

type cachedPrice struct {
	px float64
	at time.Time
}

// Client — спотовый REST Binance + кэш цен из websocket.
type Client struct {
	http     *http.Client
	wsDialer *websocket.Dialer

	baseURL    string
	streamURL  string
	apiKey     string
	apiSecret  string
	recvWindow int

	mu          sync.RWMutex
	prices      map[string]cachedPrice
	priceMaxAge time.Duration

	now func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	return New(Options{
		BaseURL:     cfg.BaseURL(),
		StreamURL:   cfg.StreamURL(),
		APIKey:      cfg.Binance.APIKey,
		APISecret:   cfg.Binance.APISecret,
		RecvWindow:  cfg.Binance.RecvWindow,
		PriceMaxAge: cfg.Binance.PriceMaxAge,
	})
}

func New(o Options) *Client {
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		http:        hc,
		wsDialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		baseURL:     o.BaseURL,
		streamURL:   o.StreamURL,
		apiKey:      o.APIKey,
		apiSecret:   o.APISecret,
		recvWindow:  o.RecvWindow,
		prices:      make(map[string]cachedPrice),
		priceMaxAge: o.PriceMaxAge,
		now:         time.Now,
	}
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// doPublic — запрос без подписи.
func (c *Client) doPublic(ctx context.Context, method, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return c.do(ctx, method, u, false, out)
}

// doSigned — запрос с timestamp/recvWindow и HMAC подписью.
func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	if c.recvWindow > 0 {
		params.Set("recvWindow", strconv.Itoa(c.recvWindow))
	}
	q := params.Encode()
	u := c.baseURL + path + "?" + q + "&signature=" + c.sign(q)
	return c.do(ctx, method, u, true, out)
}

func (c *Client) do(ctx context.Context, method, u string, signed bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := sonic.Unmarshal(body, apiErr); err != nil || apiErr.Msg == "" {
			apiErr.Msg = string(body)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

func parsePos(name, s string) (float64, error) {
	if s == "" {
		return 0, errors.Errorf("%s empty", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errors.Errorf("%s parse: %v (%q)", name, err, s)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
