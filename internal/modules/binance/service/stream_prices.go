package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Regasking/trade-bot/internal/helper"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/bytedance/sonic"
)

type miniTickerFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		Event  string `json:"e"`
		Symbol string `json:"s"`
		Close  string `json:"c"`
	} `json:"data"`
}

func streamPath(symbols []string) string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		parts = append(parts, strings.ToLower(s)+"@miniTicker")
	}
	return "/stream?streams=" + strings.Join(parts, "/")
}

// StreamPrices держит один combined-стрим miniTicker по watch-list и обновляет кэш цен.
// Переподключается до отмены ctx; onState получает true/false при connect/disconnect.
func (c *Client) StreamPrices(ctx context.Context, symbols []string, onState func(bool)) {
	if len(symbols) == 0 || c.streamURL == "" {
		return
	}
	if onState == nil {
		onState = func(bool) {}
	}

	u := c.streamURL + streamPath(symbols)
	backoff := time.Second

	for ctx.Err() == nil {
		logger.Info("[WS] connect %s", u)
		conn, _, err := c.wsDialer.DialContext(ctx, u, nil)
		if err != nil {
			logger.Warn("[WS] dial error: %v", err)
			if !helper.Sleep(ctx, backoff) {
				return
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second
		onState(true)

		// закрываем сокет при отмене, чтобы ReadMessage вернулся
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("[WS] read error: %v", err)
				}
				break
			}
			c.handleFrame(msg)
		}

		close(done)
		_ = conn.Close()
		onState(false)

		if !helper.Sleep(ctx, time.Second) {
			return
		}
	}
}

func (c *Client) handleFrame(msg []byte) {
	var f miniTickerFrame
	if err := sonic.Unmarshal(msg, &f); err != nil {
		return
	}
	if f.Data.Symbol == "" {
		return
	}
	px, err := strconv.ParseFloat(f.Data.Close, 64)
	if err != nil || px <= 0 {
		return
	}
	c.SetPrice(f.Data.Symbol, px)
}
