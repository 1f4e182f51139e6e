package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const (
	colorSuccess = 3066993
	colorDanger  = 15158332
	colorInfo    = 3447003

	discordFooter  = "Binance Trading Bot"
	discordTimeout = 10 * time.Second
)

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Timestamp   string      `json:"timestamp"`
	Footer      embedFooter `json:"footer"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Discord шлёт embed-сообщения в webhook.
type Discord struct {
	url string
	hc  *http.Client
	now func() time.Time
}

func NewDiscord(url string, hc *http.Client) *Discord {
	if hc == nil {
		hc = &http.Client{Timeout: discordTimeout}
	}
	return &Discord{url: url, hc: hc, now: time.Now}
}

func colorFor(s models.Severity) int {
	switch s {
	case models.SeveritySuccess:
		return colorSuccess
	case models.SeverityDanger:
		return colorDanger
	default:
		return colorInfo
	}
}

func (d *Discord) Notify(ctx context.Context, msg models.Message) {
	if err := d.send(ctx, msg); err != nil {
		logger.Error("[DISCORD] %s: %v", msg.Title, err)
	}
}

func (d *Discord) send(ctx context.Context, msg models.Message) error {
	body, err := sonic.Marshal(webhookPayload{Embeds: []embed{{
		Title:       msg.Title,
		Description: msg.Text,
		Color:       colorFor(msg.Severity),
		Timestamp:   d.now().UTC().Format(time.RFC3339),
		Footer:      embedFooter{Text: discordFooter},
	}}})
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	ctx, cancel := context.WithTimeout(ctx, discordTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "post webhook")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("webhook status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
