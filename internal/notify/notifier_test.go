package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordPayload(t *testing.T) {
	var (
		mu  sync.Mutex
		got webhookPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		assert.NoError(t, sonic.Unmarshal(body, &got))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client())
	d.now = func() time.Time { return time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC) }

	require.NoError(t, d.send(context.Background(), models.Message{
		Title: "✅ Позиция закрыта", Text: "BTCUSDT", Severity: models.SeveritySuccess,
	}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, "✅ Позиция закрыта", e.Title)
	assert.Equal(t, "BTCUSDT", e.Description)
	assert.Equal(t, colorSuccess, e.Color)
	assert.Equal(t, "2024-05-01T07:00:00Z", e.Timestamp)
	assert.Equal(t, "Binance Trading Bot", e.Footer.Text)
}

func TestDiscordErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL, srv.Client())
	err := d.send(context.Background(), models.Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	// Notify ошибку только логирует
	assert.NotPanics(t, func() { d.Notify(context.Background(), models.Message{Text: "x"}) })
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, 3066993, colorFor(models.SeveritySuccess))
	assert.Equal(t, 15158332, colorFor(models.SeverityDanger))
	assert.Equal(t, 3447003, colorFor(models.SeverityInfo))
	assert.Equal(t, 3447003, colorFor(""))
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context, models.Message) { c.n++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	Multi{a, NewStdout(), b}.Notify(context.Background(), models.Message{Text: "hi"})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestNewNotifierChannels(t *testing.T) {
	cfg := config.Default()
	n := NewNotifier(&cfg, nil)
	assert.Len(t, n.(Multi), 1)

	cfg.Discord.WebhookURL = "http://localhost/webhook"
	n = NewNotifier(&cfg, nil)
	assert.Len(t, n.(Multi), 2)
}
