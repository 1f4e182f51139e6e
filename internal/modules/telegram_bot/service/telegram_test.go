package service

import (
	"context"
	"testing"

	"github.com/Regasking/trade-bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbot.MessageConfig
}

func (f *fakeSender) Send(c tgbot.Chattable) (tgbot.Message, error) {
	if m, ok := c.(tgbot.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbot.Message{}, nil
}

type fakeStatus struct {
	positions []models.Position
	stats     models.DailyStats
}

func (f fakeStatus) Positions() []models.Position { return f.positions }
func (f fakeStatus) Stats() models.DailyStats     { return f.stats }

type fakePrices map[string]float64

func (f fakePrices) GetPrice(symbol string) (float64, bool) {
	px, ok := f[symbol]
	return px, ok
}

func command(chatID int64, text string) tgbot.Update {
	return tgbot.Update{Message: &tgbot.Message{
		Text:     text,
		Chat:     &tgbot.Chat{ID: chatID},
		Entities: []tgbot.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func newTestTelegram() (*Telegram, *fakeSender) {
	s := &fakeSender{}
	return &Telegram{api: s, chatID: 42}, s
}

func TestNotifyFormatsTitle(t *testing.T) {
	tg, s := newTestTelegram()
	tg.Notify(context.Background(), models.Message{Title: "🟢 Позиция открыта", Text: "BTCUSDT"})

	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(42), s.sent[0].ChatID)
	assert.Equal(t, "🟢 Позиция открыта\n\nBTCUSDT", s.sent[0].Text)
}

func TestNilTelegramIsNoop(t *testing.T) {
	var tg *Telegram
	assert.NotPanics(t, func() {
		tg.Notify(context.Background(), models.Message{Text: "x"})
		tg.Start(context.Background())
		tg.Stop()
	})
}

func TestPositionsCommand(t *testing.T) {
	tg, s := newTestTelegram()
	tg.handleUpdate(command(42, "/positions"))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "⏳ Бот ещё запускается", s.sent[0].Text)

	tg.SetStatus(fakeStatus{}, nil)
	tg.handleUpdate(command(42, "/positions"))
	assert.Equal(t, "📭 Открытых позиций нет", s.sent[1].Text)

	tg.SetStatus(fakeStatus{positions: []models.Position{{
		Symbol: "BTCUSDT", EntryPrice: 100, Quantity: 0.5, StopLoss: 97, TakeProfit: 106, Trailing: true, PyramidCount: 1,
	}}}, fakePrices{"BTCUSDT": 103})
	tg.handleUpdate(command(42, "/positions"))

	text := s.sent[2].Text
	assert.Contains(t, text, "BTCUSDT")
	assert.Contains(t, text, "Цена: 103.000000 (+3.00%)")
	assert.Contains(t, text, "трейлинг активен")
	assert.Contains(t, text, "доливок: 1")
}

func TestStatsCommand(t *testing.T) {
	tg, s := newTestTelegram()
	tg.SetStatus(fakeStatus{stats: models.DailyStats{Trades: 4, Wins: 3, Losses: 1, RealizedProfit: 12.5}}, nil)

	tg.handleUpdate(command(42, "/stats"))
	require.Len(t, s.sent, 1)
	assert.Contains(t, s.sent[0].Text, "Сделок: 4")
	assert.Contains(t, s.sent[0].Text, "Win rate: 75.0%")
	assert.Contains(t, s.sent[0].Text, "P&L: +12.50 USDT")
}

func TestForeignChatIgnored(t *testing.T) {
	tg, s := newTestTelegram()
	tg.SetStatus(fakeStatus{}, nil)

	tg.handleUpdate(command(7, "/stats"))
	tg.handleUpdate(tgbot.Update{Message: &tgbot.Message{Text: "hello", Chat: &tgbot.Chat{ID: 42}}})
	assert.Empty(t, s.sent)
}
