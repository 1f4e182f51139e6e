package service

import (
	"context"
	"sync"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/internal/modules/config"
	"github.com/Regasking/trade-bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// StatusProvider отдаёт состояние для /positions и /stats.
type StatusProvider interface {
	Positions() []models.Position
	Stats() models.DailyStats
}

type PriceSource interface {
	GetPrice(symbol string) (float64, bool)
}

// Telegram — уведомления в один чат и команды /positions, /stats.
type Telegram struct {
	bot    *tgbot.BotAPI
	api    sender
	chatID int64

	mu     sync.RWMutex
	status StatusProvider
	prices PriceSource
}

// NewTelegram возвращает nil без токена или chat_id.
func NewTelegram(cfg *config.Config) (*Telegram, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[TG] token or chat id not set, telegram disabled")
		return nil, nil
	}
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	logger.Info("[TG] authorized as @%s", b.Self.UserName)
	return &Telegram{bot: b, api: b, chatID: cfg.Telegram.ChatID}, nil
}

func (t *Telegram) SetStatus(s StatusProvider, p PriceSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
	t.prices = p
}

func (t *Telegram) Notify(_ context.Context, msg models.Message) {
	if t == nil || t.api == nil {
		return
	}
	t.send(t.chatID, formatMessage(msg))
}

func (t *Telegram) send(chatID int64, text string) {
	m := tgbot.NewMessage(chatID, text)
	m.DisableWebPagePreview = true
	if _, err := t.api.Send(m); err != nil {
		logger.Error("[TG] send to %d: %v", chatID, err)
	}
}

// Start слушает апдейты до отмены ctx.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(update)
			}
		}
	}()
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}
