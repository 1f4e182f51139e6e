package service

import (
	"github.com/Regasking/trade-bot/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "🤖 Binance Trading Bot\n\n" +
	"/positions — открытые позиции\n" +
	"/stats — статистика за день"

func (t *Telegram) handleUpdate(update tgbot.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	// чужие чаты игнорируем
	if msg.Chat.ID != t.chatID {
		logger.Warn("[TG] command /%s from foreign chat %d", msg.Command(), msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "positions":
		t.send(t.chatID, t.positionsText())
	case "stats":
		t.send(t.chatID, t.statsText())
	case "start", "help":
		t.send(t.chatID, helpText)
	default:
		t.send(t.chatID, "Неизвестная команда.\n\n"+helpText)
	}
}

func (t *Telegram) positionsText() string {
	t.mu.RLock()
	status, prices := t.status, t.prices
	t.mu.RUnlock()

	if status == nil {
		return "⏳ Бот ещё запускается"
	}
	return formatPositions(status.Positions(), prices)
}

func (t *Telegram) statsText() string {
	t.mu.RLock()
	status := t.status
	t.mu.RUnlock()

	if status == nil {
		return "⏳ Бот ещё запускается"
	}
	return formatStats(status.Stats(), len(status.Positions()))
}
