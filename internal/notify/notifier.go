package notify

import (
	"context"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
)

// Notifier — fire-and-forget: ошибки только логируются.
type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

// Multi рассылает сообщение во все каналы по очереди.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg models.Message) {
	for _, n := range m {
		n.Notify(ctx, msg)
	}
}

// Stdout пишет сообщения в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) Notify(_ context.Context, msg models.Message) {
	switch msg.Severity {
	case models.SeverityDanger:
		logger.Warn("[NOTIFY] %s | %s", msg.Title, msg.Text)
	default:
		logger.Info("[NOTIFY] %s | %s", msg.Title, msg.Text)
	}
}
