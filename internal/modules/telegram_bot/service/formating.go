package service

import (
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/models"
)

func formatMessage(m models.Message) string {
	if m.Title == "" {
		return m.Text
	}
	return m.Title + "\n\n" + m.Text
}

func formatPositions(positions []models.Position, prices PriceSource) string {
	if len(positions) == 0 {
		return "📭 Открытых позиций нет"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Открытые позиции (%d):\n", len(positions))
	for _, p := range positions {
		fmt.Fprintf(&b, "\n%s\n  Вход: %s  Кол-во: %v\n  SL: %s  TP: %s\n",
			p.Symbol, f6(p.EntryPrice), p.Quantity, f6(p.StopLoss), f6(p.TakeProfit))
		if prices != nil {
			if px, ok := prices.GetPrice(p.Symbol); ok {
				fmt.Fprintf(&b, "  Цена: %s (%+.2f%%)\n", f6(px), p.ProfitPercent(px))
			}
		}
		if p.Trailing {
			b.WriteString("  🛡 трейлинг активен\n")
		}
		if p.PyramidCount > 0 {
			fmt.Fprintf(&b, "  🔺 доливок: %d\n", p.PyramidCount)
		}
	}
	return b.String()
}

func formatStats(s models.DailyStats, open int) string {
	return fmt.Sprintf(
		"📈 Статистика за день\n\n"+
			"Сделок: %d\n"+
			"Прибыльных: %d\n"+
			"Убыточных: %d\n"+
			"Win rate: %.1f%%\n"+
			"P&L: %+.2f USDT\n"+
			"Открыто позиций: %d",
		s.Trades, s.Wins, s.Losses, s.WinRate(), s.RealizedProfit, open,
	)
}

func f6(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
