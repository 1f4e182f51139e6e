package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/models"
	"github.com/Regasking/trade-bot/pkg/logger"
)

// CycleSummary — состояние всех символов после прохода.
func (r *Runner) CycleSummary(ctx context.Context, balance float64) {
	open := make(map[string]models.Position)
	for _, p := range r.Positions.Positions() {
		open[p.Symbol] = p
	}

	var b strings.Builder
	for _, symbol := range r.opts.Symbols {
		p, ok := open[symbol]
		if !ok {
			fmt.Fprintf(&b, "⏸️ %s: нет позиции\n", symbol)
			continue
		}
		price, err := r.Exchange.GetCurrentPrice(ctx, symbol)
		if err != nil {
			fmt.Fprintf(&b, "❔ %s: цена недоступна\n", symbol)
			continue
		}
		pnl := p.ProfitPercent(price)
		fmt.Fprintf(&b, "%s %s: %+.2f%%\n", pnlEmoji(pnl), symbol, pnl)
	}

	st := r.Positions.Stats()
	fmt.Fprintf(&b, "\n💰 Баланс: %.2f %s\n📈 Позиции: %d/%d\n📊 Сделок сегодня: %d (P&L %+.2f)\n⏰ Следующий цикл через %s",
		balance, r.opts.QuoteAsset, len(open), r.opts.MaxPositions, st.Trades, st.RealizedProfit, r.opts.CheckInterval)

	title := fmt.Sprintf("📊 Итог цикла %s", r.now().Format("15:04"))
	r.notify(ctx, models.SeverityInfo, title, b.String())
}

// DailyReport отправляет дневную статистику и обнуляет её.
func (r *Runner) DailyReport(ctx context.Context) {
	balance, err := r.Exchange.GetBalance(ctx, r.opts.QuoteAsset)
	if err != nil {
		logger.Warn("[REPORT] balance: %v", err)
	}

	var (
		b          strings.Builder
		unrealized float64
	)
	positions := r.Positions.Positions()
	for _, p := range positions {
		price, err := r.Exchange.GetCurrentPrice(ctx, p.Symbol)
		if err != nil {
			fmt.Fprintf(&b, "❔ %s: цена недоступна\n", p.Symbol)
			continue
		}
		u := (price - p.EntryPrice) * p.Quantity
		unrealized += u
		fmt.Fprintf(&b, "%s %s: %+.2f%% (%+.2f)\n", pnlEmoji(u), p.Symbol, p.ProfitPercent(price), u)
	}
	if len(positions) == 0 {
		b.WriteString("Активных позиций нет\n")
	}

	st := r.Positions.ResetStats()
	fmt.Fprintf(&b, "\n📊 За сутки:\n• Сделок: %d\n• Прибыльных: %d | Убыточных: %d\n• Win rate: %.1f%%\n• P&L реализованный: %+.2f\n• P&L нереализованный: %+.2f\n\n🎯 Итого: %+.2f",
		st.Trades, st.Wins, st.Losses, st.WinRate(), st.RealizedProfit, unrealized, st.RealizedProfit+unrealized)

	head := fmt.Sprintf("💰 Баланс: %.2f %s\n📈 Позиции: %d/%d\n\n",
		balance, r.opts.QuoteAsset, len(positions), r.opts.MaxPositions)
	title := "📊 Дневной отчёт " + r.now().Format("02.01.2006")
	logger.Info("[REPORT] trades=%d wins=%d losses=%d pnl=%.2f", st.Trades, st.Wins, st.Losses, st.RealizedProfit)
	r.notify(ctx, models.SeverityInfo, title, head+b.String())
}

func pnlEmoji(v float64) string {
	if v > 0 {
		return "🟢"
	}
	return "🔴"
}
