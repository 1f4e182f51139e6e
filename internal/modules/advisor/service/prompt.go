package service

import (
	"fmt"
	"strings"

	"github.com/Regasking/trade-bot/internal/models"
)

func BuildPrompt(s models.IndicatorSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a crypto spot trading expert. Analyse %s and answer with ONE valid JSON object only.\n\n", s.Symbol)

	b.WriteString("CURRENT DATA:\n")
	fmt.Fprintf(&b, "- Price: $%.2f\n", s.Price)
	fmt.Fprintf(&b, "- RSI: %.2f\n", s.RSI)
	fmt.Fprintf(&b, "- MACD: %.4f\n", s.MACD)
	fmt.Fprintf(&b, "- MACD Signal: %.4f\n", s.MACDSignal)
	fmt.Fprintf(&b, "- BB High: %.2f\n", s.BBUpper)
	fmt.Fprintf(&b, "- BB Low: %.2f\n", s.BBLower)
	fmt.Fprintf(&b, "- EMA 20: %.2f\n", s.EMA20)
	fmt.Fprintf(&b, "- EMA 50: %.2f\n\n", s.EMA50)

	b.WriteString("STRICT RULES:\n")
	fmt.Fprintf(&b, "- Max risk: %.1f%% of capital ($%.2f)\n", s.MaxRiskPercent, s.MaxRiskUSD)
	fmt.Fprintf(&b, "- Stop loss: %.1f%% is mandatory\n", s.StopLossPercent)
	b.WriteString("- Take profit: at least 2:1 reward/risk\n\n")

	b.WriteString("Return exactly this JSON:\n")
	fmt.Fprintf(&b, `{
  "action": "BUY|SELL|HOLD",
  "confidence": 0-100,
  "entry_price": %v,
  "stop_loss": stop_price,
  "take_profit": tp_price,
  "position_size_usd": max_amount,
  "reasoning": "short explanation"
}`, s.Price)
	return b.String()
}
