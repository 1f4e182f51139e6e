package helper

import (
	"context"
	"strings"
	"time"
)

// NormTF приводит таймфрейм к формату интервалов Binance.
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h":
		return "1h"
	case "240m", "4h":
		return "4h"
	case "1d", "d", "24h", "daily":
		return "1d"
	case "15m":
		return "15m"
	default:
		return s
	}
}

// PercentChange — (to-from)/from*100, 0 при from <= 0.
func PercentChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	return (to - from) / from * 100
}

// DailyBoundary — последняя граница отчёта (hour:00 локального времени) не позже now.
func DailyBoundary(now time.Time, hour int) time.Time {
	b := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if b.After(now) {
		b = b.AddDate(0, 0, -1)
	}
	return b
}

// Sleep ждёт d или отмену контекста. false, если контекст отменён.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
