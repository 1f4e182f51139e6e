package models

import (
	"time"

	"github.com/Regasking/trade-bot/internal/helper"
)

type Position struct {
	Symbol           string
	EntryPrice       float64 // средневзвешенная
	Quantity         float64
	OriginalQuantity float64
	OriginalNotional float64
	StopLoss         float64
	TakeProfit       float64
	PyramidCount     int
	Trailing         bool
	StopOrderID      string
	OpenedAt         time.Time
	Updated          time.Time
}

func (p Position) ProfitPercent(price float64) float64 {
	return helper.PercentChange(p.EntryPrice, price)
}

type CloseReason string

const (
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
)

type ClosedTrade struct {
	Symbol    string
	Entry     float64
	Exit      float64
	Quantity  float64
	PnL       float64
	Reason    CloseReason
	Reconcile bool // закрыта биржей (сработал защитный ордер)
}

type DailyStats struct {
	Trades         int
	Wins           int
	Losses         int
	RealizedProfit float64
}

func (s DailyStats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades) * 100
}
