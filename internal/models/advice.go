package models

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// AISuggestion — провалидированный ответ модели.
type AISuggestion struct {
	Action          Action  `json:"action"`
	Confidence      float64 `json:"confidence"`
	EntryPrice      float64 `json:"entry_price"`
	StopLoss        float64 `json:"stop_loss"`
	TakeProfit      float64 `json:"take_profit"`
	PositionSizeUSD float64 `json:"position_size_usd"`
	Reasoning       string  `json:"reasoning"`
}

func HoldSuggestion(reason string) AISuggestion {
	return AISuggestion{Action: ActionHold, Reasoning: reason}
}

// IndicatorSnapshot — то, что уходит в промпт.
type IndicatorSnapshot struct {
	Symbol          string  `json:"symbol"`
	Price           float64 `json:"price"`
	RSI             float64 `json:"rsi"`
	MACD            float64 `json:"macd"`
	MACDSignal      float64 `json:"macd_signal"`
	BBUpper         float64 `json:"bb_high"`
	BBLower         float64 `json:"bb_low"`
	EMA20           float64 `json:"ema_20"`
	EMA50           float64 `json:"ema_50"`
	MaxRiskPercent  float64 `json:"max_risk_percent"`
	MaxRiskUSD      float64 `json:"max_risk_usd"`
	StopLossPercent float64 `json:"stop_loss_percent"`
	Balance         float64 `json:"balance"`
}

type ScoreResult struct {
	ShouldTrade bool
	Score       int
	Reasons     []string
}
