package models

// SymbolRules — фильтры биржи по символу (LOT_SIZE, PRICE_FILTER, NOTIONAL).
type SymbolRules struct {
	Symbol      string
	StepSize    float64
	TickSize    float64
	MinQty      float64
	MinNotional float64
}
