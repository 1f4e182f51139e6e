package models

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderMarket        OrderType = "MARKET"
	OrderLimit         OrderType = "LIMIT"
	OrderStopLossLimit OrderType = "STOP_LOSS_LIMIT"
)

type OrderRequest struct {
	Symbol        string
	Side          Side
	Type          OrderType
	Quantity      float64
	Price         float64 // LIMIT / STOP_LOSS_LIMIT
	StopPrice     float64 // STOP_LOSS_LIMIT
	ClientOrderID string
}

type Order struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Side          Side
	Type          OrderType
	Status        string
	Quantity      float64 // исполнено
	AvgPrice      float64 // 0 если биржа не вернула fills
	StopPrice     float64
}
