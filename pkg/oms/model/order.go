package model

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type Fill struct {
	CounterOrderID uint64          `json:"counter_order_id"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// OrderReport describes what happened to one AddOrder.
type OrderReport struct {
	ReportID       string          `json:"report_id"`
	OrderID        uint64          `json:"order_id"`
	Account        string          `json:"account,omitempty"`
	Symbol         string          `json:"symbol"`
	Side           OrderSide       `json:"side"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	CumQuantity    decimal.Decimal `json:"cum_quantity"`
	LeavesQuantity decimal.Decimal `json:"leaves_quantity"`
	Status         OrderStatus     `json:"status"`
	Timestamp      int64           `json:"timestamp"`
	Fills          []Fill          `json:"fills,omitempty"`
}

// Level is one aggregated price level of a book side.
type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}
