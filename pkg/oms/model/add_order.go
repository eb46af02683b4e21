package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddOrder is a new limit order as it arrives at the boundary, in decimal units.
type AddOrder struct {
	ID           uint64 // 0 lets the OMS assign one
	Account      string
	Symbol       string
	Side         OrderSide
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TransactTime time.Time // zero lets the sequencer stamp arrival time
}
