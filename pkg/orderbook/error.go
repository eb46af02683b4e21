package orderbook

import "errors"

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrUnknownSymbol = errors.New("unknown symbol")
)
