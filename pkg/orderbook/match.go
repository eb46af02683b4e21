package orderbook

// MatchEvent reports one fill between an incoming order and a resting one.
type MatchEvent struct {
	OrderID        uint64 // incoming order
	CounterOrderID uint64 // resting order that was hit
	Price          int64  // resting order's price
	Qty            int64
	Side           Side // side of the incoming order
}

type PriceLevel struct {
	Price int64
	Qty   int64
	Count int
}
