package orderbook

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

func (s Side) Valid() bool {
	return s == BUY || s == SELL
}

func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

type Order struct {
	ID        uint64
	Side      Side
	Price     int64 // integer price units
	Qty       int64 // remaining quantity
	Timestamp int64 // unix nanos, tie-break only
}

// restingOrder is the book's own copy of an unfilled remainder.
type restingOrder struct {
	Order
	seq uint64 // arrival order inside the book
}

// buyBefore orders bids: higher price, then earlier timestamp, then arrival.
func buyBefore(a, b *restingOrder) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.seq < b.seq
}

// sellBefore orders asks: lower price, then earlier timestamp, then arrival.
func sellBefore(a, b *restingOrder) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return a.seq < b.seq
}
