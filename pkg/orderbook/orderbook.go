// file: pkg/orderbook/orderbook.go

package orderbook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/joripage/matching-engine/pkg/pqueue"
)

// OrderBook is the matching engine for a single instrument. Resting buys and
// sells live in two priority queues; Add matches an incoming order against the
// opposite queue and rests whatever is left.
type OrderBook struct {
	symbol string

	buyOrders  *pqueue.PriorityQueue[*restingOrder]
	sellOrders *pqueue.PriorityQueue[*restingOrder]

	seq uint64

	// guards both queues: a match reads and mutates them as one unit
	mu sync.Mutex
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol:     symbol,
		buyOrders:  pqueue.New(buyBefore),  // Max-heap
		sellOrders: pqueue.New(sellBefore), // Min-heap
	}
}

func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

func validateOrder(order Order) error {
	if !order.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, order.Side)
	}
	if order.Qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, order.Qty)
	}
	if order.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %d", ErrInvalidOrder, order.Price)
	}
	return nil
}

// Add matches order against the book and rests any unfilled remainder.
// Rejected orders leave the book untouched.
func (ob *OrderBook) Add(order Order) ([]MatchEvent, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	var sideQueue, counterQueue *pqueue.PriorityQueue[*restingOrder]
	var priceCompare func(orderPrice, counterPrice int64) bool

	if order.Side == BUY {
		sideQueue = ob.buyOrders
		counterQueue = ob.sellOrders
		priceCompare = func(orderPrice, counterPrice int64) bool { return orderPrice >= counterPrice }
	} else { // SELL
		sideQueue = ob.sellOrders
		counterQueue = ob.buyOrders
		priceCompare = func(orderPrice, counterPrice int64) bool { return orderPrice <= counterPrice }
	}

	var results []MatchEvent
	remaining := order.Qty

	for remaining > 0 {
		best, ok := counterQueue.Peek()
		if !ok || !priceCompare(order.Price, best.Price) {
			break
		}

		filled := min(remaining, best.Qty)
		results = append(results, MatchEvent{
			OrderID:        order.ID,
			CounterOrderID: best.ID,
			Price:          best.Price,
			Qty:            filled,
			Side:           order.Side,
		})

		best.Qty -= filled
		remaining -= filled

		if best.Qty == 0 {
			if _, err := counterQueue.Pop(); err != nil {
				panic(fmt.Errorf("orderbook %s: pop after peek: %w", ob.symbol, err))
			}
		}
	}

	if remaining > 0 {
		ob.seq++
		rest := &restingOrder{Order: order, seq: ob.seq}
		rest.Qty = remaining
		sideQueue.Push(rest)
	}

	return results, nil
}

func (ob *OrderBook) queue(side Side) *pqueue.PriorityQueue[*restingOrder] {
	if side == BUY {
		return ob.buyOrders
	}
	return ob.sellOrders
}

func (ob *OrderBook) best(side Side) (Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	top, ok := ob.queue(side).Peek()
	if !ok {
		return Order{}, false
	}
	return top.Order, true
}

// BestBid returns the highest-priority resting buy order.
func (ob *OrderBook) BestBid() (Order, bool) {
	return ob.best(BUY)
}

// BestAsk returns the highest-priority resting sell order.
func (ob *OrderBook) BestAsk() (Order, bool) {
	return ob.best(SELL)
}

func (ob *OrderBook) Len(side Side) int {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.queue(side).Len()
}

func (ob *OrderBook) sorted(side Side) []*restingOrder {
	less := sellBefore
	if side == BUY {
		less = buyBefore
	}
	items := ob.queue(side).Items()
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })
	return items
}

// Orders returns copies of the resting orders on one side, best first.
func (ob *OrderBook) Orders(side Side) []Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	items := ob.sorted(side)
	orders := make([]Order, 0, len(items))
	for _, o := range items {
		orders = append(orders, o.Order)
	}
	return orders
}

// Depth aggregates one side into price levels, best first. levels <= 0
// returns every level.
func (ob *OrderBook) Depth(side Side, levels int) []PriceLevel {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var depth []PriceLevel
	for _, o := range ob.sorted(side) {
		n := len(depth)
		if n > 0 && depth[n-1].Price == o.Price {
			depth[n-1].Qty += o.Qty
			depth[n-1].Count++
			continue
		}
		if levels > 0 && n == levels {
			break
		}
		depth = append(depth, PriceLevel{Price: o.Price, Qty: o.Qty, Count: 1})
	}
	return depth
}
