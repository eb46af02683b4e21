package orderbook

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func mustAdd(t *testing.T, ob *OrderBook, order Order) []MatchEvent {
	t.Helper()
	results, err := ob.Add(order)
	if err != nil {
		t.Fatalf("add %+v: %v", order, err)
	}
	return results
}

func TestRestOnEmptyBook(t *testing.T) {
	ob := NewOrderBook("test")

	results := mustAdd(t, ob, Order{ID: 1, Side: SELL, Price: 100, Qty: 10, Timestamp: 1})
	if len(results) != 0 {
		t.Fatalf("expected no match, got %+v", results)
	}

	sells := ob.Orders(SELL)
	if len(sells) != 1 || sells[0].ID != 1 || sells[0].Qty != 10 {
		t.Fatalf("expected sell queue {id=1 qty=10}, got %+v", sells)
	}
	if ob.Len(BUY) != 0 {
		t.Fatalf("expected empty buy queue, got %d", ob.Len(BUY))
	}
}

// Scenarios 1-3 run in sequence on the same book.
func TestPartialFillThenNoCross(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: SELL, Price: 100, Qty: 10, Timestamp: 1})

	results := mustAdd(t, ob, Order{ID: 2, Side: BUY, Price: 105, Qty: 4, Timestamp: 2})
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].CounterOrderID != 1 || results[0].Qty != 4 {
		t.Errorf("incorrect match: %+v", results[0])
	}
	if results[0].OrderID != 2 || results[0].Price != 100 || results[0].Side != BUY {
		t.Errorf("incorrect match details: %+v", results[0])
	}
	if sells := ob.Orders(SELL); len(sells) != 1 || sells[0].Qty != 6 {
		t.Fatalf("expected sell queue {id=1 qty=6}, got %+v", sells)
	}
	if ob.Len(BUY) != 0 {
		t.Fatalf("expected empty buy queue, got %+v", ob.Orders(BUY))
	}

	results = mustAdd(t, ob, Order{ID: 3, Side: BUY, Price: 99, Qty: 5, Timestamp: 3})
	if len(results) != 0 {
		t.Fatalf("expected no match at 99 < 100, got %+v", results)
	}
	if buys := ob.Orders(BUY); len(buys) != 1 || buys[0].ID != 3 || buys[0].Qty != 5 {
		t.Fatalf("expected buy queue {id=3 qty=5}, got %+v", buys)
	}
	if sells := ob.Orders(SELL); len(sells) != 1 || sells[0].ID != 1 || sells[0].Qty != 6 {
		t.Fatalf("expected sell queue unchanged, got %+v", sells)
	}
}

func TestFIFOMatch(t *testing.T) {
	ob := NewOrderBook("test")

	// Add two SELLs at same price, the later one first
	mustAdd(t, ob, Order{ID: 11, Side: SELL, Price: 100, Qty: 4, Timestamp: 2})
	mustAdd(t, ob, Order{ID: 10, Side: SELL, Price: 100, Qty: 3, Timestamp: 1})

	results := mustAdd(t, ob, Order{ID: 12, Side: BUY, Price: 100, Qty: 5, Timestamp: 3})
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	if results[0].CounterOrderID != 10 || results[0].Qty != 3 {
		t.Errorf("expected order 10 filled first, got %+v", results[0])
	}
	if results[1].CounterOrderID != 11 || results[1].Qty != 2 {
		t.Errorf("expected order 11 filled second, got %+v", results[1])
	}
	if sells := ob.Orders(SELL); len(sells) != 1 || sells[0].ID != 11 || sells[0].Qty != 2 {
		t.Errorf("expected order 11 resting with qty 2, got %+v", sells)
	}
	if ob.Len(BUY) != 0 {
		t.Errorf("fully filled buy must not rest, got %+v", ob.Orders(BUY))
	}
}

func TestSameTimestampFallsBackToArrival(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: BUY, Price: 50, Qty: 1, Timestamp: 7})
	mustAdd(t, ob, Order{ID: 2, Side: BUY, Price: 50, Qty: 1, Timestamp: 7})
	mustAdd(t, ob, Order{ID: 3, Side: BUY, Price: 50, Qty: 1, Timestamp: 7})

	results := mustAdd(t, ob, Order{ID: 4, Side: SELL, Price: 50, Qty: 3, Timestamp: 8})
	for i, want := range []uint64{1, 2, 3} {
		if results[i].CounterOrderID != want {
			t.Fatalf("expected arrival order 1,2,3, got %+v", results)
		}
	}
}

func TestSellMatchesHighestBidFirst(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: BUY, Price: 98, Qty: 5, Timestamp: 1})
	mustAdd(t, ob, Order{ID: 2, Side: BUY, Price: 101, Qty: 5, Timestamp: 2})
	mustAdd(t, ob, Order{ID: 3, Side: BUY, Price: 99, Qty: 5, Timestamp: 3})

	results := mustAdd(t, ob, Order{ID: 4, Side: SELL, Price: 99, Qty: 12, Timestamp: 4})
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %+v", results)
	}
	if results[0].CounterOrderID != 2 || results[0].Price != 101 {
		t.Errorf("expected best bid 101 first, got %+v", results[0])
	}
	if results[1].CounterOrderID != 3 || results[1].Price != 99 {
		t.Errorf("expected bid 99 second, got %+v", results[1])
	}

	// 98 does not cross 99: remainder of 2 rests on the sell side
	ask, ok := ob.BestAsk()
	if !ok || ask.ID != 4 || ask.Qty != 2 || ask.Price != 99 {
		t.Errorf("expected sell remainder {id=4 qty=2 price=99}, got %+v", ask)
	}
	bid, ok := ob.BestBid()
	if !ok || bid.ID != 1 {
		t.Errorf("expected bid 1 left, got %+v", bid)
	}
}

func TestMultiLevelMatch(t *testing.T) {
	ob := NewOrderBook("test")
	for i, price := range []int64{103, 101, 102} {
		mustAdd(t, ob, Order{ID: uint64(i + 1), Side: SELL, Price: price, Qty: 5, Timestamp: int64(i + 1)})
	}

	results := mustAdd(t, ob, Order{ID: 9, Side: BUY, Price: 105, Qty: 15, Timestamp: 10})
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	if results[0].Price != 101 || results[1].Price != 102 || results[2].Price != 103 {
		t.Errorf("expected matching from best price, got %+v", results)
	}
	if ob.Len(SELL) != 0 || ob.Len(BUY) != 0 {
		t.Errorf("expected empty book, got buys=%d sells=%d", ob.Len(BUY), ob.Len(SELL))
	}
}

func TestInvalidOrderLeavesBookUntouched(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: SELL, Price: 100, Qty: 10, Timestamp: 1})

	invalid := []Order{
		{ID: 2, Side: BUY, Price: 100, Qty: 0, Timestamp: 2},
		{ID: 3, Side: BUY, Price: 100, Qty: -5, Timestamp: 3},
		{ID: 4, Side: BUY, Price: 0, Qty: 5, Timestamp: 4},
		{ID: 5, Side: BUY, Price: -1, Qty: 5, Timestamp: 5},
		{ID: 6, Side: "HOLD", Price: 100, Qty: 5, Timestamp: 6},
	}
	for _, o := range invalid {
		results, err := ob.Add(o)
		if !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("order %d: expected ErrInvalidOrder, got %v", o.ID, err)
		}
		if len(results) != 0 {
			t.Errorf("order %d: expected no matches, got %+v", o.ID, results)
		}
	}

	if sells := ob.Orders(SELL); len(sells) != 1 || sells[0].Qty != 10 {
		t.Fatalf("book changed by rejected orders: %+v", sells)
	}
	if ob.Len(BUY) != 0 {
		t.Fatalf("rejected order rested: %+v", ob.Orders(BUY))
	}
}

func TestInputOrderIsNotMutated(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: SELL, Price: 100, Qty: 3, Timestamp: 1})

	buy := Order{ID: 2, Side: BUY, Price: 100, Qty: 10, Timestamp: 2}
	mustAdd(t, ob, buy)
	if buy.Qty != 10 {
		t.Fatalf("caller's order was mutated: %+v", buy)
	}
	if bid, _ := ob.BestBid(); bid.Qty != 7 {
		t.Fatalf("expected resting remainder 7, got %+v", bid)
	}
}

func TestDepth(t *testing.T) {
	ob := NewOrderBook("test")
	mustAdd(t, ob, Order{ID: 1, Side: BUY, Price: 99, Qty: 5, Timestamp: 1})
	mustAdd(t, ob, Order{ID: 2, Side: BUY, Price: 100, Qty: 3, Timestamp: 2})
	mustAdd(t, ob, Order{ID: 3, Side: BUY, Price: 99, Qty: 2, Timestamp: 3})
	mustAdd(t, ob, Order{ID: 4, Side: BUY, Price: 97, Qty: 1, Timestamp: 4})

	depth := ob.Depth(BUY, 2)
	want := []PriceLevel{{Price: 100, Qty: 3, Count: 1}, {Price: 99, Qty: 7, Count: 2}}
	if len(depth) != len(want) {
		t.Fatalf("expected %d levels, got %+v", len(want), depth)
	}
	for i := range want {
		if depth[i] != want[i] {
			t.Errorf("level %d: expected %+v, got %+v", i, want[i], depth[i])
		}
	}

	if all := ob.Depth(BUY, 0); len(all) != 3 {
		t.Errorf("expected 3 levels, got %+v", all)
	}
	if asks := ob.Depth(SELL, 5); len(asks) != 0 {
		t.Errorf("expected no asks, got %+v", asks)
	}
}

func TestHighVolumeOrders(t *testing.T) {
	ob := NewOrderBook("test")
	trade := 0

	num := 10_000
	for i := 0; i < num; i++ {
		side := BUY
		if i%2 == 0 {
			side = SELL
		}
		results := mustAdd(t, ob, Order{
			ID:        uint64(i + 1),
			Side:      side,
			Price:     100,
			Qty:       10,
			Timestamp: int64(i + 1),
		})
		trade += len(results)
	}

	if trade != num/2 {
		t.Errorf("expected %d matching, got %d", num/2, trade)
	}
}

func TestConcurrentOrders(t *testing.T) {
	ob := NewOrderBook("test")

	var wg sync.WaitGroup
	addOrder := func(id int, side Side) {
		defer wg.Done()
		if _, err := ob.Add(Order{
			ID:        uint64(id),
			Side:      side,
			Price:     100,
			Qty:       10,
			Timestamp: int64(id),
		}); err != nil {
			t.Errorf("add: %v", err)
		}
	}

	n := 1000
	for i := 0; i < n; i++ {
		wg.Add(2)
		go addOrder(2*i+1, BUY)
		go addOrder(2*i+2, SELL)
	}
	wg.Wait()

	// equal quantities at one price always pair off
	if ob.Len(BUY) != 0 || ob.Len(SELL) != 0 {
		t.Errorf("expected empty book, got buys=%d sells=%d", ob.Len(BUY), ob.Len(SELL))
	}
}

func BenchmarkOrderBookMatch(b *testing.B) {
	ob := NewOrderBook("test")

	// Pre-load SELL orders
	for i := 0; i < 10_000; i++ {
		ob.Add(Order{
			ID:        uint64(i + 1),
			Side:      SELL,
			Price:     100 + int64(i%5),
			Qty:       10,
			Timestamp: int64(i + 1),
		})
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ob.Add(Order{
			ID:        uint64(1_000_000 + i),
			Side:      BUY,
			Price:     101,
			Qty:       10,
			Timestamp: int64(1_000_000 + i),
		})
	}
}

func ExampleOrderBook_Add() {
	ob := NewOrderBook("ABC")
	ob.Add(Order{ID: 10, Side: SELL, Price: 100, Qty: 3, Timestamp: 1})
	ob.Add(Order{ID: 11, Side: SELL, Price: 100, Qty: 4, Timestamp: 2})

	results, _ := ob.Add(Order{ID: 12, Side: BUY, Price: 100, Qty: 5, Timestamp: 3})
	for _, r := range results {
		fmt.Printf("matched %d of %d\n", r.Qty, r.CounterOrderID)
	}
	// Output:
	// matched 3 of 10
	// matched 2 of 11
}
