package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	minPrice = 10_000 // integer price units
	maxPrice = 20_000
	minQty   = 1
	maxQty   = 100
)

var symbols = []string{"ABC", "DEF", "XYZ"}

func randomOrder(rng *rand.Rand, id uint64) orderbook.Order {
	side := orderbook.BUY
	if rng.Intn(2) == 0 {
		side = orderbook.SELL
	}

	return orderbook.Order{
		ID:        id,
		Side:      side,
		Price:     int64(minPrice + rng.Intn(maxPrice-minPrice+1)),
		Qty:       int64(rng.Intn(maxQty-minQty+1) + minQty),
		Timestamp: int64(id),
	}
}

func main() {
	numOrders := flag.Int("n", 1_000_000, "number of orders")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	obm := orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{Symbols: symbols})

	totalMatched := 0
	totalQty := int64(0)

	start := time.Now()
	for i := 0; i < *numOrders; i++ {
		symbol := symbols[rng.Intn(len(symbols))]
		events, err := obm.AddOrder(symbol, randomOrder(rng, uint64(i+1)))
		if err != nil {
			log.Fatalf("add order: %v", err)
		}
		for _, ev := range events {
			totalMatched++
			totalQty += ev.Qty
			if totalMatched <= 5 {
				log.Printf("Match: %s %s[%d] <=> [%d] @ %d Qty %d\n",
					symbol, ev.Side, ev.OrderID, ev.CounterOrderID, ev.Price, ev.Qty)
			}
		}
	}
	elapsed := time.Since(start)

	resting := 0
	for _, symbol := range obm.Symbols() {
		book, _ := obm.Book(symbol)
		resting += book.Len(orderbook.BUY) + book.Len(orderbook.SELL)
	}

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", *numOrders)
	fmt.Printf("Total Matches    : %d\n", totalMatched)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Resting Orders   : %d\n", resting)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Throughput       : %.0f orders/s\n", float64(*numOrders)/elapsed.Seconds())
	}
}
