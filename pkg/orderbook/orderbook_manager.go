package orderbook

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type OrderBookManagerConfig struct {
	// Symbols restricts which books may be created; empty allows any symbol.
	Symbols []string
}

// OrderBookManager holds one independent OrderBook per symbol. Books share no
// state, so orders for different symbols never contend.
type OrderBookManager struct {
	books   sync.Map
	allowed map[string]struct{}
}

func NewOrderBookManager(cfg *OrderBookManagerConfig) *OrderBookManager {
	m := &OrderBookManager{}
	if cfg != nil && len(cfg.Symbols) > 0 {
		m.allowed = make(map[string]struct{}, len(cfg.Symbols))
		for _, s := range cfg.Symbols {
			m.allowed[s] = struct{}{}
		}
	}
	return m
}

func (s *OrderBookManager) AddOrder(symbol string, order Order) ([]MatchEvent, error) {
	book, err := s.Book(symbol)
	if err != nil {
		return nil, err
	}
	return book.Add(order)
}

// Book returns the book for symbol, creating it on first use.
func (s *OrderBookManager) Book(symbol string) (*OrderBook, error) {
	if val, ok := s.books.Load(symbol); ok {
		return val.(*OrderBook), nil
	}

	if !s.Allowed(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
	}

	actual, loaded := s.books.LoadOrStore(symbol, NewOrderBook(symbol))
	if !loaded {
		zap.S().Debugf("created order book for %s", symbol)
	}
	return actual.(*OrderBook), nil
}

// Lookup returns the book for symbol without creating one.
func (s *OrderBookManager) Lookup(symbol string) (*OrderBook, bool) {
	val, ok := s.books.Load(symbol)
	if !ok {
		return nil, false
	}
	return val.(*OrderBook), true
}

// Allowed reports whether a book may exist for symbol.
func (s *OrderBookManager) Allowed(symbol string) bool {
	if s.allowed == nil {
		return true
	}
	_, ok := s.allowed[symbol]
	return ok
}

// Symbols lists the symbols that currently have a book, sorted.
func (s *OrderBookManager) Symbols() []string {
	var symbols []string
	s.books.Range(func(k, _ any) bool {
		symbols = append(symbols, k.(string))
		return true
	})
	sort.Strings(symbols)
	return symbols
}
