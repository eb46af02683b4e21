package oms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms/model"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/sequencer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderReporter receives one report per accepted order.
type OrderReporter interface {
	Report(ctx context.Context, report *model.OrderReport) error
}

// OMS is the boundary in front of the books: it validates decimal orders,
// converts them to integer price units and pushes them through one sequencer
// per symbol.
type OMS struct {
	cfg              *Config
	orderbookManager *orderbook.OrderBookManager
	reporter         OrderReporter
	logger           *logging.Logger
	rules            []riskrule.RiskRule

	sequencers sync.Map // symbol -> *sequencer.Sequencer
	mu         sync.Mutex
	closed     bool

	nextOrderID atomic.Uint64
}

func NewOMS(cfg *Config, reporter OrderReporter, logger *logging.Logger) (*OMS, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &OMS{
		cfg: cfg,
		orderbookManager: orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
			Symbols: cfg.symbols(),
		}),
		reporter: reporter,
		logger:   logger,
		rules:    cfg.rules(),
	}, nil
}

func (s *OMS) AddOrder(ctx context.Context, addOrder *model.AddOrder) (*model.OrderReport, error) {
	order, err := s.toBookOrder(addOrder)
	if err != nil {
		s.logger.Warn(ctx, "order rejected",
			zap.String("symbol", addOrder.Symbol),
			zap.Error(err))
		return nil, err
	}

	seq, err := s.sequencer(addOrder.Symbol)
	if err != nil {
		return nil, err
	}

	res, err := seq.Submit(ctx, order)
	if err != nil {
		if errors.Is(err, sequencer.ErrClosed) {
			err = ErrClosed
		}
		return nil, err
	}

	report := s.buildReport(addOrder, res)
	s.logger.Debug(ctx, "order applied",
		zap.String("symbol", report.Symbol),
		zap.Uint64("order_id", report.OrderID),
		zap.String("status", string(report.Status)),
		zap.Int("fills", len(report.Fills)))

	if s.reporter != nil {
		if err := s.reporter.Report(ctx, report); err != nil {
			// the book has already changed; a failed report must not undo that
			s.logger.Error(ctx, "report order failed",
				zap.Uint64("order_id", report.OrderID),
				zap.Error(err))
		}
	}

	return report, nil
}

// Depth returns up to levels aggregated bid and ask levels for symbol. A
// symbol that has not received an order yet has empty sides; one outside the
// configured instruments is ErrUnknownSymbol.
func (s *OMS) Depth(symbol string, levels int) (bids, asks []model.Level, err error) {
	book, ok := s.orderbookManager.Lookup(symbol)
	if !ok {
		if !s.orderbookManager.Allowed(symbol) {
			return nil, nil, fmt.Errorf("%w: %q", orderbook.ErrUnknownSymbol, symbol)
		}
		return []model.Level{}, []model.Level{}, nil
	}
	return s.toLevels(book.Depth(orderbook.BUY, levels)), s.toLevels(book.Depth(orderbook.SELL, levels)), nil
}

// Symbols lists symbols that have received at least one order.
func (s *OMS) Symbols() []string {
	return s.orderbookManager.Symbols()
}

// Close stops every sequencer; later AddOrder calls fail with ErrClosed.
func (s *OMS) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.sequencers.Range(func(_, v any) bool {
		v.(*sequencer.Sequencer).Close()
		return true
	})
}

func (s *OMS) sequencer(symbol string) (*sequencer.Sequencer, error) {
	if v, ok := s.sequencers.Load(symbol); ok {
		return v.(*sequencer.Sequencer), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if v, ok := s.sequencers.Load(symbol); ok {
		return v.(*sequencer.Sequencer), nil
	}

	book, err := s.orderbookManager.Book(symbol)
	if err != nil {
		return nil, err
	}
	seq := sequencer.New(book)
	s.sequencers.Store(symbol, seq)
	return seq, nil
}

func (s *OMS) toBookOrder(addOrder *model.AddOrder) (orderbook.Order, error) {
	var side orderbook.Side
	switch addOrder.Side {
	case model.OrderSideBuy:
		side = orderbook.BUY
	case model.OrderSideSell:
		side = orderbook.SELL
	default:
		return orderbook.Order{}, fmt.Errorf("%w: unknown side %q", orderbook.ErrInvalidOrder, addOrder.Side)
	}

	if !addOrder.Quantity.IsPositive() {
		return orderbook.Order{}, fmt.Errorf("%w: quantity must be positive, got %s", orderbook.ErrInvalidOrder, addOrder.Quantity)
	}
	if !addOrder.Quantity.IsInteger() || !addOrder.Quantity.BigInt().IsInt64() {
		return orderbook.Order{}, fmt.Errorf("%w: quantity must be a whole number, got %s", orderbook.ErrInvalidOrder, addOrder.Quantity)
	}
	if !addOrder.Price.IsPositive() {
		return orderbook.Order{}, fmt.Errorf("%w: price must be positive, got %s", orderbook.ErrInvalidOrder, addOrder.Price)
	}

	for _, rule := range s.rules {
		if err := rule.Check(addOrder); err != nil {
			return orderbook.Order{}, err
		}
	}

	units := addOrder.Price.Shift(s.cfg.PriceScale)
	if !units.IsInteger() || !units.BigInt().IsInt64() {
		return orderbook.Order{}, fmt.Errorf("%w: price %s does not fit %d decimal places", orderbook.ErrInvalidOrder, addOrder.Price, s.cfg.PriceScale)
	}

	id := addOrder.ID
	if id == 0 {
		id = s.nextOrderID.Add(1)
	}

	var ts int64
	if !addOrder.TransactTime.IsZero() {
		ts = addOrder.TransactTime.UnixNano()
	}

	return orderbook.Order{
		ID:        id,
		Side:      side,
		Price:     units.IntPart(),
		Qty:       addOrder.Quantity.IntPart(),
		Timestamp: ts,
	}, nil
}

func (s *OMS) fromUnits(units int64) decimal.Decimal {
	return decimal.New(units, -s.cfg.PriceScale)
}

func (s *OMS) toLevels(depth []orderbook.PriceLevel) []model.Level {
	levels := make([]model.Level, 0, len(depth))
	for _, lvl := range depth {
		levels = append(levels, model.Level{
			Price:    s.fromUnits(lvl.Price),
			Quantity: decimal.NewFromInt(lvl.Qty),
			Orders:   lvl.Count,
		})
	}
	return levels
}

func (s *OMS) buildReport(addOrder *model.AddOrder, res sequencer.Result) *model.OrderReport {
	var cum int64
	fills := make([]model.Fill, 0, len(res.Events))
	for _, ev := range res.Events {
		cum += ev.Qty
		fills = append(fills, model.Fill{
			CounterOrderID: ev.CounterOrderID,
			Price:          s.fromUnits(ev.Price),
			Quantity:       decimal.NewFromInt(ev.Qty),
		})
	}

	status := model.OrderStatusNew
	switch {
	case cum == res.Order.Qty:
		status = model.OrderStatusFilled
	case cum > 0:
		status = model.OrderStatusPartiallyFilled
	}

	return &model.OrderReport{
		ReportID:       uuid.New().String(),
		OrderID:        res.Order.ID,
		Account:        addOrder.Account,
		Symbol:         addOrder.Symbol,
		Side:           addOrder.Side,
		Price:          s.fromUnits(res.Order.Price),
		Quantity:       decimal.NewFromInt(res.Order.Qty),
		CumQuantity:    decimal.NewFromInt(cum),
		LeavesQuantity: decimal.NewFromInt(res.Order.Qty - cum),
		Status:         status,
		Timestamp:      res.Order.Timestamp,
		Fills:          fills,
	}
}
