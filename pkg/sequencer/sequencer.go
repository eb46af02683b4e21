// Package sequencer serializes submissions to one order book behind a single
// writer goroutine.
package sequencer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

var ErrClosed = errors.New("sequencer closed")

// Book is the part of orderbook.OrderBook the sequencer drives.
type Book interface {
	Add(order orderbook.Order) ([]orderbook.MatchEvent, error)
}

// Result is what the writer did with one submission.
type Result struct {
	Order  orderbook.Order // as applied, including the assigned timestamp
	Events []orderbook.MatchEvent
}

type request struct {
	ctx   context.Context
	order orderbook.Order
	done  chan response
}

type response struct {
	result Result
	err    error
}

type Option func(*Sequencer)

// WithClock overrides the time source used to stamp orders.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		s.now = now
	}
}

type Sequencer struct {
	book Book
	now  func() time.Time
	last int64 // last stamp handed out, writer-owned

	mu     sync.Mutex
	inbox  deque.Deque[*request]
	closed bool

	wake   chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

// New starts the writer goroutine for book.
func New(book Book, opts ...Option) *Sequencer {
	s := &Sequencer{
		book:   book,
		now:    time.Now,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.run()
	return s
}

// Submit queues order and waits for the writer to apply it. Orders with a zero
// Timestamp are stamped by the writer, so stamps follow processing order. If
// ctx is done before the writer reaches the request, the order is dropped and
// ctx.Err() returned; once picked up it always runs to completion.
func (s *Sequencer) Submit(ctx context.Context, order orderbook.Order) (Result, error) {
	req := &request{ctx: ctx, order: order, done: make(chan response, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}
	s.inbox.PushBack(req)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	res := <-req.done
	return res.result, res.err
}

// Pending is the number of queued submissions not yet picked up.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.Len()
}

// Close stops the writer. Queued submissions fail with ErrClosed.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.doneCh
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
}

func (s *Sequencer) run() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stopCh:
			s.drain()
			return
		}
	}
}

func (s *Sequencer) next() (*request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inbox.Len() == 0 {
		return nil, false
	}
	return s.inbox.PopFront(), true
}

func (s *Sequencer) drain() {
	for {
		req, ok := s.next()
		if !ok {
			return
		}

		select {
		case <-s.stopCh:
			req.done <- response{err: ErrClosed}
			continue
		default:
		}

		req.done <- s.apply(req)
	}
}

func (s *Sequencer) apply(req *request) response {
	if err := req.ctx.Err(); err != nil {
		return response{err: err}
	}

	order := req.order
	if order.Timestamp == 0 {
		order.Timestamp = s.stamp()
	}

	events, err := s.book.Add(order)
	if err != nil {
		return response{err: err}
	}
	return response{result: Result{Order: order, Events: events}}
}

// stamp returns a strictly increasing unix-nano timestamp.
func (s *Sequencer) stamp() int64 {
	ts := s.now().UnixNano()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}
