package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/joripage/matching-engine/pkg/reporter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config-file", "", "path to the yaml config (falls back to CONFIG_FILE)")
	ordersFile := flag.String("orders", "", "order file, one \"SYMBOL SIDE PRICE QTY\" per line (default stdin)")
	depth := flag.Int("depth", 5, "price levels printed per side at exit")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(level).With(zap.String("service", cfg.ServiceName))
	defer logger.ReplaceGlobals()()
	defer logger.Sync()

	// bắt tín hiệu hệ điều hành
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	rep, err := reporter.New(ctx, cfg.Reporter, logger)
	if err != nil {
		logger.Fatal(ctx, "init reporter", zap.Error(err))
	}
	defer rep.Close()

	engine, err := oms.NewOMS(&cfg.OMS, rep, logger)
	if err != nil {
		logger.Fatal(ctx, "init oms", zap.Error(err))
	}
	defer engine.Close()

	in := io.Reader(os.Stdin)
	if *ordersFile != "" {
		f, err := os.Open(*ordersFile)
		if err != nil {
			logger.Fatal(ctx, "open orders", zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	out := json.NewEncoder(os.Stdout)
	if err := run(ctx, engine, in, out); err != nil {
		logger.Error(ctx, "read orders", zap.Error(err))
	}

	printDepth(ctx, engine, out, *depth)
}

// run feeds every order line to engine and writes one report per accepted
// order. It returns when input ends or ctx is done.
func run(ctx context.Context, engine *oms.OMS, in io.Reader, out *json.Encoder) error {
	logger := logging.GetLogger(ctx)

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		defer func() {
			errCh <- scanner.Err()
			close(lines)
		}()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					logger.Info(ctx, "shutting down")
					return nil
				}
				return <-errCh
			}
			lineNo++

			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			reqCtx := logging.NewRequestID(ctx)
			order, err := parseOrder(line)
			if err != nil {
				logger.Warn(reqCtx, "skip line", zap.Int("line", lineNo), zap.Error(err))
				continue
			}

			report, err := engine.AddOrder(reqCtx, order)
			if err != nil {
				logger.Warn(reqCtx, "order rejected", zap.Int("line", lineNo), zap.Error(err))
				continue
			}
			if err := out.Encode(report); err != nil {
				return err
			}
		}
	}
}

// parseOrder reads "SYMBOL SIDE PRICE QTY".
func parseOrder(line string) (*model.AddOrder, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, fmt.Errorf("want 4 fields, got %d", len(fields))
	}

	price, err := decimal.NewFromString(fields[2])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}
	qty, err := decimal.NewFromString(fields[3])
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}

	return &model.AddOrder{
		Symbol:   fields[0],
		Side:     model.OrderSide(strings.ToUpper(fields[1])),
		Price:    price,
		Quantity: qty,
	}, nil
}

type bookDepth struct {
	Symbol string        `json:"symbol"`
	Bids   []model.Level `json:"bids"`
	Asks   []model.Level `json:"asks"`
}

func printDepth(ctx context.Context, engine *oms.OMS, out *json.Encoder, levels int) {
	logger := logging.GetLogger(ctx)
	for _, symbol := range engine.Symbols() {
		bids, asks, err := engine.Depth(symbol, levels)
		if err != nil {
			logger.Error(ctx, "read depth", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if err := out.Encode(bookDepth{Symbol: symbol, Bids: bids, Asks: asks}); err != nil {
			logger.Error(ctx, "write depth", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}
