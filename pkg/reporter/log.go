package reporter

import (
	"context"

	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms/model"
	"go.uber.org/zap"
)

// LogReporter writes one "order" entry per report and one "match" entry per fill.
type LogReporter struct {
	logger *logging.Logger
}

func NewLogReporter(logger *logging.Logger) *LogReporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, report *model.OrderReport) error {
	r.logger.Info(ctx, "order",
		zap.String("symbol", report.Symbol),
		zap.Uint64("order_id", report.OrderID),
		zap.String("side", string(report.Side)),
		zap.String("price", report.Price.String()),
		zap.String("quantity", report.Quantity.String()),
		zap.String("leaves_quantity", report.LeavesQuantity.String()),
		zap.String("status", string(report.Status)))

	for _, fill := range report.Fills {
		r.logger.Info(ctx, "match",
			zap.String("symbol", report.Symbol),
			zap.Uint64("order_id", report.OrderID),
			zap.Uint64("counter_order_id", fill.CounterOrderID),
			zap.String("price", fill.Price.String()),
			zap.String("quantity", fill.Quantity.String()))
	}
	return nil
}

func (r *LogReporter) Close() error {
	_ = r.logger.Sync()
	return nil
}
