package reporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joripage/matching-engine/pkg/oms/model"
	"github.com/redis/go-redis/v9"
)

const defaultStream = "orders"

type streamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisReporter appends each report to a per-symbol stream.
type RedisReporter struct {
	client streamClient
	stream string
	maxLen int64
}

func NewRedisReporter(client streamClient, stream string, maxLen int64) *RedisReporter {
	if stream == "" {
		stream = defaultStream
	}
	return &RedisReporter{client: client, stream: stream, maxLen: maxLen}
}

func (r *RedisReporter) streamKey(symbol string) string {
	return r.stream + ":" + symbol
}

func (r *RedisReporter) Report(ctx context.Context, report *model.OrderReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: r.streamKey(report.Symbol),
		Values: map[string]any{
			"order_id": report.OrderID,
			"status":   string(report.Status),
			"report":   string(payload),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	return nil
}

func (r *RedisReporter) Close() error {
	return r.client.Close()
}
