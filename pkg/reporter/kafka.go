package reporter

import (
	"context"

	"github.com/joripage/matching-engine/pkg/oms/model"
)

// jsonPublisher is satisfied by kafkawrapper.Producer.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, topic string, key string, v any, headers map[string]string) error
	Close() error
}

// KafkaReporter publishes each report as JSON keyed by symbol, so one
// symbol's reports stay ordered within a partition.
type KafkaReporter struct {
	producer jsonPublisher
	topic    string
}

func NewKafkaReporter(producer jsonPublisher, topic string) *KafkaReporter {
	return &KafkaReporter{producer: producer, topic: topic}
}

func (r *KafkaReporter) Report(ctx context.Context, report *model.OrderReport) error {
	headers := map[string]string{"status": string(report.Status)}
	return r.producer.PublishJSON(ctx, r.topic, report.Symbol, report, headers)
}

func (r *KafkaReporter) Close() error {
	return r.producer.Close()
}
