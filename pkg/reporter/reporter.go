// Package reporter delivers order reports to downstream sinks.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms/model"
)

const (
	SinkLog   = "log"
	SinkKafka = "kafka"
	SinkRedis = "redis"
)

var errInvalidConfig = errors.New("invalid reporter config")

type Reporter interface {
	Report(ctx context.Context, report *model.OrderReport) error
	Close() error
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	Topic          string   `yaml:"topic"`
	BatchTimeoutMs int      `yaml:"batch_timeout_ms"`
}

type RedisStreamConfig struct {
	redis_wrapper.RedisConfig `yaml:",inline"`
	// Stream is the key prefix; reports for ABC go to "<stream>:ABC".
	Stream string `yaml:"stream"`
	MaxLen int64  `yaml:"max_len"`
}

type Config struct {
	Sinks []string           `yaml:"sinks"`
	Kafka *KafkaConfig       `yaml:"kafka"`
	Redis *RedisStreamConfig `yaml:"redis"`
}

func (c *Config) Validate() error {
	for _, sink := range c.Sinks {
		switch sink {
		case SinkLog:
		case SinkKafka:
			if c.Kafka == nil || len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
				return fmt.Errorf("%w: kafka sink needs brokers and topic", errInvalidConfig)
			}
		case SinkRedis:
			if c.Redis == nil || c.Redis.ConnectionURL == "" {
				return fmt.Errorf("%w: redis sink needs connection_url", errInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown sink %q", errInvalidConfig, sink)
		}
	}
	return nil
}

// New builds one reporter per configured sink. No sinks means a log reporter.
func New(ctx context.Context, cfg *Config, logger *logging.Logger) (Reporter, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sinks := cfg.Sinks
	if len(sinks) == 0 {
		sinks = []string{SinkLog}
	}

	var reporters []Reporter
	for _, sink := range sinks {
		switch sink {
		case SinkLog:
			reporters = append(reporters, NewLogReporter(logger))
		case SinkKafka:
			producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{
				Brokers:      cfg.Kafka.Brokers,
				BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
			})
			reporters = append(reporters, NewKafkaReporter(producer, cfg.Kafka.Topic))
		case SinkRedis:
			client, err := redis_wrapper.InitRedisWithBackoff(ctx, &cfg.Redis.RedisConfig)
			if err != nil {
				_ = NewMulti(reporters...).Close()
				return nil, fmt.Errorf("redis sink: %w", err)
			}
			reporters = append(reporters, NewRedisReporter(client, cfg.Redis.Stream, cfg.Redis.MaxLen))
		}
	}

	if len(reporters) == 1 {
		return reporters[0], nil
	}
	return NewMulti(reporters...), nil
}
