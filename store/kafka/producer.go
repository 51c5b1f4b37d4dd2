package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/kochabx/portfoliohub/log"
)

var (
	ErrInvalidConfig = errors.New("kafka: invalid config")
	ErrEmptyBrokers  = errors.New("kafka: brokers cannot be empty")
)

// Producer 单主题生产者，Async 时写入失败只记录日志
type Producer struct {
	writer *kafka.Writer
	logger *log.Logger
}

func NewProducer(cfg *Config) (*Producer, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, ErrEmptyBrokers
	}

	p := &Producer{logger: log.G.Component("kafka")}
	transport := &kafka.Transport{}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               cfg.balancer(),
		Transport:              transport,
		AllowAutoTopicCreation: cfg.AllowAutoTopicCreation,
		Async:                  cfg.Async,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Warn().Err(err).Int("messages", len(messages)).Str("topic", cfg.Topic).Msg("kafka write failed")
			}
		},
	}
	return p, nil
}

// Publish 写入一条消息，key 决定分区
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func (p *Producer) Topic() string {
	return p.writer.Topic
}

// Close 刷出缓冲区中的消息
func (p *Producer) Close() error {
	return p.writer.Close()
}
