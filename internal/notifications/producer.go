package notifications

import (
	"context"
	"fmt"
	"time"

	"cinetix/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher is the contract the booking flow uses to emit notifications.
// Publishing is best effort from the caller's point of view: a failed
// publish never fails the booking operation that triggered it.
type Publisher interface {
	Publish(ctx context.Context, notification *EmailNotification) error
	Close() error
}

// ProducerConfig contains Kafka producer settings
type ProducerConfig struct {
	Brokers  []string
	Topic    string
	RetryMax int
	Timeout  time.Duration
}

// KafkaPublisher publishes notifications to the Kafka notification topic
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(cfg ProducerConfig) (*KafkaPublisher, error) {
	if cfg.RetryMax == 0 {
		cfg.RetryMax = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps per-recipient ordering
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    cfg.Topic,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, notification *EmailNotification) error {
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(notification.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(notification.ID)},
			{Key: []byte("notification_type"), Value: []byte(notification.Type)},
			{Key: []byte("recipient"), Value: []byte(notification.Recipient)},
			{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
		},
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "notification published", map[string]interface{}{
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
		"type":      string(notification.Type),
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// LogPublisher is used when Kafka is disabled; notifications are logged
// and dropped.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, notification *EmailNotification) error {
	logger.GetDefault().InfoWithContext(ctx, "notification (kafka disabled)", map[string]interface{}{
		"type":      string(notification.Type),
		"recipient": notification.Recipient,
		"subject":   notification.Subject,
	})
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
