package notifications

import (
	"context"
	"fmt"
	"time"

	"cinetix/pkg/logger"

	"github.com/IBM/sarama"
)

// ConsumerConfig contains Kafka consumer group settings
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topic          string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Consumer drains the notification topic and delivers emails
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	config        ConsumerConfig
	emailService  EmailService
	cancel        context.CancelFunc
}

func NewConsumer(cfg ConsumerConfig, emailService EmailService) (*Consumer, error) {
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.Heartbeat == 0 {
		cfg.Heartbeat = 3 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		config:        cfg,
		emailService:  emailService,
	}, nil
}

// Start launches the consumer loop in the background
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			logger.GetDefault().Error("consumer group error", "error", err.Error())
		}
	}()

	go func() {
		handler := &groupHandler{
			emailService: c.emailService,
			maxRetries:   c.config.MaxRetries,
			retryBackoff: c.config.RetryBackoff,
		}
		topics := []string{c.config.Topic}

		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.consumerGroup.Consume(ctx, topics, handler); err != nil {
					logger.GetDefault().Error("consume error", "error", err.Error())
					time.Sleep(time.Second)
				}
			}
		}
	}()

	logger.GetDefault().Info("notification consumer started", "topic", c.config.Topic, "group", c.config.GroupID)
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	emailService EmailService
	maxRetries   int
	retryBackoff time.Duration
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				logger.GetDefault().Error("failed to process notification", "error", err.Error(),
					"partition", message.Partition, "offset", message.Offset)
			}
			// Mark regardless: a permanently failing message must not wedge
			// the partition.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	notification, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return h.sendWithRetry(ctx, notification)
}

func (h *groupHandler) sendWithRetry(ctx context.Context, notification *EmailNotification) error {
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			delay := h.retryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = h.emailService.Send(ctx, notification); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
