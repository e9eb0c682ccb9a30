package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafka.Reader the consumer relies on.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  MessageReader
	logger  *zap.Logger
	handler func(context.Context, Event) error
}

// NewConsumer reads topic as part of groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

// Start consumes in the background until ctx is cancelled. Messages are
// committed only after the handler succeeds.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for {
			if !c.consumeOne(ctx) {
				return
			}
		}
	}()
}

// consumeOne handles a single message and reports whether to keep going.
func (c *Consumer) consumeOne(ctx context.Context) bool {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.logger.Error("Failed to fetch message", zap.Error(err))
		return true
	}

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse event",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return true
	}

	if c.handler != nil {
		if err := c.handler(ctx, event); err != nil {
			c.logger.Error("Failed to handle event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
			)
			return true
		}
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
		)
	}
	return true
}

func (c *Consumer) RegisterHandler(fn func(context.Context, Event) error) {
	c.handler = fn
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}

// AuditLogger returns a handler that writes verification decisions and
// company lifecycle events to logger.
func AuditLogger(logger *zap.Logger) func(context.Context, Event) error {
	logger = logger.Named("audit")
	return func(_ context.Context, event Event) error {
		logger.Info("company event",
			zap.String("event_type", string(event.Type)),
			zap.Uint("company_id", event.Company.ID),
			zap.String("company_name", event.Company.Name),
			zap.String("verification_status", string(event.Company.VerificationStatus)),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
