// Package kafka carries record events over a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"moneymap/internal/events"
	"moneymap/internal/log"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "moneymap.records"

type Publisher struct {
	writer *kafka.Writer
	topic  string
	logger *log.Logger
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, logger *log.Logger) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic:  topic,
		logger: logger.WithComponent(log.ComponentKafka),
	}
}

// PublishRecordAppended keys messages by email so one account's records
// land on one partition in append order.
func (p *Publisher) PublishRecordAppended(ctx context.Context, e events.RecordEvent) error {
	data, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Email),
		Value: data,
		Time:  e.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	p.logger.DebugContext(ctx, "Published record event",
		log.FieldTopic, p.topic,
		log.FieldRecordID, e.Record.ID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

type Consumer struct {
	reader *kafka.Reader
	logger *log.Logger
}

var _ events.Consumer = (*Consumer)(nil)

func NewConsumer(brokers []string, topic, groupID string, logger *log.Logger) *Consumer {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		logger: logger.WithComponent(log.ComponentKafka),
	}
}

// Consume commits an offset only after the handler succeeds. Undecodable
// messages are committed and skipped.
func (c *Consumer) Consume(ctx context.Context, handler events.Handler) error {
	c.logger.InfoContext(ctx, "Started consuming record events", log.FieldTopic, c.reader.Config().Topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		e, err := events.RecordEventFromJSON(msg.Value)
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "offset", msg.Offset)
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return fmt.Errorf("commit message: %w", err)
			}
			continue
		}

		if err := handler(ctx, e); err != nil {
			// Without a commit the group rereads from the last committed
			// offset after a restart.
			return fmt.Errorf("handle record %s: %w", e.Record.ID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
