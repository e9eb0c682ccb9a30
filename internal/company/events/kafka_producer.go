// Package events publishes company and verification lifecycle events to Kafka
// and consumes them back for auditing.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/karirconnect/backoffice/internal/company/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CompanyCreated        EventType = "company_created"
	CompanyUpdated        EventType = "company_updated"
	CompanyDeleted        EventType = "company_deleted"
	CompanyStatusToggled  EventType = "company_status_toggled"
	VerificationSubmitted EventType = "verification_submitted"
	VerificationApproved  EventType = "verification_approved"
	VerificationRejected  EventType = "verification_rejected"
	VerificationOverride  EventType = "verification_overridden"
)

// CompanySnapshot is the part of a company carried on the wire.
type CompanySnapshot struct {
	ID                 uint                      `json:"id"`
	Name               string                    `json:"name"`
	Slug               string                    `json:"slug"`
	IsActive           bool                      `json:"is_active"`
	VerificationStatus models.VerificationStatus `json:"verification_status"`
	IsVerified         bool                      `json:"is_verified"`
	AdminNotes         string                    `json:"admin_notes,omitempty"`
}

// Snapshot copies the published fields of c.
func Snapshot(c *models.Company) CompanySnapshot {
	return CompanySnapshot{
		ID:                 c.ID,
		Name:               c.Name,
		Slug:               c.Slug,
		IsActive:           c.IsActive,
		VerificationStatus: c.VerificationStatus,
		IsVerified:         c.IsVerified,
		AdminNotes:         c.AdminNotes,
	}
}

type Event struct {
	Type       EventType       `json:"type"`
	Company    CompanySnapshot `json:"company"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e Event) key() []byte {
	return []byte(strconv.FormatUint(uint64(e.Company.ID), 10))
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
}

// NewProducer builds a producer writing to topic. The underlying writer
// connects lazily, so no broker needs to be reachable yet.
func NewProducer(brokers []string, logger *zap.Logger, topic string) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.Hash{},
			Topic:    topic,
		},
		events:    make(chan Event, 1000), // Buffered channel
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p
}

// EnsureTopic creates topic on the first broker, tolerating an existing one.
func EnsureTopic(brokers []string, topic string, logger *zap.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	return nil
}

func (p *Producer) Produce(eventType EventType, company *models.Company) {
	select {
	case p.events <- Event{Type: eventType, Company: Snapshot(company), OccurredAt: time.Now().UTC()}:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.Uint("company_id", company.ID),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.Uint("company_id", event.Company.ID),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   event.key(),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Uint("company_id", event.Company.ID),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

// NopProducer drops every event. It stands in when no brokers are configured.
type NopProducer struct {
	logger *zap.Logger
}

func NewNopProducer(logger *zap.Logger) *NopProducer {
	return &NopProducer{logger: logger.Named("nop_producer")}
}

func (n *NopProducer) Produce(eventType EventType, company *models.Company) {
	n.logger.Debug("event discarded",
		zap.String("event_type", string(eventType)),
		zap.Uint("company_id", company.ID),
	)
}
