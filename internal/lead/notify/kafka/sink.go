// Package kafka publishes accepted leads as events for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/notify"
	"leadgate/pkg/requestcontext"
)

// EventLeadAccepted is the event type carried in every message.
const EventLeadAccepted = "lead.accepted"

// Producer is the slice of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Event is the message value.
type Event struct {
	Type       string         `json:"type"`
	Lead       *models.Record `json:"lead"`
	RequestID  string         `json:"request_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink produces one record per accepted lead, keyed by lead ID.
type Sink struct {
	producer Producer
	topic    string
}

var _ notify.Sink = (*Sink)(nil)

// New builds a sink. An empty topic uses the producer's default topic.
func New(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

func (s *Sink) Name() string {
	return "kafka"
}

func (s *Sink) Notify(ctx context.Context, rec *models.Record) error {
	payload, err := json.Marshal(Event{
		Type:       EventLeadAccepted,
		Lead:       rec,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: rec.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode lead event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(rec.ID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(EventLeadAccepted)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce lead event: %w", err)
	}
	return nil
}
