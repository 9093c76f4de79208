package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"marketplace-portal/backend/internal/audit/domain"
)

const kafkaWriteTimeout = 5 * time.Second

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes audit events as JSON to a Kafka topic, keyed by entity id.
type KafkaSink struct {
	writer MessageWriter
	log    zerolog.Logger
	now    func() time.Time
}

// kafkaEvent is the JSON shape published for each event.
type kafkaEvent struct {
	ID         string         `json:"id"`
	Portal     string         `json:"portal,omitempty"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewKafkaSink returns a sink writing to topic on brokers, or nil when brokers or topic are empty.
// Call Close when shutting down.
func NewKafkaSink(brokers []string, topic string, log zerolog.Logger) *KafkaSink {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewKafkaSinkWithWriter(writer, log)
}

// NewKafkaSinkWithWriter returns a sink over an existing writer.
func NewKafkaSinkWithWriter(w MessageWriter, log zerolog.Logger) *KafkaSink {
	return &KafkaSink{
		writer: w,
		log:    log.With().Str("component", "audit_kafka").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record publishes e. Failures are logged.
func (k *KafkaSink) Record(ctx context.Context, e domain.Event) {
	if k == nil || k.writer == nil {
		return
	}
	stamp(&e, k.now)
	payload, err := json.Marshal(kafkaEvent{
		ID:         e.ID,
		Portal:     e.Portal,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		NewValues:  e.NewValues,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		k.log.Error().Err(err).Str("action", e.Action).Msg("marshal audit event")
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()
	if err := k.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(e.EntityID), Value: payload}); err != nil {
		k.log.Warn().Err(err).Str("action", e.Action).Msg("publish audit event")
	}
}

// Close closes the writer. Safe on a nil sink.
func (k *KafkaSink) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
