package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-BranchAppointments/internal/domain"
)

const writeTimeout = 5 * time.Second

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MessageWriter часть *kafka.Writer, нужная публикатору
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// payload JSON представление события жизненного цикла записи
type payload struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AppointmentID string            `json:"appointment_id"`
	ReferenceCode string            `json:"reference_code"`
	CustomerID    string            `json:"customer_id"`
	BranchID      string            `json:"branch_id"`
	PriorStatus   string            `json:"prior_status"`
	NextStatus    string            `json:"next_status"`
	Actor         string            `json:"actor"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// KafkaPublisher публикует события в Kafka. Ошибки доставки логируются и не возвращаются вызывающему.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	log    Logger
}

// NewKafkaWriter создает асинхронный writer: ключ сообщения (id записи) определяет партицию
func NewKafkaWriter(brokers []string, log Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("EventBus: failed to deliver %d messages: %v", len(messages), err)
			}
		},
	}
}

func NewKafkaPublisher(writer MessageWriter, topic string, log Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, log: log}
}

// Publish отправляет события. Вызывается после коммита, отмена ctx запроса не отменяет отправку.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...domain.LifecycleEvent) {
	if len(events) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := p.toMessage(e)
		if err != nil {
			p.log.Error("EventBus: encode %s for appointment %s: %v", e.Type, e.AppointmentID, err)
			continue
		}
		msgs = append(msgs, msg)
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		p.log.Error("EventBus: publish %d events to %s: %v", len(msgs), p.topic, err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) toMessage(e domain.LifecycleEvent) (kafka.Message, error) {
	body, err := json.Marshal(toPayload(e))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("eventbus: marshal: %w", err)
	}
	return kafka.Message{
		Topic: p.topic,
		Key:   []byte(e.AppointmentID.String()),
		Value: body,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID.String())},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}, nil
}

func toPayload(e domain.LifecycleEvent) payload {
	return payload{
		EventID:       e.ID.String(),
		EventType:     string(e.Type),
		AppointmentID: e.AppointmentID.String(),
		ReferenceCode: e.ReferenceCode,
		CustomerID:    e.CustomerID,
		BranchID:      e.BranchID.String(),
		PriorStatus:   string(e.PriorStatus),
		NextStatus:    string(e.NextStatus),
		Actor:         e.Actor,
		OccurredAt:    e.OccurredAt,
		Metadata:      e.Metadata,
	}
}

// LogSink пишет события в лог. Используется, когда брокеры Kafka не настроены.
type LogSink struct {
	log Logger
}

func NewLogSink(log Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, events ...domain.LifecycleEvent) {
	for _, e := range events {
		s.log.Info("EventBus: %s appointment=%s ref=%s %s -> %s by %s",
			e.Type, e.AppointmentID, e.ReferenceCode, e.PriorStatus, e.NextStatus, e.Actor)
	}
}
