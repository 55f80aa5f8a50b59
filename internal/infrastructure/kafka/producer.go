package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DRSN-tech/pos-register/internal/cfg"
	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ViewEvent описывает сообщение для витрины покупателя.
type ViewEvent struct {
	EventID   string       `json:"event_id"`
	Session   string       `json:"session"`
	EmittedAt int64        `json:"emitted_at"` // Unix, наносекунды
	View      *domain.View `json:"view"`
}

// ViewPublisher публикует каждое состояние кассы в топик Kafka.
// Запись асинхронная: ошибки брокера только логируются и не влияют на операции кассы.
type ViewPublisher struct {
	writer  messageWriter
	session string
	logger  logger.Logger
	now     func() time.Time
}

func NewViewPublisher(cfg *cfg.KafkaCfg, session string, logger logger.Logger) *ViewPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchSize:    10,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka view publish failed (%d messages): %s", len(messages), err.Error())
			}
		},
	}

	return newViewPublisher(writer, session, logger)
}

func newViewPublisher(writer messageWriter, session string, logger logger.Logger) *ViewPublisher {
	return &ViewPublisher{
		writer:  writer,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

// Render реализует usecase.RenderSink.
func (p *ViewPublisher) Render(ctx context.Context, view *domain.View) {
	msg, err := p.message(view)
	if err != nil {
		p.logger.Warnf("Failed to encode view event: %v", err)
		return
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warnf("Failed to publish view event: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func (p *ViewPublisher) message(view *domain.View) (kafka.Message, error) {
	event := ViewEvent{
		EventID:   uuid.NewString(),
		Session:   p.session,
		EmittedAt: p.now().UnixNano(),
		View:      view,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, e.Wrap(whereami.WhereAmI(), err)
	}

	return kafka.Message{
		Key:   []byte(p.session),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}

func (p *ViewPublisher) Close() error {
	return p.writer.Close()
}
