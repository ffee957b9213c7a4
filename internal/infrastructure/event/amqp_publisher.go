package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/realestate/internal/domain/shared"
	"github.com/erp/realestate/internal/infrastructure/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the publisher uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher forwards domain events to a RabbitMQ exchange. The routing
// key is "<prefix>.<EventType>" so consumers can bind per event type.
type AMQPPublisher struct {
	conn       *amqp.Connection
	mu         sync.Mutex
	ch         amqpChannel
	exchange   string
	keyPrefix  string
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(cfg config.MessagingConfig, serializer *EventSerializer, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		cfg.ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	p := newAMQPPublisher(ch, cfg.Exchange, cfg.RoutingKey, serializer, logger)
	p.conn = conn
	p.logger.Info("Connected to RabbitMQ", zap.String("exchange", cfg.Exchange))
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange, keyPrefix string, serializer *EventSerializer, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{
		ch:         ch,
		exchange:   exchange,
		keyPrefix:  keyPrefix,
		serializer: serializer,
		logger:     logger.Named("amqp"),
	}
}

// RoutingKey returns the routing key used for an event type
func (p *AMQPPublisher) RoutingKey(eventType string) string {
	if p.keyPrefix == "" {
		return eventType
	}
	return p.keyPrefix + "." + eventType
}

// Publish sends each event as a persistent JSON message. Every event is
// attempted; the returned error joins the individual failures.
func (p *AMQPPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, event := range events {
		body, err := p.serializer.Serialize(event)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		msg := amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.EventID().String(),
			Type:         event.EventType(),
			Timestamp:    event.OccurredAt().UTC().Truncate(time.Second),
			Headers: amqp.Table{
				"tenant_id":      event.TenantID().String(),
				"aggregate_type": event.AggregateType(),
			},
			Body: body,
		}
		key := p.RoutingKey(event.EventType())
		if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", event.EventType(), err))
			continue
		}
		p.logger.Debug("event published",
			zap.String("routing_key", key),
			zap.String("event_id", event.EventID().String()),
		)
	}
	return errors.Join(errs...)
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

var _ shared.EventPublisher = (*AMQPPublisher)(nil)
