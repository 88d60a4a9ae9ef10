package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nutralink/directory/pkg/logger"
	"github.com/nutralink/directory/pkg/metrics"
)

// Publisher delivers envelopes to subscribers outside the process.
type Publisher interface {
	Publish(ctx context.Context, key string, msg Envelope) error
	Close() error
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConnection interface {
	channel() (amqpChannel, error)
	Close() error
}

type dialedConnection struct {
	conn *amqp.Connection
}

func (d *dialedConnection) channel() (amqpChannel, error) {
	return d.conn.Channel()
}

func (d *dialedConnection) Close() error {
	return d.conn.Close()
}

// AMQPPublisher publishes JSON envelopes to a durable topic exchange.
type AMQPPublisher struct {
	conn     amqpConnection
	exchange string
	log      *zap.Logger

	closeOnce sync.Once
}

// NewAMQPPublisher dials url and declares exchange as a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		return nil, errors.New("events: exchange is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: declare exchange %q: %w", exchange, err)
	}

	return newAMQPPublisher(&dialedConnection{conn: conn}, exchange), nil
}

func newAMQPPublisher(conn amqpConnection, exchange string) *AMQPPublisher {
	return &AMQPPublisher{
		conn:     conn,
		exchange: exchange,
		log:      logger.WithModule("events"),
	}
}

// Publish sends msg with routing key key on a short-lived channel.
func (p *AMQPPublisher) Publish(ctx context.Context, key string, msg Envelope) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", key, err)
	}

	ch, err := p.conn.channel()
	if err != nil {
		return fmt.Errorf("events: open channel: %w", err)
	}
	defer ch.Close()

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.Meta.ID,
		Type:         msg.Meta.Type,
		AppId:        msg.Meta.Producer,
		Timestamp:    msg.Meta.Time,
		Body:         body,
	}
	if msg.Meta.CorrelationID != nil {
		publishing.CorrelationId = *msg.Meta.CorrelationID
	}
	if publishing.Timestamp.IsZero() {
		publishing.Timestamp = time.Now().UTC()
	}

	if err := ch.PublishWithContext(ctx, p.exchange, key, false, false, publishing); err != nil {
		return fmt.Errorf("events: publish %s: %w", key, err)
	}
	p.log.Debug("event published", zap.String("key", key), zap.String("exchange", p.exchange))
	return nil
}

// Close shuts down the connection. It is safe to call more than once.
func (p *AMQPPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.conn.Close()
	})
	return err
}

// NoopPublisher drops events. It backs deployments without a broker.
type NoopPublisher struct {
	log *zap.Logger
}

// NewNoopPublisher returns a publisher that only logs at debug level.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{log: logger.WithModule("events")}
}

func (p *NoopPublisher) Publish(ctx context.Context, key string, msg Envelope) error {
	p.log.Debug("event dropped, no broker configured", zap.String("key", key))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// Emit publishes eventType without failing the caller: delivery errors are
// logged and counted.
func Emit(ctx context.Context, pub Publisher, eventType string, data any, correlationID string) {
	if pub == nil {
		return
	}
	err := pub.Publish(ctx, eventType, NewEnvelope(eventType, data, correlationID))
	if err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "failure").Inc()
		logger.WithModule("events").Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "success").Inc()
}
