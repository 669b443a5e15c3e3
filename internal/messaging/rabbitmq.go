package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/mtlprog/panchayat/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	maxPublishAttempts = 3
	initialDelay       = 200 * time.Millisecond
	maxDelay           = 2 * time.Second
	publishTimeout     = 5 * time.Second
)

// RabbitMQ publishes issue events to a durable topic exchange.
type RabbitMQ struct {
	url     string
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitMQ connects to url and declares the exchange.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	r := &RabbitMQ{url: url}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	channel, err := openChannel(conn)
	if err != nil {
		conn.Close()
		return err
	}

	r.conn = conn
	r.channel = channel

	slog.Info("rabbitmq connected", "exchange", ExchangeName)
	return nil
}

// openChannel opens a channel on conn and declares the exchange on it.
func openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return channel, nil
}

// ensureChannel redials a closed connection, or reopens the channel when
// the broker closed only the channel. Callers hold r.mu.
func (r *RabbitMQ) ensureChannel() error {
	if r.conn == nil || r.conn.IsClosed() {
		return r.connect()
	}
	if r.channel == nil || r.channel.IsClosed() {
		channel, err := openChannel(r.conn)
		if err != nil {
			return err
		}
		r.channel = channel
		slog.Info("rabbitmq channel reopened", "exchange", ExchangeName)
	}
	return nil
}

// Publish sends the event as a persistent JSON message. Failed attempts
// reconnect and retry with backoff.
func (r *RabbitMQ) Publish(ctx context.Context, event *domain.IssueEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}
	key := RoutingKey(event)

	return retry.Do(
		func() error {
			return r.publish(ctx, key, msg)
		},
		retry.Attempts(maxPublishAttempts),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("retrying event publish",
				"attempt", n+1,
				"event_id", event.ID,
				"routing_key", key,
				"error", err,
			)
		}),
	)
}

func (r *RabbitMQ) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureChannel(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		key,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func newPublishing(event *domain.IssueEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	}, nil
}

// Close closes the channel and connection.
func (r *RabbitMQ) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}

	slog.Info("rabbitmq connection closed")
}
