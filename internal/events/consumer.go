package events

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Handler processes one decoded event. Returning an error rejects the
// message without requeueing it.
type Handler func(ctx context.Context, e Event) error

// Consumer reads events from a durable queue bound to the exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer dials url, declares queue and binds it to the exchange for
// each routing key.
func NewConsumer(url, exchange, queue string, keys []string, logger *zap.Logger) (*Consumer, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := declareExchange(ch, exchange); err != nil {
		return fail(err)
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fail(fmt.Errorf("declare queue %s: %w", queue, err))
	}
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s to %s: %w", key, exchange, err))
		}
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fail(fmt.Errorf("set qos: %w", err))
	}
	return &Consumer{conn: conn, channel: ch, queue: q.Name, logger: logger.Named("events")}, nil
}

// Run delivers messages to h until ctx is done or the broker closes the
// channel.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			c.handle(ctx, d, h)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, h Handler) {
	e, err := Decode(d.Body)
	if err != nil {
		c.logger.Warn("dropping undecodable message", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := h(ctx, e); err != nil {
		c.logger.Warn("event handler failed",
			zap.String("type", e.Type),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
