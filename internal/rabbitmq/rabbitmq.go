// Package rabbitmq publishes and consumes booking events over AMQP. Each
// topic maps to a durable queue of the same name on the default exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]bool
	log      *slog.Logger
}

func Dial(url string, log *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &Client{conn: conn, ch: ch, declared: make(map[string]bool), log: log}, nil
}

func (c *Client) declareLocked(queue string) error {
	if c.declared[queue] {
		return nil
	}
	if _, err := c.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare %s: %w", queue, err)
	}
	c.declared[queue] = true
	return nil
}

// Publish sends payload as a persistent JSON message to the topic queue.
func (c *Client) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	body, err := Encode(key, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.declareLocked(topic); err != nil {
		return err
	}
	if err := c.ch.PublishWithContext(ctx, "", topic, false, false, body); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	c.log.Debug("published to rabbitmq", slog.String("queue", topic), slog.String("key", key))
	return nil
}

// Encode builds the AMQP message for payload.
func Encode(key string, payload interface{}) (amqp.Publishing, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now().UTC(),
		Body:         data,
	}, nil
}

// Consume feeds message bodies from queue to handler until ctx is done.
// Messages the handler rejects are dropped without requeue.
func (c *Client) Consume(ctx context.Context, queue string, handler func(context.Context, []byte) error) error {
	c.mu.Lock()
	err := c.declareLocked(queue)
	if err == nil {
		err = c.ch.Qos(50, 0, false)
	}
	var deliveries <-chan amqp.Delivery
	if err == nil {
		deliveries, err = c.ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				c.log.Error("handle message failed", slog.String("queue", queue), slog.String("error", err.Error()))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	var errs []error
	if c.ch != nil {
		errs = append(errs, c.ch.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}
