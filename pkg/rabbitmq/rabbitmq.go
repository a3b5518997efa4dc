package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"marketplace/internal/models"

	amqp "github.com/streadway/amqp"
)

// EventsQueue is the durable queue catalog and favorites events are published to.
const EventsQueue = "marketplace_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares EventsQueue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareEventsQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	slog.Info("rabbitmq client connected", slog.String("queue", EventsQueue))

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareEventsQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		EventsQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", EventsQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Publish sends event as a persistent JSON message to EventsQueue.
func (c *Client) Publish(event models.Event) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",          // default exchange
		EventsQueue, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(event.Type),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// EventHandler processes one decoded event. A non-nil error requeues the message.
type EventHandler func(models.Event) error

// ConsumeEvents starts a goroutine delivering EventsQueue messages to handle.
// Messages that cannot be decoded are dropped rather than requeued.
func (c *Client) ConsumeEvents(handle EventHandler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareEventsQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			deliver(msg, handle)
		}
		slog.Info("rabbitmq consumer stopped", slog.String("queue", EventsQueue))
	}()

	return nil
}

// acknowledger is the subset of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func deliver(msg amqp.Delivery, handle EventHandler) {
	settle(&msg, msg.Body, msg.DeliveryTag, handle)
}

func settle(ack acknowledger, body []byte, tag uint64, handle EventHandler) {
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Warn("dropping undecodable event", slog.Uint64("delivery_tag", tag), slog.String("error", err.Error()))
		if err := ack.Nack(false, false); err != nil {
			slog.Error("failed to nack message", slog.Uint64("delivery_tag", tag), slog.String("error", err.Error()))
		}
		return
	}

	if err := handle(event); err != nil {
		slog.Error("failed to process event", slog.Uint64("delivery_tag", tag), slog.String("type", string(event.Type)), slog.String("error", err.Error()))
		if err := ack.Nack(false, true); err != nil {
			slog.Error("failed to nack message", slog.Uint64("delivery_tag", tag), slog.String("error", err.Error()))
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		slog.Error("failed to ack message", slog.Uint64("delivery_tag", tag), slog.String("error", err.Error()))
	}
}

// LogEvent is an EventHandler that writes each event to the structured log.
func LogEvent(event models.Event) error {
	slog.Info("marketplace event",
		slog.String("type", string(event.Type)),
		slog.String("product_id", event.ProductID),
		slog.String("user_id", event.UserID),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
