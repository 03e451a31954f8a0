package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/usersvc/internal/config"
	"github.com/GoArmGo/usersvc/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ для событий о пользователях
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь событий
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// идемпотентно: очередь создаётся, только если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("failed to close RabbitMQ client", "error", err)
		return err
	}
	c.logger.Info("RabbitMQ connection closed")
	return nil
}

// PublishUserEvent реализует ports.UserEventPublisher
func (c *Client) PublishUserEvent(ctx context.Context, event payloads.UserEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal user event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish user event: %w", err)
	}
	c.logger.Debug("user event published", "queue", c.queue.Name, "type", event.Type, "user_id", event.UserID)
	return nil
}

// StartConsumingUserEvents реализует ports.UserEventConsumer.
// Сообщения подтверждаются вручную: битые отбрасываются, при ошибке обработки возвращаются в очередь.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("RabbitMQ delivery channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UserEvent) error) {
	event, err := DecodeUserEvent(msg.Body)
	if err != nil {
		c.logger.Error("dropping malformed user event", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("failed to process user event", "type", event.Type, "user_id", event.UserID, "error", err)
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
	}
}

// DecodeUserEvent разбирает тело сообщения и проверяет тип события
func DecodeUserEvent(body []byte) (payloads.UserEvent, error) {
	var event payloads.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return payloads.UserEvent{}, fmt.Errorf("unmarshal user event: %w", err)
	}
	switch event.Type {
	case payloads.UserCreated, payloads.UserDeleted:
		return event, nil
	default:
		return payloads.UserEvent{}, fmt.Errorf("unknown user event type %q", event.Type)
	}
}
