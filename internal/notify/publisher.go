package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/pricing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderPlacedEvent is published once per accepted order
type OrderPlacedEvent struct {
	OrderNumber   string               `json:"orderNumber"`
	CustomerName  string               `json:"customerName"`
	CustomerEmail string               `json:"customerEmail"`
	TotalAmount   string               `json:"totalAmount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Items         []domain.OrderLine   `json:"items"`
	PlacedAt      time.Time            `json:"placedAt"`
	Emails        []Email              `json:"emails"`
}

// NewOrderPlacedEvent builds the event for an accepted submission,
// including the customer confirmation and the copy for the sales mailbox
func NewOrderPlacedEvent(sub domain.OrderSubmission, orderNumber string, payment domain.PaymentInfo) OrderPlacedEvent {
	confirmation := ConfirmationEmail(
		sub.Order.CustomerName,
		sub.Order.CustomerEmail,
		orderNumber,
		sub.Order.TotalAmount,
		payment,
	)
	salesCopy := confirmation
	salesCopy.To = SalesMailbox
	salesCopy.Subject = fmt.Sprintf("Nuovo Ordine #%s", orderNumber)

	return OrderPlacedEvent{
		OrderNumber:   orderNumber,
		CustomerName:  sub.Order.CustomerName,
		CustomerEmail: sub.Order.CustomerEmail,
		TotalAmount:   pricing.FormatAmount(sub.Order.TotalAmount),
		PaymentMethod: sub.Order.PaymentMethod,
		Items:         sub.Items,
		PlacedAt:      time.Now().UTC(),
		Emails:        []Email{confirmation, salesCopy},
	}
}

// Publisher delivers order events to downstream consumers
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes order events to a durable RabbitMQ queue
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel Channel
	queue   string
	timeout time.Duration
	logger  *zap.Logger
}

// DialAMQP connects to the broker and declares the order queue
func DialAMQP(url, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	publisher := NewAMQPPublisher(ch, queue, logger)
	publisher.conn = conn
	return publisher, nil
}

// NewAMQPPublisher wraps an already configured channel
func NewAMQPPublisher(ch Channel, queue string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		channel: ch,
		queue:   queue,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

func (p *AMQPPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         "order.placed",
			MessageId:    event.OrderNumber,
			Timestamp:    event.PlacedAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Info("Published order event",
		zap.String("order_number", event.OrderNumber),
		zap.String("queue", p.queue),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NoopPublisher drops events; used when no broker is configured
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	p.logger.Debug("No broker configured, dropping order event",
		zap.String("order_number", event.OrderNumber),
	)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
