package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueName is the durable queue carrying all outbound correspondence.
const QueueName = "meeting.notifications"

// Notifier dispatches a message and reports success or failure. The
// approval workflow treats a failure as a soft warning: the persisted
// status change stands and the administrator retries manually.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// AMQP publishes messages to RabbitMQ. Each Send dials a fresh
// connection; volume is a handful of messages per booking, so
// connection reuse is not worth the reconnect bookkeeping.
type AMQP struct {
	url string
	log *zap.Logger
}

// NewAMQP returns a Notifier publishing to the broker at url.
func NewAMQP(url string, log *zap.Logger) *AMQP {
	return &AMQP{url: url, log: log}
}

// Send publishes the message as a persistent JSON delivery on the
// notifications queue. Errors are logged and returned; the caller
// decides whether they block the request.
func (n *AMQP) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notifier: message has no recipient")
	}
	msg.QueuedAt = time.Now().UTC().Format(time.RFC3339)

	conn, err := amqp.Dial(n.url)
	if err != nil {
		n.log.Warn("notifier: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		n.log.Warn("notifier: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		n.log.Warn("notifier: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
		n.log.Warn("notifier: publish failed", zap.Error(err))
		return err
	}
	return nil
}
