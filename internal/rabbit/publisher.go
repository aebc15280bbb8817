package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/retry"

	"topup-orders-service/internal/model"
)

const notificationExchange = "notifications"

// NotificationPublisher hands persisted notifications to the external
// delivery workers (email/SMS). Delivery is at-least-once; consumers dedup
// on the notification id.
type NotificationPublisher struct {
	ch       *amqp091.Channel
	strategy retry.Strategy
}

func NewNotificationPublisher(ch *amqp091.Channel, strategy retry.Strategy) (*NotificationPublisher, error) {
	err := ch.ExchangeDeclare(
		notificationExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &NotificationPublisher{ch: ch, strategy: strategy}, nil
}

type notificationEvent struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient_type"`
	UserID    string    `json:"user_id,omitempty"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	OrderID   string    `json:"related_order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *NotificationPublisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	body, err := json.Marshal(notificationEvent{
		ID:        n.ID,
		Recipient: string(n.Recipient),
		UserID:    n.UserID,
		Type:      string(n.Type),
		Priority:  string(n.Priority),
		OrderID:   n.OrderID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return err
	}

	routingKey := "notification.created." + string(n.Recipient)

	return retry.Do(func() error {
		return p.ch.PublishWithContext(ctx,
			notificationExchange,
			routingKey,
			false, // mandatory
			false, // immediate
			amqp091.Publishing{
				ContentType: "application/json",
				Body:        body,
			},
		)
	}, p.strategy)
}
