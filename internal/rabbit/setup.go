// setup.go
package rabbit

import (
	"context"

	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

const (
	placeOrderQueue    = "topup_orders_service_orders"
	placeOrderExchange = "order_placed"
)

// SetupConsumer binds the checkout fanout exchange to this service's queue
// and consumes until the context is cancelled.
func SetupConsumer(ctx context.Context, ch *amqp091.Channel, consumer *PlaceOrderConsumer) error {
	q, err := ch.QueueDeclare(
		placeOrderQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	// fanout ignores the routing key
	if err := ch.QueueBind(q.Name, "", placeOrderExchange, false, nil); err != nil {
		return err
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				_ = consumer.Handle(ctx, m.Body)
			}
		}
	}()

	zlog.Logger.Info().Str("exchange", placeOrderExchange).Msg("subscribed to checkout events")
	return nil
}
