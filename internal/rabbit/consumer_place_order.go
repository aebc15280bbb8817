package rabbit

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"topup-orders-service/internal/model"
	"topup-orders-service/internal/service"
)

type orderCreator interface {
	Create(ctx context.Context, in service.CreateOrderInput) (*model.Order, error)
}

// PlaceOrderConsumer seeds orders placed through the storefront checkout.
// The HTTP endpoint and this consumer share the same service path, so the
// state machine guards apply to both.
type PlaceOrderConsumer struct {
	Service orderCreator
}

func NewPlaceOrderConsumer(s orderCreator) *PlaceOrderConsumer {
	return &PlaceOrderConsumer{Service: s}
}

type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Message       struct {
		UserID        string `json:"userId"`
		UserEmail     string `json:"userEmail"`
		ProductID     string `json:"productId"`
		Quantity      int    `json:"quantity"`
		PlayerID      string `json:"playerId"`
		PlayerName    string `json:"playerName"`
		PaymentMethod string `json:"paymentMethod"`
		TransactionID string `json:"transactionId"`
		ContactPhone  string `json:"contactPhone"`
		Notes         string `json:"notes"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(ctx context.Context, body []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(body, &event); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to parse place_order message")
		return err
	}

	m := event.Message
	order, err := c.Service.Create(ctx, service.CreateOrderInput{
		UserID:        m.UserID,
		UserEmail:     m.UserEmail,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		PlayerID:      m.PlayerID,
		PlayerName:    m.PlayerName,
		PaymentMethod: m.PaymentMethod,
		TransactionID: m.TransactionID,
		ContactPhone:  m.ContactPhone,
		Notes:         m.Notes,
	})
	if err != nil {
		// Malformed checkout payloads are dropped, not retried; the user
		// already saw the validation error on the storefront.
		zlog.Logger.Error().Err(err).Str("correlation_id", event.CorrelationID).Msg("failed to create order from checkout event")
		return err
	}

	zlog.Logger.Info().Str("order_id", order.ID).Msg("order created from checkout event")
	return nil
}
