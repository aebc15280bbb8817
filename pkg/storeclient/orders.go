package storeclient

import (
	"context"
	"net/http"
	"time"
)

// Order mirrors the service's order document for UI consumption.
type Order struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	ProductID          string     `json:"productId"`
	ProductName        string     `json:"productName"`
	Diamonds           int        `json:"diamonds"`
	Quantity           int        `json:"quantity"`
	UnitPrice          float64    `json:"unitPrice"`
	TotalAmount        float64    `json:"totalAmount"`
	Currency           string     `json:"currency"`
	PlayerID           string     `json:"playerId"`
	PaymentMethod      string     `json:"paymentMethod"`
	TransactionID      string     `json:"transactionId"`
	PaymentProofURL    string     `json:"paymentProofUrl"`
	AdminNotes         string     `json:"adminNotes"`
	Status             string     `json:"status"`
	VerificationStatus string     `json:"verificationStatus"`
	DeliveryStatus     string     `json:"deliveryStatus"`
	CreatedAt          time.Time  `json:"createdAt"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`
	DeliveredAt        *time.Time `json:"deliveredAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
}

type orderEnvelope struct {
	Order *Order `json:"order"`
}

type CreateOrderParams struct {
	ProductID     string `json:"productId"`
	Quantity      int    `json:"quantity"`
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	TransactionID string `json:"transactionId"`
	ContactPhone  string `json:"contactPhone,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, p CreateOrderParams) (*Order, error) {
	var out orderEnvelope
	if err := c.sendJSON(ctx, http.MethodPost, "/orders", p, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.getJSON(ctx, "/orders/mine", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, orderID string) (*Order, error) {
	var out orderEnvelope
	if err := c.getJSON(ctx, "/orders/"+orderID, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) AttachPaymentProof(ctx context.Context, orderID, proofURL string) (*Order, error) {
	var out orderEnvelope
	payload := map[string]string{"proofUrl": proofURL}
	if err := c.sendJSON(ctx, http.MethodPost, "/orders/"+orderID+"/payment-proof", payload, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var out orderEnvelope
	if err := c.sendJSON(ctx, http.MethodPut, "/orders/"+orderID+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

// Admin console operations.

func (c *Client) VerifyOrder(ctx context.Context, orderID string, approve bool, notes string) (*Order, error) {
	var out orderEnvelope
	payload := map[string]any{"approve": approve, "notes": notes}
	if err := c.sendJSON(ctx, http.MethodPost, "/admin/orders/"+orderID+"/verify", payload, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) SetOrderStatus(ctx context.Context, orderID, status, adminNotes string) (*Order, error) {
	var out orderEnvelope
	payload := map[string]string{"status": status, "adminNotes": adminNotes}
	if err := c.sendJSON(ctx, http.MethodPut, "/admin/orders/"+orderID+"/status", payload, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) SetDeliveryStatus(ctx context.Context, orderID, deliveryStatus string) (*Order, error) {
	var out orderEnvelope
	payload := map[string]string{"deliveryStatus": deliveryStatus}
	if err := c.sendJSON(ctx, http.MethodPut, "/admin/orders/"+orderID+"/delivery", payload, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}
