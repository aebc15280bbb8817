// dto.go
package dto

import (
	"time"

	"topup-orders-service/internal/model"
)

// CreateOrderRequest is used by the API and the Rabbit checkout consumer to
// place a new order. The txnref rule is registered on gin's validator engine.
type CreateOrderRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0,lte=100"`
	PlayerID      string `json:"playerId" binding:"required,min=3"`
	PlayerName    string `json:"playerName"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required,txnref"`
	ContactPhone  string `json:"contactPhone"`
	Notes         string `json:"notes"`
}

type PaymentProofRequest struct {
	ProofURL string `json:"proofUrl" binding:"required,url"`
}

type VerifyOrderRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"adminNotes"`
}

type UpdateDeliveryRequest struct {
	DeliveryStatus string `json:"deliveryStatus" binding:"required"`
}

type BroadcastRequest struct {
	Title     string `json:"title" binding:"required"`
	TitleBn   string `json:"titleBn" binding:"required"`
	Message   string `json:"message" binding:"required"`
	MessageBn string `json:"messageBn" binding:"required"`
	Priority  string `json:"priority"`
	Important bool   `json:"important"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type OrderResponse struct {
	Order *model.Order `json:"order"`
}

type OrderListResponse struct {
	Orders []*model.Order `json:"orders"`
	Page   int            `json:"page"`
	Total  int64          `json:"total"`
}

type NotificationListResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	FetchedAt     time.Time             `json:"fetchedAt"`
}
