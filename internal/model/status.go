package model

import "fmt"

// Status axes are deliberately separate: verification, delivery and the overall
// order lifecycle move independently (an order can be verified but not yet
// delivered). Unknown values coming from the outside are rejected at the
// boundary by the Parse helpers.

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderFailed     OrderStatus = "failed"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryProcessing DeliveryStatus = "processing"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryFailed     DeliveryStatus = "failed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type RecipientType string

const (
	RecipientUser  RecipientType = "user"
	RecipientAdmin RecipientType = "admin"
)

type NotificationType string

const (
	NotifOrderPlaced     NotificationType = "order-placed"
	NotifOrderVerified   NotificationType = "order-verified"
	NotifOrderCancelled  NotificationType = "order-cancelled"
	NotifOrderCompleted  NotificationType = "order-completed"
	NotifOrderProcessing NotificationType = "order-processing"
	NotifPaymentPending  NotificationType = "payment-pending"
	NotifSupportReply    NotificationType = "support-reply"
	NotifSystem          NotificationType = "system"
	NotifInfo            NotificationType = "info"
	NotifSuccess         NotificationType = "success"
	NotifWarning         NotificationType = "warning"
	NotifError           NotificationType = "error"
)

var orderStatuses = map[OrderStatus]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderCompleted:  true,
	OrderCancelled:  true,
	OrderFailed:     true,
}

var priorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityNormal: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

var deliveryStatuses = map[DeliveryStatus]bool{
	DeliveryPending:    true,
	DeliveryProcessing: true,
	DeliveryCompleted:  true,
	DeliveryFailed:     true,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !orderStatuses[st] {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// ParsePriority treats the empty string as PriorityNormal; anything else must
// be a known level.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	p := Priority(s)
	if !priorities[p] {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	st := DeliveryStatus(s)
	if !deliveryStatuses[st] {
		return "", fmt.Errorf("unknown delivery status %q", s)
	}
	return st, nil
}

// Terminal reports whether no further order status change is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled || s == OrderFailed
}

// Terminal reports whether the verification outcome has been decided.
func (s VerificationStatus) Terminal() bool {
	return s == VerificationVerified || s == VerificationRejected
}
