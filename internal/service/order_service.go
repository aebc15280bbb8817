package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"topup-orders-service/internal/model"
	"topup-orders-service/internal/repository"
)

// Interfaces the repositories must implement.
type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	Replace(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByUserID(ctx context.Context, userID string, f repository.OrderFilter) ([]*model.Order, error)
	FindAll(ctx context.Context, f repository.OrderFilter) ([]*model.Order, error)
	Count(ctx context.Context, f repository.OrderFilter) (int64, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (*model.Product, error)
}

// notificationSink persists fan-out intents. Implemented by NotificationService.
type notificationSink interface {
	Push(ctx context.Context, intents []*model.Notification) error
}

// Allowed order status transitions. Completed, cancelled and failed are
// absorbing; the verification and delivery axes have their own guards.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:    {model.OrderProcessing, model.OrderCancelled, model.OrderFailed},
	model.OrderProcessing: {model.OrderCompleted, model.OrderCancelled, model.OrderFailed},
}

var deliveryTransitions = map[model.DeliveryStatus][]model.DeliveryStatus{
	model.DeliveryPending:    {model.DeliveryProcessing, model.DeliveryFailed},
	model.DeliveryProcessing: {model.DeliveryCompleted, model.DeliveryFailed},
}

type OrderService struct {
	orders        OrderRepository
	products      ProductRepository
	notifications notificationSink
}

func NewOrderService(orders OrderRepository, products ProductRepository, notifications notificationSink) *OrderService {
	return &OrderService{orders: orders, products: products, notifications: notifications}
}

// CreateOrderInput carries everything a checkout submits. The caller identity
// comes from the auth middleware, never from the payload.
type CreateOrderInput struct {
	UserID        string
	UserEmail     string
	ProductID     string
	Quantity      int
	PlayerID      string
	PlayerName    string
	PaymentMethod string
	TransactionID string
	ContactPhone  string
	Notes         string
}

func (in CreateOrderInput) validate() error {
	if in.UserID == "" || in.ProductID == "" {
		return fmt.Errorf("%w: user and product are required", ErrValidation)
	}
	if in.Quantity <= 0 || in.Quantity > 100 {
		return fmt.Errorf("%w: quantity must be between 1 and 100", ErrValidation)
	}
	if len(in.PlayerID) < 3 {
		return fmt.Errorf("%w: player id too short", ErrValidation)
	}
	if in.PaymentMethod == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	if len(in.TransactionID) < 5 {
		return fmt.Errorf("%w: transaction id too short", ErrValidation)
	}
	return nil
}

// Create validates the input, freezes the total at the current package price
// and persists the order with all three axes pending.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product is not available", ErrValidation)
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:                 uuid.NewString(),
		UserID:             in.UserID,
		ProductID:          product.ID,
		ProductName:        product.Name,
		Diamonds:           product.Diamonds,
		Quantity:           in.Quantity,
		UnitPrice:          product.Price,
		TotalAmount:        product.Price * float64(in.Quantity),
		Currency:           product.Currency,
		PlayerID:           in.PlayerID,
		PlayerName:         in.PlayerName,
		ContactEmail:       in.UserEmail,
		ContactPhone:       in.ContactPhone,
		PaymentMethod:      in.PaymentMethod,
		TransactionID:      in.TransactionID,
		Notes:              in.Notes,
		Status:             model.OrderPending,
		VerificationStatus: model.VerificationPending,
		DeliveryStatus:     model.DeliveryPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(ctx, TransitionEvent{Type: TransitionPlaced, Order: order, UserName: in.UserEmail})
	return order, nil
}

// AttachPaymentProof stores the proof image reference. Allowed only while the
// payment is still under review; replacing an earlier proof is fine. Not a
// state transition, so no notification is emitted.
func (s *OrderService) AttachPaymentProof(ctx context.Context, orderID, actorID, proofURL string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actorID {
		return nil, ErrForbidden
	}
	if order.Status == model.OrderCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidTransition)
	}
	if order.VerificationStatus != model.VerificationPending {
		return nil, fmt.Errorf("%w: payment already %s", ErrInvalidTransition, order.VerificationStatus)
	}

	order.PaymentProofURL = proofURL
	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Verify decides the payment review. The outcome is terminal: a second call
// on the same order is rejected, not re-applied.
func (s *OrderService) Verify(ctx context.Context, orderID, adminID string, approve bool, notes string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.VerificationStatus.Terminal() {
		return nil, fmt.Errorf("%w: payment already %s", ErrInvalidTransition, order.VerificationStatus)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	now := time.Now().UTC()
	order.VerificationNotes = notes
	order.VerifiedBy = adminID
	order.VerifiedAt = &now

	event := TransitionEvent{Order: order, Notes: notes}
	if approve {
		order.VerificationStatus = model.VerificationVerified
		order.DeliveryStatus = model.DeliveryProcessing
		if order.Status == model.OrderPending {
			order.Status = model.OrderProcessing
		}
		event.Type = TransitionVerified
	} else {
		order.VerificationStatus = model.VerificationRejected
		order.Status = model.OrderCancelled
		order.CancelledAt = &now
		event.Type = TransitionRejected
	}

	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(ctx, event)
	return order, nil
}

// SetStatus is the administrative override of the overall lifecycle. The
// delivery axis is left alone on purpose: verification, delivery and overall
// status are administered independently.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, newStatus model.OrderStatus, adminNotes string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Terminal orders reject every override, including re-asserting the
	// terminal value itself; only Cancel is idempotent.
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}
	if order.Status == newStatus {
		return order, nil
	}
	if !contains(orderTransitions[order.Status], newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	now := time.Now().UTC()
	order.Status = newStatus
	if adminNotes != "" {
		order.AdminNotes = adminNotes
	}

	var event TransitionEvent
	switch newStatus {
	case model.OrderProcessing:
		event = TransitionEvent{Type: TransitionProcessing, Order: order}
	case model.OrderCompleted:
		order.CompletedAt = &now
		event = TransitionEvent{Type: TransitionCompleted, Order: order}
	case model.OrderFailed:
		event = TransitionEvent{Type: TransitionFailed, Order: order}
	case model.OrderCancelled:
		order.CancelledAt = &now
		event = TransitionEvent{Type: TransitionCancelled, Order: order, Notes: adminNotes, UserName: "admin"}
	}

	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(ctx, event)
	return order, nil
}

// SetDeliveryStatus advances fulfillment. Delivery may only move once the
// payment has been verified.
func (s *OrderService) SetDeliveryStatus(ctx context.Context, orderID string, newStatus model.DeliveryStatus) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.DeliveryStatus == newStatus {
		return order, nil
	}
	if order.VerificationStatus != model.VerificationVerified {
		return nil, fmt.Errorf("%w: payment not verified", ErrInvalidTransition)
	}
	if order.Status == model.OrderCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidTransition)
	}
	if !contains(deliveryTransitions[order.DeliveryStatus], newStatus) {
		return nil, fmt.Errorf("%w: delivery %s -> %s", ErrInvalidTransition, order.DeliveryStatus, newStatus)
	}

	order.DeliveryStatus = newStatus
	if newStatus == model.DeliveryCompleted {
		now := time.Now().UTC()
		order.DeliveredAt = &now
	}

	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}

	if newStatus == model.DeliveryCompleted {
		s.dispatch(ctx, TransitionEvent{Type: TransitionDelivered, Order: order})
	}
	return order, nil
}

// Cancel marks the order cancelled from any non-terminal state. Cancelling an
// already-cancelled order is a no-op.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID string, isAdmin bool) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != actorID {
		return nil, ErrForbidden
	}
	if order.Status == model.OrderCancelled {
		return order, nil
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	now := time.Now().UTC()
	order.Status = model.OrderCancelled
	order.CancelledAt = &now

	if err := s.orders.Replace(ctx, order); err != nil {
		return nil, err
	}

	s.dispatch(ctx, TransitionEvent{Type: TransitionCancelled, Order: order, UserName: order.ContactEmail})
	return order, nil
}

// Getters
func (s *OrderService) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

func (s *OrderService) GetByUserID(ctx context.Context, userID string, f repository.OrderFilter) ([]*model.Order, error) {
	return s.orders.FindByUserID(ctx, userID, f)
}

func (s *OrderService) GetAll(ctx context.Context, f repository.OrderFilter) ([]*model.Order, int64, error) {
	orders, err := s.orders.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// dispatch persists the fan-out of a committed transition. A failed write is
// logged, not propagated: the transition already happened and delivery is
// at-least-once, so the poll surfaces simply miss one cycle.
func (s *OrderService) dispatch(ctx context.Context, ev TransitionEvent) {
	intents := FanOut(ev)
	if len(intents) == 0 {
		return
	}
	if err := s.notifications.Push(ctx, intents); err != nil {
		zlog.Logger.Error().Err(err).
			Str("order_id", ev.Order.ID).
			Str("transition", string(ev.Type)).
			Msg("failed to persist transition notifications")
	}
}

func contains[T comparable](arr []T, s T) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
