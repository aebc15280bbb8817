package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup-orders-service/internal/model"
	"topup-orders-service/internal/repository"
)

// In-memory fakes.

type fakeOrderRepo struct {
	orders map[string]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *fakeOrderRepo) Insert(_ context.Context, o *model.Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Replace(_ context.Context, o *model.Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, orderID string) (*model.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID string, _ repository.OrderFilter) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ repository.OrderFilter) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeOrderRepo) Count(_ context.Context, _ repository.OrderFilter) (int64, error) {
	return int64(len(r.orders)), nil
}

type fakeProductRepo struct {
	products map[string]*model.Product
}

func (r *fakeProductRepo) FindByID(_ context.Context, productID string) (*model.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type fakeSink struct {
	batches [][]*model.Notification
}

func (s *fakeSink) Push(_ context.Context, intents []*model.Notification) error {
	s.batches = append(s.batches, intents)
	return nil
}

func (s *fakeSink) all() []*model.Notification {
	var out []*model.Notification
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func newTestOrderService() (*OrderService, *fakeOrderRepo, *fakeSink) {
	orders := newFakeOrderRepo()
	products := &fakeProductRepo{products: map[string]*model.Product{
		"pkg-100": {ID: "pkg-100", Name: "100 Diamonds", Diamonds: 100, Price: 80, Currency: "BDT", IsActive: true},
		"pkg-old": {ID: "pkg-old", Name: "Retired Pack", Diamonds: 50, Price: 40, Currency: "BDT", IsActive: false},
	}}
	sink := &fakeSink{}
	return NewOrderService(orders, products, sink), orders, sink
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:        "user-1",
		UserEmail:     "player@example.com",
		ProductID:     "pkg-100",
		Quantity:      2,
		PlayerID:      "123456789",
		PaymentMethod: "bkash",
		TransactionID: "TXN12345",
	}
}

func TestCreateRejectsShortTransactionID(t *testing.T) {
	svc, repo, sink := newTestOrderService()

	in := validInput()
	in.TransactionID = "TX1"

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.orders)
	assert.Empty(t, sink.batches)
}

func TestCreateFreezesTotalAndStartsPending(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.VerificationPending, order.VerificationStatus)
	assert.Equal(t, model.DeliveryPending, order.DeliveryStatus)
	assert.Equal(t, 160.0, order.TotalAmount)
	assert.Equal(t, "100 Diamonds", order.ProductName)

	// One admin alert plus one customer receipt.
	intents := sink.all()
	require.Len(t, intents, 2)
	recipients := map[model.RecipientType]bool{}
	for _, n := range intents {
		recipients[n.Recipient] = true
		assert.Equal(t, order.ID, n.OrderID)
	}
	assert.True(t, recipients[model.RecipientAdmin])
	assert.True(t, recipients[model.RecipientUser])
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	svc, _, _ := newTestOrderService()

	in := validInput()
	in.ProductID = "pkg-old"

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestOrderService()

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"zero quantity", func(in *CreateOrderInput) { in.Quantity = 0 }},
		{"quantity over limit", func(in *CreateOrderInput) { in.Quantity = 101 }},
		{"short player id", func(in *CreateOrderInput) { in.PlayerID = "12" }},
		{"missing payment method", func(in *CreateOrderInput) { in.PaymentMethod = "" }},
		{"missing user", func(in *CreateOrderInput) { in.UserID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVerifyApproveIsTerminal(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	sink.batches = nil

	verified, err := svc.Verify(context.Background(), order.ID, "admin-1", true, "receipt checked")
	require.NoError(t, err)

	assert.Equal(t, model.VerificationVerified, verified.VerificationStatus)
	assert.Equal(t, model.OrderProcessing, verified.Status)
	assert.Equal(t, model.DeliveryProcessing, verified.DeliveryStatus)
	assert.Equal(t, "admin-1", verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)

	intents := sink.all()
	require.Len(t, intents, 1)
	assert.Equal(t, model.RecipientUser, intents[0].Recipient)
	assert.Equal(t, model.NotifOrderVerified, intents[0].Type)

	// Second decision on the same order is rejected, not re-applied.
	sink.batches = nil
	_, err = svc.Verify(context.Background(), order.ID, "admin-2", false, "changed my mind")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, sink.batches)
}

func TestVerifyRejectCancelsOrder(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	sink.batches = nil

	rejected, err := svc.Verify(context.Background(), order.ID, "admin-1", false, "transaction not found")
	require.NoError(t, err)

	assert.Equal(t, model.VerificationRejected, rejected.VerificationStatus)
	assert.Equal(t, model.OrderCancelled, rejected.Status)
	require.NotNil(t, rejected.CancelledAt)

	intents := sink.all()
	require.Len(t, intents, 1)
	assert.Equal(t, model.RecipientUser, intents[0].Recipient)
	assert.True(t, intents[0].IsImportant)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	first, err := svc.Cancel(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, first.Status)
	require.NotNil(t, first.CancelledAt)

	sink.batches = nil
	second, err := svc.Cancel(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, second.Status)
	assert.Empty(t, sink.batches, "repeat cancel must not re-notify")
}

func TestCancelOwnership(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "someone-else", false)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin may cancel anyone's order.
	cancelled, err := svc.Cancel(context.Background(), order.ID, "admin-1", true)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
}

func TestCancelledOrderBlocksFurtherTransitions(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Verify(context.Background(), order.ID, "admin-1", true, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.AttachPaymentProof(context.Background(), order.ID, "user-1", "https://cdn.example.com/proof.png")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestVerifyCompletedOrderFails(t *testing.T) {
	svc, repo, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderProcessing, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderCompleted, "")
	require.NoError(t, err)
	sink.batches = nil

	// A late rejection must not drag a completed order back to cancelled.
	_, err = svc.Verify(context.Background(), order.ID, "admin-1", false, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Verify(context.Background(), order.ID, "admin-1", true, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, stored.Status)
	assert.Equal(t, model.VerificationPending, stored.VerificationStatus)
	assert.Empty(t, sink.batches)
}

func TestSetStatusOnTerminalOrderAlwaysFails(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)

	// Re-asserting the terminal value is not the idempotent cancel path.
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderCancelled, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelCompletedOrderFails(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderProcessing, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderCompleted, "")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "user-1", false)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []model.OrderStatus
		target  model.OrderStatus
		allowed bool
	}{
		{"pending to processing", nil, model.OrderProcessing, true},
		{"pending to failed", nil, model.OrderFailed, true},
		{"pending to completed skips processing", nil, model.OrderCompleted, false},
		{"processing to completed", []model.OrderStatus{model.OrderProcessing}, model.OrderCompleted, true},
		{"completed is absorbing", []model.OrderStatus{model.OrderProcessing, model.OrderCompleted}, model.OrderProcessing, false},
		{"failed is absorbing", []model.OrderStatus{model.OrderFailed}, model.OrderProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestOrderService()
			order, err := svc.Create(context.Background(), validInput())
			require.NoError(t, err)

			for _, step := range tt.path {
				_, err = svc.SetStatus(context.Background(), order.ID, step, "")
				require.NoError(t, err)
			}

			_, err = svc.SetStatus(context.Background(), order.ID, tt.target, "")
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestSetStatusSameValueIsNoOp(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	sink.batches = nil

	got, err := svc.SetStatus(context.Background(), order.ID, model.OrderPending, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, got.Status)
	assert.Empty(t, sink.batches)
}

func TestSetStatusCompletedStampsTimestamp(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), order.ID, model.OrderProcessing, "")
	require.NoError(t, err)
	sink.batches = nil

	done, err := svc.SetStatus(context.Background(), order.ID, model.OrderCompleted, "delivered manually")
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "delivered manually", done.AdminNotes)

	intents := sink.all()
	require.Len(t, intents, 1)
	assert.Equal(t, model.NotifOrderCompleted, intents[0].Type)
	assert.Equal(t, model.PriorityUrgent, intents[0].Priority)
}

func TestDeliveryRequiresVerifiedPayment(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.SetDeliveryStatus(context.Background(), order.ID, model.DeliveryProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeliveryCompletedNotifiesOnce(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), order.ID, "admin-1", true, "")
	require.NoError(t, err)
	sink.batches = nil

	done, err := svc.SetDeliveryStatus(context.Background(), order.ID, model.DeliveryCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryCompleted, done.DeliveryStatus)
	require.NotNil(t, done.DeliveredAt)

	intents := sink.all()
	require.Len(t, intents, 1)
	assert.Equal(t, model.NotifOrderCompleted, intents[0].Type)

	// Same value again: no-op, no second notification.
	sink.batches = nil
	_, err = svc.SetDeliveryStatus(context.Background(), order.ID, model.DeliveryCompleted)
	require.NoError(t, err)
	assert.Empty(t, sink.batches)
}

func TestDeliveryFailedEmitsNoNotification(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), order.ID, "admin-1", true, "")
	require.NoError(t, err)
	sink.batches = nil

	failed, err := svc.SetDeliveryStatus(context.Background(), order.ID, model.DeliveryFailed)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryFailed, failed.DeliveryStatus)
	assert.Empty(t, sink.batches)
}

func TestAttachPaymentProof(t *testing.T) {
	svc, _, sink := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	sink.batches = nil

	updated, err := svc.AttachPaymentProof(context.Background(), order.ID, "user-1", "https://cdn.example.com/proof.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/proof.png", updated.PaymentProofURL)
	assert.Empty(t, sink.batches, "attaching proof is not a transition")

	// Replacing an earlier proof is fine while review is pending.
	updated, err = svc.AttachPaymentProof(context.Background(), order.ID, "user-1", "https://cdn.example.com/proof2.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/proof2.png", updated.PaymentProofURL)

	_, err = svc.AttachPaymentProof(context.Background(), order.ID, "someone-else", "https://cdn.example.com/x.png")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAttachPaymentProofAfterDecision(t *testing.T) {
	svc, _, _ := newTestOrderService()

	order, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), order.ID, "admin-1", true, "")
	require.NoError(t, err)

	_, err = svc.AttachPaymentProof(context.Background(), order.ID, "user-1", "https://cdn.example.com/late.png")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
