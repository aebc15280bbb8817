package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topup-orders-service/internal/model"
)

func fanoutOrder() *model.Order {
	return &model.Order{
		ID:          "3f2b8c1d-0000-4000-8000-000000000000",
		UserID:      "user-1",
		ProductName: "100 Diamonds",
		Diamonds:    100,
		Quantity:    2,
		TotalAmount: 160,
		PlayerID:    "123456789",
	}
}

func TestFanOutTable(t *testing.T) {
	tests := []struct {
		transition TransitionType
		recipients []model.RecipientType
		types      []model.NotificationType
	}{
		{TransitionPlaced,
			[]model.RecipientType{model.RecipientAdmin, model.RecipientUser},
			[]model.NotificationType{model.NotifOrderPlaced, model.NotifPaymentPending}},
		{TransitionVerified,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifOrderVerified}},
		{TransitionRejected,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifOrderCancelled}},
		{TransitionProcessing,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifOrderProcessing}},
		{TransitionCompleted,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifOrderCompleted}},
		{TransitionFailed,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifError}},
		{TransitionCancelled,
			[]model.RecipientType{model.RecipientUser, model.RecipientAdmin},
			[]model.NotificationType{model.NotifOrderCancelled, model.NotifOrderCancelled}},
		{TransitionDelivered,
			[]model.RecipientType{model.RecipientUser},
			[]model.NotificationType{model.NotifOrderCompleted}},
	}

	for _, tt := range tests {
		t.Run(string(tt.transition), func(t *testing.T) {
			intents := FanOut(TransitionEvent{Type: tt.transition, Order: fanoutOrder(), UserName: "player@example.com"})
			require.Len(t, intents, len(tt.recipients))

			for i, n := range intents {
				assert.Equal(t, tt.recipients[i], n.Recipient)
				assert.Equal(t, tt.types[i], n.Type)
				assert.NotEmpty(t, n.Title)
				assert.NotEmpty(t, n.TitleBn)
				assert.NotEmpty(t, n.Message)
				assert.Equal(t, fanoutOrder().ID, n.OrderID)
			}
		})
	}
}

func TestFanOutAudienceExclusive(t *testing.T) {
	for transition := range fanoutTable {
		for _, n := range FanOut(TransitionEvent{Type: transition, Order: fanoutOrder()}) {
			switch n.Recipient {
			case model.RecipientUser:
				assert.Equal(t, "user-1", n.UserID, "%s: customer intents address the buyer", transition)
			case model.RecipientAdmin:
				assert.Empty(t, n.UserID, "%s: admin intents are shared rows", transition)
			default:
				t.Fatalf("%s: unexpected recipient %q", transition, n.Recipient)
			}
		}
	}
}

func TestFanOutVerifiedNeverReachesAdmins(t *testing.T) {
	for _, n := range FanOut(TransitionEvent{Type: TransitionVerified, Order: fanoutOrder()}) {
		assert.NotEqual(t, model.RecipientAdmin, n.Recipient)
	}
}

func TestFanOutUnknownTransitionIsEmpty(t *testing.T) {
	intents := FanOut(TransitionEvent{Type: TransitionType("proof-attached"), Order: fanoutOrder()})
	assert.Empty(t, intents)
}

func TestFanOutLeavesPersistenceFieldsBlank(t *testing.T) {
	for _, n := range FanOut(TransitionEvent{Type: TransitionPlaced, Order: fanoutOrder(), UserName: "player@example.com"}) {
		assert.Empty(t, n.ID)
		assert.True(t, n.CreatedAt.IsZero())
		assert.False(t, n.IsRead)
	}
}

func TestFanOutRejectedUsesReviewNotes(t *testing.T) {
	intents := FanOut(TransitionEvent{Type: TransitionRejected, Order: fanoutOrder(), Notes: "transaction not found"})
	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Message, "transaction not found")

	// Without notes the copy falls back to a support hint.
	intents = FanOut(TransitionEvent{Type: TransitionRejected, Order: fanoutOrder()})
	require.Len(t, intents, 1)
	assert.Contains(t, intents[0].Message, "Contact support")
}

func TestFanOutDeepLinks(t *testing.T) {
	for _, n := range FanOut(TransitionEvent{Type: TransitionPlaced, Order: fanoutOrder(), UserName: "player@example.com"}) {
		want := "/dashboard"
		if n.Recipient == model.RecipientAdmin {
			want = "/admin-dashboard"
		}
		assert.Equal(t, want, n.Metadata["link"])
	}
}
