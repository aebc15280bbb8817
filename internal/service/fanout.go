package service

import (
	"fmt"

	"topup-orders-service/internal/model"
)

// Notification fan-out: a fixed table from order transitions to
// notification-creation intents. Pure — it never touches the store or the
// network, so the mapping is testable on its own. Persisting the returned
// intents is the ledger's job.

type TransitionType string

const (
	TransitionPlaced     TransitionType = "placed"
	TransitionVerified   TransitionType = "verified"
	TransitionRejected   TransitionType = "rejected"
	TransitionProcessing TransitionType = "processing"
	TransitionCompleted  TransitionType = "completed"
	TransitionFailed     TransitionType = "failed"
	TransitionCancelled  TransitionType = "cancelled"
	TransitionDelivered  TransitionType = "delivered"
)

// TransitionEvent is the snapshot the fan-out maps over.
type TransitionEvent struct {
	Type     TransitionType
	Order    *model.Order
	Notes    string
	UserName string
}

type copyText struct {
	Title     string
	TitleBn   string
	Message   string
	MessageBn string
}

type fanoutRule struct {
	recipient model.RecipientType
	ntype     model.NotificationType
	priority  model.Priority
	important bool
	render    func(ev TransitionEvent) copyText
}

// Each intent addresses exactly one audience; a transition needing both the
// customer and the admins carries two rules. Proof upload has no entry on
// purpose: it is supporting evidence, not a state transition.
var fanoutTable = map[TransitionType][]fanoutRule{
	TransitionPlaced: {
		{
			recipient: model.RecipientAdmin,
			ntype:     model.NotifOrderPlaced,
			priority:  model.PriorityHigh,
			important: true,
			render: func(ev TransitionEvent) copyText {
				msg := fmt.Sprintf("New order from %s: %s ×%d - ৳%.0f. Waiting for payment proof.",
					ev.UserName, ev.Order.ProductName, ev.Order.Quantity, ev.Order.TotalAmount)
				return copyText{
					Title: fmt.Sprintf("New Order #%s", ev.Order.Number()), TitleBn: fmt.Sprintf("নতুন অর্ডার #%s", ev.Order.Number()),
					Message: msg, MessageBn: msg,
				}
			},
		},
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifPaymentPending,
			priority:  model.PriorityHigh,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:   "Order placed",
					TitleBn: "অর্ডার সফল! 🎉",
					Message: fmt.Sprintf("Order #%s placed: %s - ৳%.0f. Upload your payment proof for faster delivery.",
						ev.Order.Number(), ev.Order.ProductName, ev.Order.TotalAmount),
					MessageBn: fmt.Sprintf("আপনার অর্ডার #%s সফলভাবে তৈরি হয়েছে। %s - ৳%.0f। পেমেন্ট প্রুফ আপলোড করুন দ্রুত ডেলিভারির জন্য।",
						ev.Order.Number(), ev.Order.ProductName, ev.Order.TotalAmount),
				}
			},
		},
	},
	TransitionVerified: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderVerified,
			priority:  model.PriorityNormal,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:   "Payment verified",
					TitleBn: "পেমেন্ট ভেরিফাই সফল! ✅",
					Message: fmt.Sprintf("Payment for order #%s is verified. %d diamonds are on the way.",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity),
					MessageBn: fmt.Sprintf("অর্ডার #%s এর পেমেন্ট ভেরিফাই হয়েছে! %d ডায়মন্ড শীঘ্রই পৌঁছাবে।",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity),
				}
			},
		},
	},
	TransitionRejected: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderCancelled,
			priority:  model.PriorityHigh,
			important: true,
			render: func(ev TransitionEvent) copyText {
				notes := ev.Notes
				if notes == "" {
					notes = "Contact support."
				}
				return copyText{
					Title:     "Payment rejected",
					TitleBn:   "পেমেন্ট রিজেক্ট হয়েছে ❌",
					Message:   fmt.Sprintf("Payment for order #%s was rejected. %s", ev.Order.Number(), notes),
					MessageBn: fmt.Sprintf("অর্ডার #%s এর পেমেন্ট রিজেক্ট হয়েছে। %s", ev.Order.Number(), notes),
				}
			},
		},
	},
	TransitionProcessing: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderProcessing,
			priority:  model.PriorityNormal,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:   "Order processing",
					TitleBn: "অর্ডার প্রসেস হচ্ছে ⏳",
					Message: fmt.Sprintf("Order #%s is being processed. %d diamonds will arrive within 5-15 minutes.",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity),
					MessageBn: fmt.Sprintf("অর্ডার #%s প্রসেস হচ্ছে। %d ডায়মন্ড ৫-১৫ মিনিটের মধ্যে পৌঁছাবে।",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity),
				}
			},
		},
	},
	TransitionCompleted: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderCompleted,
			priority:  model.PriorityUrgent,
			important: true,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:   "Order completed",
					TitleBn: "অর্ডার সম্পন্ন! 🎉🎉",
					Message: fmt.Sprintf("Order #%s is complete. %d diamonds were added to account %s. Thank you!",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity, ev.Order.PlayerID),
					MessageBn: fmt.Sprintf("অর্ডার #%s সম্পন্ন হয়েছে! %d ডায়মন্ড আপনার একাউন্ট (%s) এ যোগ হয়েছে। ধন্যবাদ!",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity, ev.Order.PlayerID),
				}
			},
		},
	},
	TransitionFailed: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifError,
			priority:  model.PriorityUrgent,
			important: true,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:     "Order failed",
					TitleBn:   "অর্ডার ব্যর্থ হয়েছে ❌",
					Message:   fmt.Sprintf("Order #%s failed. Contact support.", ev.Order.Number()),
					MessageBn: fmt.Sprintf("অর্ডার #%s ব্যর্থ হয়েছে। সাপোর্টে যোগাযোগ করুন।", ev.Order.Number()),
				}
			},
		},
	},
	TransitionCancelled: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderCancelled,
			priority:  model.PriorityNormal,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:     "Order cancelled",
					TitleBn:   "অর্ডার বাতিল হয়েছে 🚫",
					Message:   fmt.Sprintf("Order #%s has been cancelled. %s", ev.Order.Number(), ev.Notes),
					MessageBn: fmt.Sprintf("অর্ডার #%s বাতিল করা হয়েছে। %s", ev.Order.Number(), ev.Notes),
				}
			},
		},
		{
			recipient: model.RecipientAdmin,
			ntype:     model.NotifOrderCancelled,
			priority:  model.PriorityNormal,
			render: func(ev TransitionEvent) copyText {
				msg := fmt.Sprintf("Order #%s cancelled by %s: %s", ev.Order.Number(), ev.UserName, ev.Order.ProductName)
				return copyText{
					Title: fmt.Sprintf("Order Cancelled #%s", ev.Order.Number()), TitleBn: fmt.Sprintf("অর্ডার বাতিল #%s", ev.Order.Number()),
					Message: msg, MessageBn: msg,
				}
			},
		},
	},
	TransitionDelivered: {
		{
			recipient: model.RecipientUser,
			ntype:     model.NotifOrderCompleted,
			priority:  model.PriorityNormal,
			render: func(ev TransitionEvent) copyText {
				return copyText{
					Title:   "Delivery completed",
					TitleBn: "অর্ডার ডেলিভারি সম্পন্ন ✅",
					Message: fmt.Sprintf("Delivery for order #%s is complete. %d diamonds were added to account %s.",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity, ev.Order.PlayerID),
					MessageBn: fmt.Sprintf("অর্ডার #%s এর ডেলিভারি সম্পন্ন হয়েছে। %d ডায়মন্ড (%s) একাউন্টে যোগ হয়েছে।",
						ev.Order.Number(), ev.Order.Diamonds*ev.Order.Quantity, ev.Order.PlayerID),
				}
			},
		},
	},
}

func deepLink(recipient model.RecipientType) string {
	if recipient == model.RecipientAdmin {
		return "/admin-dashboard"
	}
	return "/dashboard"
}

// FanOut maps one transition to its notification intents. IDs and timestamps
// are left blank; the ledger assigns them on persist.
func FanOut(ev TransitionEvent) []*model.Notification {
	rules := fanoutTable[ev.Type]

	out := make([]*model.Notification, 0, len(rules))
	for _, r := range rules {
		text := r.render(ev)

		n := &model.Notification{
			Recipient:   r.recipient,
			Type:        r.ntype,
			Priority:    r.priority,
			Title:       text.Title,
			TitleBn:     text.TitleBn,
			Message:     text.Message,
			MessageBn:   text.MessageBn,
			IsImportant: r.important,
			OrderID:     ev.Order.ID,
			Metadata:    map[string]string{"link": deepLink(r.recipient)},
		}
		if r.recipient == model.RecipientUser {
			n.UserID = ev.Order.UserID
		}
		out = append(out, n)
	}
	return out
}
