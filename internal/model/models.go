// models.go
package model

import "time"

// Order is one purchase of a fixed quantity of a top-up package, tracked
// through three independent status axes. Orders are never deleted, only
// terminally stamped.
type Order struct {
	ID        string `bson:"_id" json:"id"`
	UserID    string `bson:"user_id" json:"userId"`
	ProductID string `bson:"product_id" json:"productId"`

	// Snapshot of the package at purchase time; the total is frozen at
	// creation and never recomputed.
	ProductName string  `bson:"product_name" json:"productName"`
	Diamonds    int     `bson:"diamonds" json:"diamonds"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	TotalAmount float64 `bson:"total_amount" json:"totalAmount"`
	Currency    string  `bson:"currency" json:"currency"`

	PlayerID     string `bson:"player_id" json:"playerId"`
	PlayerName   string `bson:"player_name" json:"playerName"`
	ContactEmail string `bson:"contact_email" json:"contactEmail"`
	ContactPhone string `bson:"contact_phone" json:"contactPhone"`

	PaymentMethod   string `bson:"payment_method" json:"paymentMethod"`
	TransactionID   string `bson:"transaction_id" json:"transactionId"`
	PaymentProofURL string `bson:"payment_proof_url" json:"paymentProofUrl"`

	Notes             string `bson:"notes" json:"notes"`
	AdminNotes        string `bson:"admin_notes" json:"adminNotes"`
	VerificationNotes string `bson:"verification_notes" json:"verificationNotes"`
	VerifiedBy        string `bson:"verified_by" json:"verifiedBy"`

	Status             OrderStatus        `bson:"status" json:"status"`
	VerificationStatus VerificationStatus `bson:"verification_status" json:"verificationStatus"`
	DeliveryStatus     DeliveryStatus     `bson:"delivery_status" json:"deliveryStatus"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	VerifiedAt  *time.Time `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
}

// Number is the short order reference shown to users and admins.
func (o *Order) Number() string {
	if len(o.ID) < 8 {
		return o.ID
	}
	return o.ID[:8]
}

// Notification is a persisted message addressed to exactly one audience:
// a specific user, or the administrator group (UserID empty, RecipientAdmin).
type Notification struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id,omitempty" json:"userId,omitempty"`
	Recipient RecipientType    `bson:"recipient_type" json:"recipientType"`
	Type      NotificationType `bson:"type" json:"type"`
	Priority  Priority         `bson:"priority" json:"priority"`

	// Bilingual copy: English plus the Bengali variant shown in the store UI.
	Title     string `bson:"title" json:"title"`
	TitleBn   string `bson:"title_bn" json:"titleBn"`
	Message   string `bson:"message" json:"message"`
	MessageBn string `bson:"message_bn" json:"messageBn"`

	IsImportant bool       `bson:"is_important" json:"isImportant"`
	IsRead      bool       `bson:"is_read" json:"isRead"`
	ReadAt      *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`

	// Back-reference for lookups only; the order does not own its notifications.
	OrderID  string            `bson:"related_order_id,omitempty" json:"relatedOrderId,omitempty"`
	Metadata map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Audience selects whose notifications a ledger operation touches.
type Audience struct {
	UserID string
	Type   RecipientType
}

func UserAudience(userID string) Audience {
	return Audience{UserID: userID, Type: RecipientUser}
}

func AdminAudience() Audience {
	return Audience{Type: RecipientAdmin}
}

// Product is the read-only view of a top-up package this service needs to
// price an order. Catalog management lives in another service.
type Product struct {
	ID       string  `bson:"_id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	NameBn   string  `bson:"name_bn" json:"nameBn"`
	Diamonds int     `bson:"diamonds" json:"diamonds"`
	Price    float64 `bson:"price" json:"price"`
	Currency string  `bson:"currency" json:"currency"`
	IsActive bool    `bson:"is_active" json:"isActive"`
}
