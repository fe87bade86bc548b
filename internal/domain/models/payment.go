// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses. Pending is the only non-terminal state; completed
// and failed are sinks and a payment never leaves either of them.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment provider names.
const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

// Payment records one order/intent created with an external provider.
// TransactionID is the provider-assigned identifier, unique per
// provider, and the key used to correlate asynchronous confirmations.
type Payment struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CommunityID   primitive.ObjectID  `bson:"community_id" json:"community_id"`
	EventID       *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Amount        int64               `bson:"amount" json:"amount"`
	Currency      string              `bson:"currency" json:"currency"`
	Provider      string              `bson:"provider" json:"provider"`
	TransactionID string              `bson:"transaction_id" json:"transaction_id"`
	Status        string              `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
