// internal/app/system/payments/provider.go
package payments

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount is returned when a payment is initiated with a
	// non-positive amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrUnknownProvider is returned when the requested provider is not
	// registered.
	ErrUnknownProvider = errors.New("unknown payment provider")

	// ErrProviderUnavailable is returned when the provider rejected the
	// order or could not be reached. No payment record is written.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrBadStatus is returned by Confirm when the requested terminal
	// status is neither completed nor failed.
	ErrBadStatus = errors.New(`status must be "completed" or "failed"`)
)

// Order is what a provider hands back for a freshly created charge.
// TransactionID is the provider's identifier (Razorpay order ID, Stripe
// payment intent ID). ClientSecret is set only by providers whose
// client-side flow needs one.
type Order struct {
	TransactionID string
	ClientSecret  string
}

// Provider creates charges with an external payment processor. Amounts
// are in major units; adapters convert to the processor's smallest unit.
type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, amount int64, currency string, metadata map[string]string) (Order, error)
}
